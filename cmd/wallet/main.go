package main

import "github.com/amterp/wallet/internal/cli"

func main() {
	cli.Run()
}
