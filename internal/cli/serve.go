package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amterp/ra"
	"golang.org/x/sync/errgroup"

	"github.com/amterp/wallet/internal/api"
	"github.com/amterp/wallet/internal/model"
)

const shutdownTimeout = 5 * time.Second

func registerServe(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("serve")
	cmd.SetDescription("Serve the card API and live updates over HTTP")

	ctx.ServePort, _ = ra.NewInt("port").
		SetOptional(true).
		SetDefault(3000).
		SetShort("p").
		SetFlagOnly(true).
		SetUsage("Port to listen on (will try incrementally if in use)").
		Register(cmd)

	ctx.ServeUsed, _ = parent.RegisterCmd(cmd)
}

func runServe(port int) {
	app, err := NewApp(false)
	if err != nil {
		Fatal(err)
	}
	defer app.Close()

	if !app.Config.Gateway.HasCredentials() {
		PrintWarning("gateway keys are not set; adding and charging cards will fail")
	}

	opts := api.ServerOptions{}
	if app.Config.Storage.Backend == model.BackendFile {
		opts.WatchDir = app.Paths.KVDir()
	}

	// Find an available port starting from the requested one
	actualPort := findAvailablePort(port)
	opts.Addr = fmt.Sprintf(":%d", actualPort)

	handler := api.NewHandler(app.CardService, app.Store, app.Log)
	server := api.NewServer(handler, app.Store, opts, app.Log)

	base := fmt.Sprintf("localhost:%d", actualPort)
	PrintInfo("Wallet API running at %s", RenderURL("http://"+base+"/api/v1/cards"))
	PrintInfo("Live updates at %s", RenderURL("ws://"+base+"/api/v1/ws"))
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		Fatal(err)
	}
	PrintInfo("Stopped")
}

// findAvailablePort tries ports starting from startPort until it finds one that's available.
func findAvailablePort(startPort int) int {
	maxAttempts := 100
	for i := 0; i < maxAttempts; i++ {
		port := startPort + i
		if isPortAvailable(port) {
			return port
		}
	}
	// Let the listener report the error on the original port
	return startPort
}

// isPortAvailable checks if a port is available by attempting to listen on it.
func isPortAvailable(port int) bool {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	listener.Close()
	return true
}
