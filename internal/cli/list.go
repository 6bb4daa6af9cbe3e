package cli

import (
	"fmt"

	"github.com/amterp/ra"

	"github.com/amterp/wallet/internal/model"
	"github.com/amterp/wallet/internal/preview"
)

func registerList(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("list")
	cmd.SetDescription("List stored cards")

	ctx.ListJson = registerJsonFlag(cmd)

	ctx.ListUsed, _ = parent.RegisterCmd(cmd)
}

func runList(jsonOutput bool) {
	app, err := NewApp(false)
	if err != nil {
		Fatal(err)
	}
	defer app.Close()

	cards := app.CardService.List()

	if jsonOutput {
		if err := printJson(NewListOutput(cards)); err != nil {
			Fatal(err)
		}
		return
	}

	if len(cards) == 0 {
		PrintInfo("No cards yet. Add one with 'wallet add'")
		return
	}

	for _, card := range cards {
		printCardLine(card)
	}
}

func printCardLine(card model.Card) {
	face := preview.FaceOf(card)
	fmt.Printf("%s  %s  %s  %s  %s\n",
		preview.Swatch(face),
		RenderCardID(card.ID),
		face.NumberLine(),
		RenderMuted(face.Expiry.Text),
		RenderHolder(card.HolderName),
	)
}
