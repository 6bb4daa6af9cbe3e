package cli

import (
	"fmt"

	"github.com/amterp/ra"

	"github.com/amterp/wallet/internal/model"
	"github.com/amterp/wallet/internal/preview"
)

func registerShow(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("show")
	cmd.SetDescription("Display a card")

	ctx.ShowCard, _ = ra.NewString("card").
		SetUsage("Card ID, ID prefix or last four digits").
		Register(cmd)

	ctx.ShowJson = registerJsonFlag(cmd)

	ctx.ShowUsed, _ = parent.RegisterCmd(cmd)
}

func runShow(ref string, jsonOutput bool) {
	app, err := NewApp(false)
	if err != nil {
		Fatal(err)
	}
	defer app.Close()

	card, err := app.CardService.Get(ref)
	if err != nil {
		Fatal(err)
	}

	if jsonOutput {
		if err := printJson(NewCardOutput(*card)); err != nil {
			Fatal(err)
		}
		return
	}

	printCard(*card)
}

func printCard(card model.Card) {
	fmt.Println(preview.Render(preview.FaceOf(card), preview.DefaultWidth))
	fmt.Println()
	printLabels(
		[2]string{"ID", RenderCardID(card.ID)},
		[2]string{"Holder", RenderHolder(card.HolderName)},
		[2]string{"Number", RenderMaskedNumber(card.LastFour())},
		[2]string{"Expires", RenderExpiry(card.ExpiryMonth, card.ExpiryYear)},
		[2]string{"Color", ColorSwatch(card.CardColor) + " " + RenderMuted(card.CardColor)},
	)
}
