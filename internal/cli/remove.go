package cli

import (
	"context"
	"fmt"

	"github.com/amterp/ra"
)

func registerRemove(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("remove")
	cmd.SetDescription("Remove a card")

	ctx.RemoveCard, _ = ra.NewString("card").
		SetUsage("Card ID, ID prefix or last four digits").
		Register(cmd)

	ctx.RemoveForce, _ = ra.NewBool("force").
		SetShort("f").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Skip confirmation (required in non-interactive mode)").
		Register(cmd)

	ctx.RemoveUsed, _ = parent.RegisterCmd(cmd)
}

func runRemove(ref string, force, nonInteractive bool) {
	app, err := NewApp(!nonInteractive)
	if err != nil {
		Fatal(err)
	}
	defer app.Close()

	card, err := app.CardService.Get(ref)
	if err != nil {
		Fatal(err)
	}

	if !force {
		if nonInteractive {
			Fatal(fmt.Errorf("removing card %s ending in %s requires --force in non-interactive mode", card.ID, card.LastFour()))
		}

		confirmed, err := app.Prompter.Confirm(
			fmt.Sprintf("Remove card %s ending in %s?", card.ID, card.LastFour()),
			false,
		)
		if err != nil {
			Fatal(err)
		}
		if !confirmed {
			PrintInfo("Cancelled")
			return
		}
	}

	if err := app.CardService.RemoveCard(context.Background(), *card); err != nil {
		Fatal(err)
	}

	PrintSuccess("Removed card %s %s", RenderCardID(card.ID), RenderMaskedNumber(card.LastFour()))
}
