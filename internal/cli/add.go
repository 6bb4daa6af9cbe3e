package cli

import (
	"context"
	"fmt"

	"github.com/amterp/ra"

	"github.com/amterp/wallet/internal/preview"
	"github.com/amterp/wallet/internal/service"
)

// addFlags are the card fields given on the command line.
type addFlags struct {
	Holder string
	Number string
	Month  string
	Year   string
	CVC    string
	Color  string
}

func (f addFlags) input() service.AddCardInput {
	return service.AddCardInput{
		HolderName:  f.Holder,
		Number:      f.Number,
		ExpiryMonth: f.Month,
		ExpiryYear:  f.Year,
		CVC:         f.CVC,
		CardColor:   f.Color,
	}
}

func registerAdd(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("add")
	cmd.SetDescription("Tokenize and store a new card")

	ctx.AddHolder, _ = ra.NewString("holder").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Card holder name").
		Register(cmd)

	ctx.AddNumber, _ = ra.NewString("number").
		SetShort("n").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Card number (spaces and dashes are ignored)").
		Register(cmd)

	ctx.AddMonth, _ = ra.NewString("month").
		SetShort("m").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Expiry month (MM)").
		Register(cmd)

	ctx.AddYear, _ = ra.NewString("year").
		SetShort("y").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Expiry year (YY)").
		Register(cmd)

	ctx.AddCVC, _ = ra.NewString("cvc").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Card security code").
		Register(cmd)

	ctx.AddColor, _ = ra.NewString("color").
		SetShort("c").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Card color as hex, e.g. #7EE8FA (default: random)").
		Register(cmd)

	ctx.AddJson = registerJsonFlag(cmd)

	ctx.AddUsed, _ = parent.RegisterCmd(cmd)
}

func runAdd(flags addFlags, jsonOutput, nonInteractive bool) {
	app, err := NewApp(!nonInteractive)
	if err != nil {
		Fatal(err)
	}
	defer app.Close()

	input, err := collectCardInput(app, flags.input(), nonInteractive)
	if err != nil {
		Fatal(err)
	}

	card, err := app.CardService.Add(context.Background(), input)
	if err != nil {
		Fatal(err)
	}

	if jsonOutput {
		if err := printJson(NewCardOutput(*card)); err != nil {
			Fatal(err)
		}
		return
	}

	fmt.Println(preview.Render(preview.FaceOf(*card), preview.DefaultWidth))
	PrintSuccess("Added card %s ending in %s", RenderID(card.ID), card.LastFour())
}

// collectCardInput opens the card form when a required field is missing and
// prompting is allowed. Otherwise input is returned as given and validation
// reports what is missing.
func collectCardInput(app *App, input service.AddCardInput, nonInteractive bool) (service.AddCardInput, error) {
	if nonInteractive || input.Shaped().Validate() == nil {
		return input, nil
	}
	return app.Prompter.CardForm(input.Shaped())
}
