package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/amterp/ra"
)

func registerCharge(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("charge")
	cmd.SetDescription("Run a small test charge against a card")

	ctx.ChargeCard, _ = ra.NewString("card").
		SetUsage("Card ID, ID prefix or last four digits").
		Register(cmd)

	ctx.ChargeJson = registerJsonFlag(cmd)

	ctx.ChargeUsed, _ = parent.RegisterCmd(cmd)
}

func runCharge(ref string, jsonOutput bool) {
	app, err := NewApp(false)
	if err != nil {
		Fatal(err)
	}
	defer app.Close()

	res, err := app.CardService.Charge(context.Background(), ref)
	if err != nil {
		Fatal(err)
	}

	if jsonOutput {
		if err := printJson(NewChargeOutput(res)); err != nil {
			Fatal(err)
		}
		return
	}

	PrintSuccess("%s %s charged to %s", res.Message, RenderAmount(res.Amount, res.Currency), RenderMaskedNumber(res.Card.LastFour()))
	printLabels(
		[2]string{"Charge", RenderID(res.ChargeID)},
		[2]string{"Status", res.Status},
	)
}

// FormatAmount renders an amount in the currency's smallest unit as a
// decimal with two places, e.g. 2003 thb -> "20.03 THB".
func FormatAmount(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, strings.ToUpper(currency))
}
