package cli

import (
	"os"

	"github.com/amterp/ra"
)

// CommandContext holds parsed values and used flags for all commands.
type CommandContext struct {
	// Global flags
	NonInteractive *bool

	// init command
	InitUsed  *bool
	InitForce *bool

	// add command
	AddUsed   *bool
	AddHolder *string
	AddNumber *string
	AddMonth  *string
	AddYear   *string
	AddCVC    *string
	AddColor  *string
	AddJson   *bool

	// list command
	ListUsed *bool
	ListJson *bool

	// show command
	ShowUsed *bool
	ShowCard *string
	ShowJson *bool

	// remove command
	RemoveUsed  *bool
	RemoveCard  *string
	RemoveForce *bool

	// charge command
	ChargeUsed *bool
	ChargeCard *string
	ChargeJson *bool

	// serve command
	ServeUsed *bool
	ServePort *int

	// doctor command
	DoctorUsed   *bool
	DoctorFix    *bool
	DoctorDryRun *bool
	DoctorJson   *bool
}

// Run is the main entry point for the CLI.
func Run() {
	ctx := &CommandContext{}

	cmd := ra.NewCmd("wallet")
	cmd.SetDescription("Store payment cards and run test charges")

	// Global flag for non-interactive mode
	ctx.NonInteractive, _ = ra.NewBool("non-interactive").
		SetShort("I").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Fail instead of prompting for missing input").
		Register(cmd, ra.WithGlobal(true))

	registerInit(cmd, ctx)
	registerAdd(cmd, ctx)
	registerList(cmd, ctx)
	registerShow(cmd, ctx)
	registerRemove(cmd, ctx)
	registerCharge(cmd, ctx)
	registerServe(cmd, ctx)
	registerDoctor(cmd, ctx)

	cmd.ParseOrExit(os.Args[1:])

	executeCommand(ctx)
}

func executeCommand(ctx *CommandContext) {
	switch {
	case *ctx.InitUsed:
		runInit(*ctx.InitForce)

	case *ctx.AddUsed:
		runAdd(addFlags{
			Holder: *ctx.AddHolder,
			Number: *ctx.AddNumber,
			Month:  *ctx.AddMonth,
			Year:   *ctx.AddYear,
			CVC:    *ctx.AddCVC,
			Color:  *ctx.AddColor,
		}, *ctx.AddJson, *ctx.NonInteractive)

	case *ctx.ListUsed:
		runList(*ctx.ListJson)

	case *ctx.ShowUsed:
		runShow(*ctx.ShowCard, *ctx.ShowJson)

	case *ctx.RemoveUsed:
		runRemove(*ctx.RemoveCard, *ctx.RemoveForce, *ctx.NonInteractive)

	case *ctx.ChargeUsed:
		runCharge(*ctx.ChargeCard, *ctx.ChargeJson)

	case *ctx.ServeUsed:
		runServe(*ctx.ServePort)

	case *ctx.DoctorUsed:
		runDoctor(*ctx.DoctorFix, *ctx.DoctorDryRun, *ctx.DoctorJson)
	}
}

// registerJsonFlag adds the --json flag to cmd.
func registerJsonFlag(cmd *ra.Cmd) *bool {
	v, _ := ra.NewBool("json").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Output as JSON").
		Register(cmd)
	return v
}
