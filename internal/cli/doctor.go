package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/amterp/ra"

	"github.com/amterp/wallet/internal/service"
	"github.com/amterp/wallet/internal/wallet"
)

func registerDoctor(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("doctor")
	cmd.SetDescription("Check stored cards and config for problems. Exit 0 if healthy, 1 if errors found.")

	ctx.DoctorFix, _ = ra.NewBool("fix").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Apply automatic fixes for issues with deterministic solutions").
		Register(cmd)

	ctx.DoctorDryRun, _ = ra.NewBool("dry-run").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Show what fixes would be applied without making changes").
		Register(cmd)

	ctx.DoctorJson = registerJsonFlag(cmd)

	ctx.DoctorUsed, _ = parent.RegisterCmd(cmd)
}

func runDoctor(fix bool, dryRun bool, jsonOutput bool) {
	// --fix and --dry-run are mutually exclusive
	if fix && dryRun {
		Fatal(fmt.Errorf("--fix and --dry-run cannot be used together"))
	}

	env, err := NewEnv()
	if err != nil {
		Fatal(err)
	}
	defer env.Close()

	ctx := context.Background()

	// Diagnose reports an unreadable payload.
	cards := wallet.New(env.KV, env.Log)
	if err := cards.Load(ctx); err != nil {
		env.Log.Debug().Err(err).Msg("card store load failed")
	}

	doctorService := service.NewDoctorService(env.KV, cards, env.GlobalStore.Path(), env.Config.Gateway)

	report, err := doctorService.Diagnose(ctx)
	if err != nil {
		Fatal(err)
	}

	if fix && len(report.Issues) > 0 {
		report, err = doctorService.Fix(ctx, report)
		if err != nil {
			Fatal(err)
		}
	}

	if jsonOutput {
		if err := printJson(report); err != nil {
			Fatal(err)
		}
	} else {
		printDoctorReport(report, fix, dryRun)
	}

	if report.HasErrors() {
		env.Close()
		os.Exit(1)
	}
}

func printDoctorReport(report *service.DiagnosticReport, didFix bool, dryRun bool) {
	fmt.Printf("Checked %d stored card(s)\n\n", report.Summary.Cards)

	fixedCount := 0
	if didFix {
		fixedCount = report.Summary.Fixed
	}

	if fixedCount > 0 {
		PrintSuccess("Fixed %d issue(s)", fixedCount)
		fmt.Println()
	}

	fixableCount := 0
	for _, issue := range report.Issues {
		if issue.Fixable && issue.FixError == "" {
			fixableCount++
		}
	}

	if dryRun && fixableCount > 0 {
		PrintInfo("Dry run: %d issue(s) would be fixed", fixableCount)
		fmt.Println()
	}

	if len(report.Issues) == 0 {
		if fixedCount == 0 {
			PrintSuccess("No issues found")
		} else {
			PrintSuccess("All issues resolved")
		}
		return
	}

	// Errors first, then warnings
	var errs, warnings []service.Issue
	for _, issue := range report.Issues {
		if issue.Severity == service.SeverityError {
			errs = append(errs, issue)
		} else {
			warnings = append(warnings, issue)
		}
	}
	for _, issue := range errs {
		printIssue(issue)
	}
	for _, issue := range warnings {
		printIssue(issue)
	}

	fmt.Println()
	var summaryParts []string
	if report.Summary.Errors > 0 {
		summaryParts = append(summaryParts, StyleError.Render(fmt.Sprintf("%d error(s)", report.Summary.Errors)))
	}
	if report.Summary.Warnings > 0 {
		summaryParts = append(summaryParts, StyleWarning.Render(fmt.Sprintf("%d warning(s)", report.Summary.Warnings)))
	}
	if fixedCount > 0 {
		summaryParts = append(summaryParts, StyleSuccess.Render(fmt.Sprintf("%d fixed", fixedCount)))
	}
	if report.Summary.FixFailed > 0 {
		summaryParts = append(summaryParts, StyleError.Render(fmt.Sprintf("%d fix failed", report.Summary.FixFailed)))
	}
	fmt.Printf("Summary: %s\n", strings.Join(summaryParts, ", "))

	if !didFix && fixableCount > 0 {
		fmt.Println()
		if dryRun {
			PrintInfo("Run 'wallet doctor --fix' to apply these fixes")
		} else {
			PrintInfo("Run 'wallet doctor --fix' to apply automatic fixes")
		}
	}
}

func printIssue(issue service.Issue) {
	var icon, code string
	if issue.Severity == service.SeverityError {
		icon = StyleError.Render(IconError)
		code = StyleError.Render(fmt.Sprintf("[%s]", issue.Code))
	} else {
		icon = StyleWarning.Render(IconWarning)
		code = StyleWarning.Render(fmt.Sprintf("[%s]", issue.Code))
	}

	location := ""
	if issue.CardID != "" {
		location = " " + RenderID(issue.CardID)
	}

	fmt.Printf("%s %s%s %s\n", icon, code, location, issue.Message)

	if issue.FixError != "" {
		fmt.Printf("  %s Fix failed: %s\n", StyleError.Render("→"), issue.FixError)
	} else if issue.FixAction != "" {
		if issue.Fixable {
			fmt.Printf("  %s Fix: %s\n", RenderMuted("→"), issue.FixAction)
		} else {
			fmt.Printf("  %s %s\n", RenderMuted("→"), issue.FixAction)
		}
	}
}
