package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Adaptive colors that work in both light and dark terminals.
var (
	ColorSuccess = lipgloss.AdaptiveColor{Dark: "#22c55e", Light: "#16a34a"}
	ColorError   = lipgloss.AdaptiveColor{Dark: "#ef4444", Light: "#dc2626"}
	ColorWarning = lipgloss.AdaptiveColor{Dark: "#f59e0b", Light: "#d97706"}
	ColorMuted   = lipgloss.AdaptiveColor{Dark: "#6b7280", Light: "#9ca3af"}
	ColorAccent  = lipgloss.AdaptiveColor{Dark: "#a78bfa", Light: "#7c3aed"} // token and charge ids
	ColorURL     = lipgloss.AdaptiveColor{Dark: "#38bdf8", Light: "#0284c7"}
)

var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleID      = lipgloss.NewStyle().Foreground(ColorAccent)
	StyleURL     = lipgloss.NewStyle().Foreground(ColorURL)
	StyleHolder  = lipgloss.NewStyle().Bold(true)
	StyleAmount  = lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)
	StyleLabel   = lipgloss.NewStyle().Foreground(ColorMuted).Align(lipgloss.Right)
)

const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "!"
	IconInfo    = "→"

	// maskDots stands in for the hidden digits of a card number.
	maskDots = "••••"
)

func printStatus(w io.Writer, style lipgloss.Style, icon, format string, args []any) {
	fmt.Fprintf(w, "%s %s\n", style.Render(icon), fmt.Sprintf(format, args...))
}

// PrintSuccess prints to stdout with a green check.
func PrintSuccess(format string, args ...any) {
	printStatus(os.Stdout, StyleSuccess, IconSuccess, format, args)
}

// PrintError prints to stderr with a red cross.
func PrintError(format string, args ...any) {
	printStatus(os.Stderr, StyleError, IconError, format, args)
}

// PrintWarning prints to stderr with an amber mark.
func PrintWarning(format string, args ...any) {
	printStatus(os.Stderr, StyleWarning, IconWarning, format, args)
}

// PrintInfo prints to stdout with a muted arrow.
func PrintInfo(format string, args ...any) {
	printStatus(os.Stdout, StyleMuted, IconInfo, format, args)
}

// RenderID renders a token or charge id.
func RenderID(id string) string {
	return StyleID.Render(id)
}

// RenderCardID renders a card id. Untokenized cards have none.
func RenderCardID(id string) string {
	if id == "" {
		return StyleMuted.Render("(no token)")
	}
	return RenderID(id)
}

func RenderURL(url string) string {
	return StyleURL.Render(url)
}

func RenderMuted(text string) string {
	return StyleMuted.Render(text)
}

// RenderMaskedNumber shows only the last four digits.
func RenderMaskedNumber(lastFour string) string {
	return maskDots + " " + lastFour
}

// RenderExpiry renders the expiry as MM/YY.
func RenderExpiry(month, year string) string {
	return StyleMuted.Render(month + "/" + year)
}

// RenderHolder renders the holder name, or a placeholder when it is blank.
func RenderHolder(name string) string {
	if strings.TrimSpace(name) == "" {
		return StyleMuted.Render("(no name)")
	}
	return StyleHolder.Render(name)
}

// RenderAmount renders a charge amount given in minor units.
func RenderAmount(amount int64, currency string) string {
	return StyleAmount.Render(FormatAmount(amount, currency))
}

// ColorSwatch renders a small block in a card color.
func ColorSwatch(hexColor string) string {
	if hexColor == "" {
		return StyleMuted.Render("██")
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor)).Render("██")
}

// LabelValue formats a label-value pair with the label right-aligned to width.
func LabelValue(label, value string, width int) string {
	return fmt.Sprintf("%s %s", StyleLabel.Width(width).Render(label+":"), value)
}

// printLabels prints pairs as aligned label-value lines, sizing the label
// column to the longest label.
func printLabels(pairs ...[2]string) {
	width := 0
	for _, p := range pairs {
		width = max(width, lipgloss.Width(p[0])+1)
	}
	for _, p := range pairs {
		fmt.Println(LabelValue(p[0], p[1], width))
	}
}
