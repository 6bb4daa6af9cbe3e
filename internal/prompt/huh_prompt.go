package prompt

import (
	"errors"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/amterp/wallet/internal/model"
	"github.com/amterp/wallet/internal/service"
)

// HuhPrompter implements Prompter using the charmbracelet/huh library.
type HuhPrompter struct{}

// NewHuhPrompter creates a new huh-based prompter.
func NewHuhPrompter() *HuhPrompter {
	return &HuhPrompter{}
}

func (p *HuhPrompter) Confirm(title string, defaultValue bool) (bool, error) {
	result := defaultValue

	err := huh.NewConfirm().
		Title(title).
		Value(&result).
		Run()

	return result, err
}

func (p *HuhPrompter) CardForm(initial service.AddCardInput) (service.AddCardInput, error) {
	v := initial
	if v.CardColor == "" {
		v.CardColor = model.RandomCardColor()
	}

	colors := make([]huh.Option[string], len(model.CardColors))
	for i, c := range model.CardColors {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render("██")
		colors[i] = huh.NewOption(swatch+" "+c, c)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Card number").
				Placeholder("4242 4242 4242 4242").
				CharLimit(19). // room for spaces while typing
				Validate(required(service.ShapeNumber, service.MsgNumberRequired)).
				Value(&v.Number),
			huh.NewInput().
				Title("Holder name").
				Placeholder("JOHN DOE").
				Validate(required(service.ShapeHolderName, service.MsgHolderNameRequired)).
				Value(&v.HolderName),
			huh.NewInput().
				Title("Expiry month").
				Placeholder("MM").
				CharLimit(service.MaxExpiryLen).
				Validate(required(service.ShapeExpiry, service.MsgExpiryMonthRequired)).
				Value(&v.ExpiryMonth),
			huh.NewInput().
				Title("Expiry year").
				Placeholder("YY").
				CharLimit(service.MaxExpiryLen).
				Validate(required(service.ShapeExpiry, service.MsgExpiryYearRequired)).
				Value(&v.ExpiryYear),
			huh.NewInput().
				Title("CVC").
				Placeholder("CVC").
				CharLimit(service.MaxCVCLen).
				EchoMode(huh.EchoModePassword).
				Validate(required(service.ShapeCVC, service.MsgCVCRequired)).
				Value(&v.CVC),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Card color").
				Options(colors...).
				Value(&v.CardColor),
		),
	)

	if err := form.Run(); err != nil {
		return initial, err
	}
	return v.Shaped(), nil
}

// required rejects input that shapes to nothing.
func required(shape func(string) string, msg string) func(string) error {
	return func(s string) error {
		if shape(s) == "" {
			return errors.New(msg)
		}
		return nil
	}
}
