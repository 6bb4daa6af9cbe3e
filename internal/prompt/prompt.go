package prompt

import (
	"errors"

	"github.com/amterp/wallet/internal/service"
)

// ErrNonInteractive is returned when prompting in non-interactive mode.
var ErrNonInteractive = errors.New("cannot prompt in non-interactive mode")

// Prompter defines the interface for interactive user prompts.
type Prompter interface {
	// Confirm prompts for yes/no.
	Confirm(title string, defaultValue bool) (bool, error)

	// CardForm asks for the details of a new card, starting from initial.
	// Values come back shaped.
	CardForm(initial service.AddCardInput) (service.AddCardInput, error)
}

// NoopPrompter returns errors for all prompts (non-interactive mode).
type NoopPrompter struct{}

func (p *NoopPrompter) Confirm(title string, defaultValue bool) (bool, error) {
	return false, ErrNonInteractive
}

func (p *NoopPrompter) CardForm(initial service.AddCardInput) (service.AddCardInput, error) {
	return initial, ErrNonInteractive
}
