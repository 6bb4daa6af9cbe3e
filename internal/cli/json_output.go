package cli

import (
	"encoding/json"
	"fmt"

	"github.com/amterp/wallet/internal/model"
	"github.com/amterp/wallet/internal/service"
)

// cardJson represents a card for JSON output. The full number and the CVC
// are replaced by the last four digits.
//
// SYNC WARNING: This struct must stay in sync with model.Card fields.
// If you add fields to model.Card, add them here too. See TestCardJsonFieldSync.
type cardJson struct {
	ID          string `json:"id"`
	HolderName  string `json:"holder_name"`
	LastFour    string `json:"last_four"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CardColor   string `json:"card_color"`
}

func cardToJson(c model.Card) cardJson {
	return cardJson{
		ID:          c.ID,
		HolderName:  c.HolderName,
		LastFour:    c.LastFour(),
		ExpiryMonth: c.ExpiryMonth,
		ExpiryYear:  c.ExpiryYear,
		CardColor:   c.CardColor,
	}
}

// CardOutput wraps a single card for JSON output.
type CardOutput struct {
	Card cardJson `json:"card"`
}

// NewCardOutput creates a CardOutput from a model.Card.
func NewCardOutput(card model.Card) CardOutput {
	return CardOutput{Card: cardToJson(card)}
}

// ListOutput wraps a list of cards for JSON output.
type ListOutput struct {
	Cards []cardJson `json:"cards"`
}

// NewListOutput creates a ListOutput from a slice of model.Card.
// Always returns an empty array (not null) when there are no cards.
func NewListOutput(cards []model.Card) ListOutput {
	result := make([]cardJson, 0, len(cards))
	for _, c := range cards {
		result = append(result, cardToJson(c))
	}
	return ListOutput{Cards: result}
}

// ChargeOutput is the JSON output of the charge command.
type ChargeOutput struct {
	Card     cardJson `json:"card"`
	ChargeID string   `json:"charge_id"`
	Amount   int64    `json:"amount"`
	Currency string   `json:"currency"`
	Status   string   `json:"status"`
	Message  string   `json:"message"`
}

// NewChargeOutput creates a ChargeOutput from a charge result.
func NewChargeOutput(res *service.ChargeResult) ChargeOutput {
	return ChargeOutput{
		Card:     cardToJson(res.Card),
		ChargeID: res.ChargeID,
		Amount:   res.Amount,
		Currency: res.Currency,
		Status:   res.Status,
		Message:  res.Message,
	}
}

// printJson marshals the value as indented JSON and prints it to stdout.
func printJson(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}
