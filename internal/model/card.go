package model

// Card represents one payment card as entered by the user.
// The JSON field names are the persisted contract for the "cards" key and
// must not change, or previously stored wallets stop loading.
type Card struct {
	// ID is empty until tokenization succeeds, then holds the gateway token id.
	ID          string `json:"id"`
	HolderName  string `json:"holderName"`
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	CVC         string `json:"cvc"`
	CardColor   string `json:"cardColor"`
}

// LastFour returns the final four digits of the card number, or the whole
// number if it is shorter than that.
func (c Card) LastFour() string {
	if len(c.Number) <= 4 {
		return c.Number
	}
	return c.Number[len(c.Number)-4:]
}

// IsTokenized reports whether the card has been assigned a gateway id.
func (c Card) IsTokenized() bool {
	return c.ID != ""
}

// CloneCards returns a copy of the slice that shares no backing array with
// the input. Always non-nil.
func CloneCards(cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}
