package resolver

import (
	"fmt"
	"strings"

	walleterr "github.com/amterp/wallet/internal/errors"
	"github.com/amterp/wallet/internal/model"
)

// CardSource supplies the current card list.
type CardSource interface {
	Cards() []model.Card
}

// CardResolver turns user-supplied references into cards.
type CardResolver struct {
	source CardSource
}

// NewCardResolver creates a new card resolver.
func NewCardResolver(source CardSource) *CardResolver {
	return &CardResolver{source: source}
}

// Resolve finds a card by exact id, then by unique id prefix, then by
// unique last four digits of the number. A reference matching more than
// one card is a validation error.
func (r *CardResolver) Resolve(ref string) (*model.Card, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, walleterr.Required("Card reference is required")
	}

	cards := r.source.Cards()

	for i := range cards {
		if cards[i].ID == ref {
			return &cards[i], nil
		}
	}

	if card, err := unique(ref, "id prefix", cards, func(c model.Card) bool {
		return c.ID != "" && strings.HasPrefix(c.ID, ref)
	}); card != nil || err != nil {
		return card, err
	}

	if isLastFour(ref) {
		if card, err := unique(ref, "last four digits", cards, func(c model.Card) bool {
			return len(c.Number) >= 4 && c.LastFour() == ref
		}); card != nil || err != nil {
			return card, err
		}
	}

	return nil, walleterr.CardNotFound(ref)
}

func unique(ref, kind string, cards []model.Card, match func(model.Card) bool) (*model.Card, error) {
	var found []int
	for i, c := range cards {
		if match(c) {
			found = append(found, i)
		}
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		c := cards[found[0]]
		return &c, nil
	default:
		ids := make([]string, len(found))
		for i, idx := range found {
			ids[i] = cards[idx].ID
		}
		return nil, walleterr.InvalidField("card",
			fmt.Sprintf("%q matches %d cards by %s (%s); use the full id", ref, len(found), kind, strings.Join(ids, ", ")))
	}
}

func isLastFour(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
