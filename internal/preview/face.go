// Package preview lays out and renders the front of a card.
package preview

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/amterp/wallet/internal/model"
)

// Placeholders shown for empty fields.
const (
	PlaceholderHolder = "JOHN DOE"
	PlaceholderMonth  = "MM"
	PlaceholderYear   = "YY"
	PlaceholderCVC    = "CVC"
	MaskedBlock       = "●●●●"
)

// NumberBlocks is how many four-digit groups a card number shows.
const NumberBlocks = 4

// Segment is one piece of text on the card face. Dimmed segments are
// placeholders or not yet fully entered.
type Segment struct {
	Text   string `json:"text"`
	Dimmed bool   `json:"dimmed"`
}

// Face is the laid-out front of a card, independent of how it is drawn.
type Face struct {
	Holder     Segment               `json:"holder"`
	Blocks     [NumberBlocks]Segment `json:"blocks"`
	Expiry     Segment               `json:"expiry"`
	CVC        Segment               `json:"cvc"`
	Background string                `json:"background"`
}

// FaceOf lays out c. Only the last block ever shows digits, and only once
// the number is complete.
func FaceOf(c model.Card) Face {
	f := Face{Background: c.CardColor}

	if c.HolderName != "" {
		f.Holder = Segment{Text: cases.Upper(language.Und).String(c.HolderName)}
	} else {
		f.Holder = Segment{Text: PlaceholderHolder, Dimmed: true}
	}

	n := len(c.Number)
	for i := 0; i < NumberBlocks; i++ {
		text := MaskedBlock
		if i == NumberBlocks-1 && n == 16 {
			text = c.Number[n-4:]
		}
		f.Blocks[i] = Segment{Text: text, Dimmed: n < (i+1)*4}
	}

	month := orDefault(c.ExpiryMonth, PlaceholderMonth)
	year := orDefault(c.ExpiryYear, PlaceholderYear)
	f.Expiry = Segment{Text: month + " / " + year, Dimmed: c.ExpiryMonth == ""}

	f.CVC = Segment{Text: orDefault(c.CVC, PlaceholderCVC), Dimmed: c.CVC == ""}
	return f
}

// Redacted returns f with the security code masked, for faces that leave
// the process.
func (f Face) Redacted() Face {
	if f.CVC.Text != PlaceholderCVC || !f.CVC.Dimmed {
		f.CVC = Segment{Text: strings.Repeat("●", len(f.CVC.Text))}
	}
	return f
}

// NumberLine joins the number blocks with single spaces.
func (f Face) NumberLine() string {
	parts := make([]string, len(f.Blocks))
	for i, b := range f.Blocks {
		parts[i] = b.Text
	}
	return strings.Join(parts, " ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
