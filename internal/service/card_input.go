package service

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	walleterr "github.com/amterp/wallet/internal/errors"
	"github.com/amterp/wallet/internal/gateway"
	"github.com/amterp/wallet/internal/model"
)

// Field length limits applied while typing.
const (
	MaxNumberLen = 16
	MaxExpiryLen = 2
	MaxCVCLen    = 3
)

// Required-field messages, checked in form order.
const (
	MsgNumberRequired      = "Card number is required"
	MsgHolderNameRequired  = "Holder name is required"
	MsgExpiryMonthRequired = "Expiry month is required"
	MsgExpiryYearRequired  = "Expiry year is required"
	MsgCVCRequired         = "CVC is required"
)

// AddCardInput contains the raw form values for a new card.
type AddCardInput struct {
	HolderName  string
	Number      string
	ExpiryMonth string
	ExpiryYear  string
	CVC         string
	CardColor   string // empty picks a random palette color
}

// ShapeNumber keeps digits only, at most 16 of them.
func ShapeNumber(s string) string {
	return digitsOnly(s, MaxNumberLen)
}

// ShapeHolderName upper-cases the name and drops any digits.
func ShapeHolderName(s string) string {
	s = cases.Upper(language.Und).String(s)
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, s)
}

// ShapeExpiry keeps digits only, at most 2 of them. Used for month and year.
func ShapeExpiry(s string) string {
	return digitsOnly(s, MaxExpiryLen)
}

// ShapeCVC keeps digits only, at most 3 of them.
func ShapeCVC(s string) string {
	return digitsOnly(s, MaxCVCLen)
}

// Shaped returns a copy with every field passed through its shaping rule.
func (in AddCardInput) Shaped() AddCardInput {
	return AddCardInput{
		HolderName:  ShapeHolderName(in.HolderName),
		Number:      ShapeNumber(in.Number),
		ExpiryMonth: ShapeExpiry(in.ExpiryMonth),
		ExpiryYear:  ShapeExpiry(in.ExpiryYear),
		CVC:         ShapeCVC(in.CVC),
		CardColor:   strings.TrimSpace(in.CardColor),
	}
}

// Validate reports every missing required field. The result matches
// errors.Is(err, errors.ErrInvalidInput) when non-nil.
func (in AddCardInput) Validate() error {
	var errs []error
	if in.Number == "" {
		errs = append(errs, walleterr.Required(MsgNumberRequired))
	}
	if strings.TrimSpace(in.HolderName) == "" {
		errs = append(errs, walleterr.Required(MsgHolderNameRequired))
	}
	if in.ExpiryMonth == "" {
		errs = append(errs, walleterr.Required(MsgExpiryMonthRequired))
	}
	if in.ExpiryYear == "" {
		errs = append(errs, walleterr.Required(MsgExpiryYearRequired))
	}
	if in.CVC == "" {
		errs = append(errs, walleterr.Required(MsgCVCRequired))
	}
	return errors.Join(errs...)
}

// Card builds the card that will be stored once tokenization returns id.
func (in AddCardInput) Card(id string) model.Card {
	color := in.CardColor
	if color == "" {
		color = model.RandomCardColor()
	}
	return model.Card{
		ID:          id,
		HolderName:  in.HolderName,
		Number:      in.Number,
		ExpiryMonth: in.ExpiryMonth,
		ExpiryYear:  in.ExpiryYear,
		CVC:         in.CVC,
		CardColor:   color,
	}
}

// CardDetails converts a stored card into a tokenization request.
// Expiry fields are sent as integers.
func CardDetails(c model.Card) (gateway.CardDetails, error) {
	month, err := strconv.Atoi(c.ExpiryMonth)
	if err != nil {
		return gateway.CardDetails{}, walleterr.InvalidField("expiry month", "must be a number")
	}
	year, err := strconv.Atoi(c.ExpiryYear)
	if err != nil {
		return gateway.CardDetails{}, walleterr.InvalidField("expiry year", "must be a number")
	}
	return gateway.CardDetails{
		Name:            c.HolderName,
		Number:          c.Number,
		ExpirationMonth: month,
		ExpirationYear:  year,
		SecurityCode:    c.CVC,
	}, nil
}

func digitsOnly(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		if b.Len() == max {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}
