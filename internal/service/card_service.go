package service

import (
	"context"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"github.com/amterp/wallet/internal/gateway"
	"github.com/amterp/wallet/internal/model"
	"github.com/amterp/wallet/internal/resolver"
	"github.com/amterp/wallet/internal/wallet"
)

// Test charges are a random amount in [MinChargeAmount, MinChargeAmount+ChargeAmountSpread).
const (
	MinChargeAmount    = 2000
	ChargeAmountSpread = 10
)

// PaymentSuccessful is shown after a charge goes through.
const PaymentSuccessful = "Payment successful!"

// Gateway is the subset of the gateway client the service needs.
type Gateway interface {
	CreateToken(ctx context.Context, card gateway.CardDetails) (*gateway.Token, error)
	CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.Charge, error)
	Currency() string
}

// ChargeResult describes a completed test charge.
type ChargeResult struct {
	Card     model.Card `json:"card"`
	ChargeID string     `json:"charge_id"`
	Amount   int64      `json:"amount"`
	Currency string     `json:"currency"`
	Status   string     `json:"status"`
	Message  string     `json:"message"`
}

// CardService handles card operations.
type CardService struct {
	store    *wallet.Store
	gateway  Gateway
	resolver *resolver.CardResolver
	log      zerolog.Logger
	amount   func() int64
}

// NewCardService creates a new card service.
func NewCardService(store *wallet.Store, gw Gateway, log zerolog.Logger) *CardService {
	return &CardService{
		store:    store,
		gateway:  gw,
		resolver: resolver.NewCardResolver(store),
		log:      log.With().Str("component", "service").Logger(),
		amount: func() int64 {
			return int64(MinChargeAmount + rand.IntN(ChargeAmountSpread))
		},
	}
}

// Add shapes and validates input, tokenizes the card and stores it.
// Nothing is stored unless the gateway returns a token id.
func (s *CardService) Add(ctx context.Context, input AddCardInput) (*model.Card, error) {
	input = input.Shaped()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	details, err := CardDetails(input.Card(""))
	if err != nil {
		return nil, err
	}

	tok, err := s.gateway.CreateToken(ctx, details)
	if err != nil {
		s.log.Warn().Err(err).Msg("tokenization failed")
		return nil, err
	}

	card := input.Card(tok.ID)
	if err := s.store.Add(ctx, card); err != nil {
		return nil, err
	}
	s.log.Info().Str("card", card.ID).Str("last4", card.LastFour()).Msg("card added")
	return &card, nil
}

// Get resolves a card by id, id prefix or last four digits.
func (s *CardService) Get(ref string) (*model.Card, error) {
	return s.resolver.Resolve(ref)
}

// List returns the stored cards in insertion order.
func (s *CardService) List() []model.Card {
	return s.store.Cards()
}

// Remove resolves ref and removes the matching card.
func (s *CardService) Remove(ctx context.Context, ref string) (*model.Card, error) {
	card, err := s.resolver.Resolve(ref)
	if err != nil {
		return nil, err
	}
	if err := s.RemoveCard(ctx, *card); err != nil {
		return nil, err
	}
	return card, nil
}

// RemoveCard removes an already resolved card. Cards without a token id are
// matched by their empty id, so every untokenized card goes with it.
func (s *CardService) RemoveCard(ctx context.Context, card model.Card) error {
	if err := s.store.Remove(ctx, card.ID); err != nil {
		return err
	}
	s.log.Info().Str("card", card.ID).Str("last4", card.LastFour()).Msg("card removed")
	return nil
}

// Charge runs a test charge against a stored card. Tokens are single use,
// so the card is tokenized again before charging.
func (s *CardService) Charge(ctx context.Context, ref string) (*ChargeResult, error) {
	card, err := s.resolver.Resolve(ref)
	if err != nil {
		return nil, err
	}

	details, err := CardDetails(*card)
	if err != nil {
		return nil, err
	}

	tok, err := s.gateway.CreateToken(ctx, details)
	if err != nil {
		s.log.Warn().Err(err).Str("card", card.ID).Msg("tokenization failed")
		return nil, err
	}

	ch, err := s.gateway.CreateCharge(ctx, gateway.ChargeRequest{
		Amount:   s.amount(),
		Currency: s.gateway.Currency(),
		Card:     tok.ID,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("card", card.ID).Msg("charge failed")
		return nil, err
	}

	return &ChargeResult{
		Card:     *card,
		ChargeID: ch.ID,
		Amount:   ch.Amount,
		Currency: ch.Currency,
		Status:   ch.Status,
		Message:  PaymentSuccessful,
	}, nil
}
