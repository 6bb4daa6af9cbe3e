package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/amterp/wallet/internal/model"
	"github.com/amterp/wallet/internal/preview"
	"github.com/amterp/wallet/internal/service"
	"github.com/amterp/wallet/internal/wallet"
)

// CardResponse is the API view of a card. The full number and the CVC never
// leave the process.
type CardResponse struct {
	ID          string       `json:"id"`
	HolderName  string       `json:"holder_name"`
	LastFour    string       `json:"last_four"`
	ExpiryMonth string       `json:"expiry_month"`
	ExpiryYear  string       `json:"expiry_year"`
	CardColor   string       `json:"card_color"`
	Preview     preview.Face `json:"preview"`
}

func toCardResponse(card model.Card) CardResponse {
	return CardResponse{
		ID:          card.ID,
		HolderName:  card.HolderName,
		LastFour:    card.LastFour(),
		ExpiryMonth: card.ExpiryMonth,
		ExpiryYear:  card.ExpiryYear,
		CardColor:   card.CardColor,
		Preview:     preview.FaceOf(card).Redacted(),
	}
}

func toCardResponses(cards []model.Card) []CardResponse {
	out := make([]CardResponse, len(cards))
	for i, c := range cards {
		out[i] = toCardResponse(c)
	}
	return out
}

// ListCardsResponse is returned by GET /api/v1/cards.
type ListCardsResponse struct {
	Cards    []CardResponse `json:"cards"`
	Revision uint64         `json:"revision"`
}

// AddCardRequest is the body of POST /api/v1/cards.
type AddCardRequest struct {
	HolderName  string `json:"holder_name"`
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CVC         string `json:"cvc"`
	CardColor   string `json:"card_color,omitempty"`
}

// ChargeResponse is returned by POST /api/v1/cards/{cardRef}/charge.
type ChargeResponse struct {
	Card     CardResponse `json:"card"`
	ChargeID string       `json:"charge_id"`
	Amount   int64        `json:"amount"`
	Currency string       `json:"currency"`
	Status   string       `json:"status"`
	Message  string       `json:"message"`
}

// Handler serves the card endpoints.
type Handler struct {
	cards *service.CardService
	store *wallet.Store
	log   zerolog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(cards *service.CardService, store *wallet.Store, log zerolog.Logger) *Handler {
	return &Handler{
		cards: cards,
		store: store,
		log:   log.With().Str("component", "api").Logger(),
	}
}

// RegisterRoutes mounts the card endpoints on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/-/live", h.Live)

	r.Route("/api/v1/cards", func(r chi.Router) {
		r.Get("/", h.ListCards)
		r.Post("/", h.AddCard)
		r.Route("/{cardRef}", func(r chi.Router) {
			r.Get("/", h.GetCard)
			r.Delete("/", h.RemoveCard)
			r.Post("/charge", h.ChargeCard)
			r.Get("/preview", h.PreviewCard)
		})
	})
}

// Live reports that the server is up.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListCards returns every card in insertion order.
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	JSON(w, http.StatusOK, ListCardsResponse{
		Cards:    toCardResponses(snap.Cards),
		Revision: snap.Revision,
	})
}

// AddCard tokenizes and stores a new card.
func (h *Handler) AddCard(w http.ResponseWriter, r *http.Request) {
	var req AddCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "Invalid JSON")
		return
	}

	card, err := h.cards.Add(r.Context(), service.AddCardInput{
		HolderName:  req.HolderName,
		Number:      req.Number,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		CVC:         req.CVC,
		CardColor:   req.CardColor,
	})
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusCreated, toCardResponse(*card))
}

// GetCard returns one card by reference.
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.cards.Get(chi.URLParam(r, "cardRef"))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, toCardResponse(*card))
}

// RemoveCard deletes one card by reference.
func (h *Handler) RemoveCard(w http.ResponseWriter, r *http.Request) {
	if _, err := h.cards.Remove(r.Context(), chi.URLParam(r, "cardRef")); err != nil {
		Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChargeCard runs a test charge against one card.
func (h *Handler) ChargeCard(w http.ResponseWriter, r *http.Request) {
	res, err := h.cards.Charge(r.Context(), chi.URLParam(r, "cardRef"))
	if err != nil {
		Error(w, err)
		return
	}

	h.log.Info().
		Str("card", res.Card.ID).
		Str("charge", res.ChargeID).
		Int64("amount", res.Amount).
		Str("req_id", RequestIDFrom(r.Context())).
		Msg("charge completed")

	JSON(w, http.StatusOK, ChargeResponse{
		Card:     toCardResponse(res.Card),
		ChargeID: res.ChargeID,
		Amount:   res.Amount,
		Currency: res.Currency,
		Status:   res.Status,
		Message:  res.Message,
	})
}

// PreviewCard returns the laid-out card face.
func (h *Handler) PreviewCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.cards.Get(chi.URLParam(r, "cardRef"))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, preview.FaceOf(*card).Redacted())
}
