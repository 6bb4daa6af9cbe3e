package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/amterp/wallet/internal/model"
)

// GatewayRequest is one request seen by FakeGateway.
type GatewayRequest struct {
	Path           string
	User           string // basic-auth user name
	IdempotencyKey string
	Body           map[string]any
}

// FakeGateway is an httptest server that mimics the token and charge
// endpoints. Both live on the same host.
type FakeGateway struct {
	Server *httptest.Server

	mu          sync.Mutex
	requests    []GatewayRequest
	tokenSeq    int
	tokenError  string // when set, /tokens answers 400 with this message
	chargeError string // when set, /charges answers 400 with this message
	declined    bool   // when set, /charges answers 200 with status failed
	noTokenID   bool
}

// NewFakeGateway starts a fake gateway and closes it when the test ends.
func NewFakeGateway(t *testing.T) *FakeGateway {
	t.Helper()
	g := &FakeGateway{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /tokens", g.handleToken)
	mux.HandleFunc("POST /charges", g.handleCharge)
	g.Server = httptest.NewServer(mux)
	t.Cleanup(g.Server.Close)
	return g
}

// Config returns gateway settings pointing at the fake, with test keys.
func (g *FakeGateway) Config() model.GatewayConfig {
	return model.GatewayConfig{
		VaultURL:       g.Server.URL,
		APIURL:         g.Server.URL,
		PublicKey:      "pkey_test_fake",
		SecretKey:      "skey_test_fake",
		Currency:       "thb",
		TimeoutSeconds: 5,
	}
}

// RejectTokens makes /tokens fail with msg. Empty msg restores success.
func (g *FakeGateway) RejectTokens(msg string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tokenError = msg
}

// RejectCharges makes /charges fail with msg. Empty msg restores success.
func (g *FakeGateway) RejectCharges(msg string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.chargeError = msg
}

// DeclineCharges makes /charges return a failed charge with HTTP 200.
func (g *FakeGateway) DeclineCharges(declined bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.declined = declined
}

// OmitTokenID makes /tokens succeed without an id.
func (g *FakeGateway) OmitTokenID(omit bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.noTokenID = omit
}

// Requests returns every request seen so far.
func (g *FakeGateway) Requests() []GatewayRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]GatewayRequest, len(g.requests))
	copy(out, g.requests)
	return out
}

// RequestsTo returns the requests made to path.
func (g *FakeGateway) RequestsTo(path string) []GatewayRequest {
	var out []GatewayRequest
	for _, r := range g.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (g *FakeGateway) record(r *http.Request) (map[string]any, bool) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, false
	}
	user, _, _ := r.BasicAuth()
	g.requests = append(g.requests, GatewayRequest{
		Path:           r.URL.Path,
		User:           user,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
		Body:           body,
	})
	return body, true
}

func (g *FakeGateway) handleToken(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	body, ok := g.record(r)
	if !ok {
		writeGatewayError(w, http.StatusBadRequest, "bad_request", "malformed JSON")
		return
	}
	if g.tokenError != "" {
		writeGatewayError(w, http.StatusBadRequest, "invalid_card", g.tokenError)
		return
	}

	g.tokenSeq++
	card, _ := body["card"].(map[string]any)
	number, _ := card["number"].(string)
	last := number
	if len(last) > 4 {
		last = last[len(last)-4:]
	}
	resp := map[string]any{
		"object":   "token",
		"livemode": false,
		"used":     false,
		"card":     map[string]any{"brand": "Visa", "last_digits": last, "name": card["name"]},
	}
	if !g.noTokenID {
		resp["id"] = fmt.Sprintf("tokn_test_%d", g.tokenSeq)
	}
	writeGatewayJSON(w, http.StatusOK, resp)
}

func (g *FakeGateway) handleCharge(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	body, ok := g.record(r)
	if !ok {
		writeGatewayError(w, http.StatusBadRequest, "bad_request", "malformed JSON")
		return
	}
	if g.chargeError != "" {
		writeGatewayError(w, http.StatusBadRequest, "invalid_charge", g.chargeError)
		return
	}

	resp := map[string]any{
		"object":   "charge",
		"id":       fmt.Sprintf("chrg_test_%d", len(g.requests)),
		"amount":   body["amount"],
		"currency": body["currency"],
		"status":   "successful",
		"paid":     true,
	}
	if g.declined {
		resp["status"] = "failed"
		resp["paid"] = false
		resp["failure_code"] = "insufficient_fund"
		resp["failure_message"] = "insufficient funds in the account or the card has reached the credit limit"
	}
	writeGatewayJSON(w, http.StatusOK, resp)
}

func writeGatewayJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeGatewayError(w http.ResponseWriter, status int, code, msg string) {
	writeGatewayJSON(w, status, map[string]string{"object": "error", "code": code, "message": msg})
}
