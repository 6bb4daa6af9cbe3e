// Package gateway talks to an Omise-style tokenization and charge API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	walleterr "github.com/amterp/wallet/internal/errors"
	"github.com/amterp/wallet/internal/logger"
	"github.com/amterp/wallet/internal/model"
)

const maxErrorBody = 64 << 10

// Client calls the vault (tokens) and API (charges) hosts.
type Client struct {
	vaultURL   string
	apiURL     string
	publicKey  string
	secretKey  string
	currency   string
	httpClient *http.Client
	log        zerolog.Logger
	newKey     func() string
}

// Option configures the Client during construction.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithLogger configures structured logging.
func WithLogger(l zerolog.Logger) Option {
	return func(cl *Client) {
		cl.log = l
	}
}

// WithIdempotencyKeys replaces the generator used for Idempotency-Key headers.
func WithIdempotencyKeys(fn func() string) Option {
	return func(cl *Client) {
		cl.newKey = fn
	}
}

// New creates a Client from resolved gateway settings.
func New(cfg model.GatewayConfig, opts ...Option) (*Client, error) {
	if cfg.VaultURL == "" || cfg.APIURL == "" {
		return nil, &walleterr.NotConfiguredError{Setting: "gateway URL", Hint: "set vault_url and api_url"}
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "thb"
	}

	c := &Client{
		vaultURL:   strings.TrimSuffix(cfg.VaultURL, "/"),
		apiURL:     strings.TrimSuffix(cfg.APIURL, "/"),
		publicKey:  cfg.PublicKey,
		secretKey:  cfg.SecretKey,
		currency:   currency,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.Nop(),
		newKey:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "gateway").Logger()
	return c, nil
}

// Currency returns the currency charges are made in.
func (c *Client) Currency() string {
	return c.currency
}

// CreateToken exchanges raw card details for a single-use token.
func (c *Client) CreateToken(ctx context.Context, card CardDetails) (*Token, error) {
	if c.publicKey == "" {
		return nil, &walleterr.NotConfiguredError{Setting: "gateway public key", Hint: "set WALLET_PUBLIC_KEY or [gateway] public_key"}
	}

	var tok Token
	err := c.doJSON(ctx, c.vaultURL+"/tokens", c.publicKey, nil, tokenRequest{Card: card}, &tok)
	if err != nil {
		return nil, err
	}
	if tok.ID == "" {
		return nil, &walleterr.GatewayError{StatusCode: http.StatusOK, Message: "token response has no id"}
	}
	c.log.Debug().Str("token", tok.ID).Msg("token created")
	return &tok, nil
}

// CreateCharge charges a token. A 2xx response with status "failed" is
// reported as a GatewayError carrying the failure code and message.
func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	if c.secretKey == "" {
		return nil, &walleterr.NotConfiguredError{Setting: "gateway secret key", Hint: "set WALLET_SECRET_KEY or [gateway] secret_key"}
	}
	if req.Currency == "" {
		req.Currency = c.currency
	}

	headers := map[string]string{"Idempotency-Key": c.newKey()}

	var ch Charge
	if err := c.doJSON(ctx, c.apiURL+"/charges", c.secretKey, headers, req, &ch); err != nil {
		return nil, err
	}
	if ch.Status == ChargeFailed {
		msg := ch.FailureMessage
		if msg == "" {
			msg = "charge failed"
		}
		return &ch, &walleterr.GatewayError{StatusCode: http.StatusOK, Code: ch.FailureCode, Message: msg}
	}
	c.log.Info().Str("charge", ch.ID).Str("status", ch.Status).Int64("amount", ch.Amount).Msg("charge created")
	return &ch, nil
}

// doJSON posts body as JSON and decodes a 2xx response into dst. Non-2xx
// responses become a *GatewayError built from the gateway's error body.
func (c *Client) doJSON(ctx context.Context, url, key string, headers map[string]string, body, dst any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(key, "")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.log.Debug().Str("url", url).Msg("gateway request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &walleterr.GatewayError{Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug().Str("url", url).Int("status", resp.StatusCode).Msg("gateway response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var errRS errorResponse
		if json.Unmarshal(respBody, &errRS) == nil && errRS.Message != "" {
			return &walleterr.GatewayError{StatusCode: resp.StatusCode, Code: errRS.Code, Message: errRS.Message}
		}
		msg := strings.TrimSpace(string(respBody))
		if msg == "" {
			msg = resp.Status
		}
		return &walleterr.GatewayError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &walleterr.GatewayError{StatusCode: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}
