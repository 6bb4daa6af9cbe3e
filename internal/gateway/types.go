package gateway

// CardDetails is what the vault needs to mint a token.
type CardDetails struct {
	Name            string `json:"name"`
	Number          string `json:"number"`
	ExpirationMonth int    `json:"expiration_month"`
	ExpirationYear  int    `json:"expiration_year"`
	SecurityCode    string `json:"security_code"`
}

type tokenRequest struct {
	Card CardDetails `json:"card"`
}

// Token is a single-use card token.
type Token struct {
	ID       string    `json:"id"`
	Object   string    `json:"object"`
	Livemode bool      `json:"livemode"`
	Used     bool      `json:"used"`
	Card     TokenCard `json:"card"`
}

// TokenCard is the masked card echoed back with a token.
type TokenCard struct {
	Brand      string `json:"brand"`
	LastDigits string `json:"last_digits"`
	Name       string `json:"name"`
}

// ChargeRequest charges a tokenized card. Amount is in minor units.
type ChargeRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Card     string `json:"card"`
}

// Charge is the gateway's view of a charge.
type Charge struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Paid           bool   `json:"paid"`
	FailureCode    string `json:"failure_code"`
	FailureMessage string `json:"failure_message"`
}

// Charge statuses reported by the gateway.
const (
	ChargeSuccessful = "successful"
	ChargePending    = "pending"
	ChargeFailed     = "failed"
)

// errorResponse is the gateway's error body.
type errorResponse struct {
	Object  string `json:"object"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
