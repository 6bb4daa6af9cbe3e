package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	walleterr "github.com/amterp/wallet/internal/errors"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
	Code    string   `json:"code,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error writes an error response, mapping domain errors to HTTP status codes.
func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: err.Error()}

	var notFound *walleterr.NotFoundError
	var validation *walleterr.ValidationError
	var gateway *walleterr.GatewayError
	var notConfigured *walleterr.NotConfiguredError
	var persistence *walleterr.PersistenceError

	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &validation):
		status = http.StatusBadRequest
		resp.Details = strings.Split(err.Error(), "\n")
		resp.Error = resp.Details[0]
	case errors.As(err, &gateway):
		status = http.StatusBadGateway
		resp.Code = gateway.Code
	case errors.As(err, &notConfigured):
		status = http.StatusServiceUnavailable
	case errors.As(err, &persistence):
		status = http.StatusInternalServerError
		resp.Error = "failed to save cards"
	}

	JSON(w, status, resp)
}

// BadRequest writes a 400 error with the given message.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, ErrorResponse{Error: message})
}
