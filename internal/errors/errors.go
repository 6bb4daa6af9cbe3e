package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for type checking
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrPersistence   = errors.New("persistence failure")
	ErrGateway       = errors.New("gateway failure")
	ErrNotConfigured = errors.New("not configured")
)

// NotFoundError indicates a resource doesn't exist.
type NotFoundError struct {
	Resource string // "card", "key"
	ID       string // The identifier that wasn't found
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ValidationError indicates invalid user input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// PersistenceError indicates the key-value adapter failed to read or write.
type PersistenceError struct {
	Op  string // "read" or "write"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// GatewayError is a failure reported by (or while talking to) the payment gateway.
type GatewayError struct {
	StatusCode int    // HTTP status, 0 for transport failures
	Code       string // Gateway error code, e.g. "invalid_card"
	Message    string
	Err        error // Underlying transport/decode error, if any
}

func (e *GatewayError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "unknown gateway error"
	}
	if e.Code != "" {
		return fmt.Sprintf("gateway: %s (%s)", msg, e.Code)
	}
	return "gateway: " + msg
}

func (e *GatewayError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrGateway, e.Err}
	}
	return []error{ErrGateway}
}

// NotConfiguredError indicates a required setting is missing.
type NotConfiguredError struct {
	Setting string
	Hint    string
}

func (e *NotConfiguredError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s is not configured (%s)", e.Setting, e.Hint)
	}
	return fmt.Sprintf("%s is not configured", e.Setting)
}

func (e *NotConfiguredError) Unwrap() error {
	return ErrNotConfigured
}

// Helper constructors for common cases

func CardNotFound(idOrSuffix string) error {
	return &NotFoundError{Resource: "card", ID: idOrSuffix}
}

func InvalidField(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func Required(message string) error {
	return &ValidationError{Message: message}
}

func ReadFailed(key string, err error) error {
	return &PersistenceError{Op: "read", Key: key, Err: err}
}

func WriteFailed(key string, err error) error {
	return &PersistenceError{Op: "write", Key: key, Err: err}
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsPersistenceError checks if an error came from the storage adapter.
func IsPersistenceError(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsGatewayError checks if an error came from the payment gateway.
func IsGatewayError(err error) bool {
	return errors.Is(err, ErrGateway)
}
