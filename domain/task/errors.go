package task

import (
	"errors"
	"fmt"
)

// Sentinel errors for task operations.
var (
	// ErrValidation is returned when a required field is missing or malformed.
	ErrValidation = errors.New("validation error")

	// ErrInvalidID is returned when an identifier is not well-formed.
	ErrInvalidID = errors.New("invalid id")

	// ErrNotFound is returned when no task matches the identifier.
	ErrNotFound = errors.New("task not found")

	// ErrStore is returned when the underlying store fails.
	ErrStore = errors.New("store error")
)

// Error codes shared by the request-reply envelope and the HTTP API.
const (
	CodeValidation = "validation_error"
	CodeInvalidID  = "invalid_id"
	CodeNotFound   = "not_found"
	CodeStore      = "store_error"
)

// Validation wraps ErrValidation with detail.
func Validation(detail string) error {
	return fmt.Errorf("%w: %s", ErrValidation, detail)
}

// InvalidID wraps ErrInvalidID for the offending id.
func InvalidID(id string) error {
	return fmt.Errorf("%w: %q", ErrInvalidID, id)
}

// NotFound wraps ErrNotFound for the missing id.
func NotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// StoreFailure wraps a driver error with ErrStore, keeping both in the chain.
func StoreFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}

// Code returns the wire code for err.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrInvalidID):
		return CodeInvalidID
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	default:
		return CodeStore
	}
}

// FromCode rebuilds a domain error from its wire code and message.
func FromCode(code, message string) error {
	switch code {
	case CodeValidation:
		return &codedError{sentinel: ErrValidation, message: message}
	case CodeInvalidID:
		return &codedError{sentinel: ErrInvalidID, message: message}
	case CodeNotFound:
		return &codedError{sentinel: ErrNotFound, message: message}
	default:
		return &codedError{sentinel: ErrStore, message: message}
	}
}

// codedError keeps the original message while matching the sentinel.
type codedError struct {
	sentinel error
	message  string
}

func (e *codedError) Error() string {
	if e.message == "" {
		return e.sentinel.Error()
	}
	return e.message
}

func (e *codedError) Unwrap() error { return e.sentinel }
