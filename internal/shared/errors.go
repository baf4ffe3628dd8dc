package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates a missing or invalid credential or token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates an authenticated but not permitted actor.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates a referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a duplicate unique key or a delete blocked by dependents.
	ErrConflict = errors.New("conflict")
	// ErrBadRequest indicates malformed or missing required input.
	ErrBadRequest = errors.New("bad request")
)

// FieldError reports a single validation violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates all field violations of a request. All
// violations are collected before any mutation is attempted.
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// Unwrap makes ValidationError match ErrBadRequest via errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrBadRequest
}

// NewValidationError builds a ValidationError from field violations.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}
