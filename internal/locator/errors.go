package locator

import (
	"errors"
	"fmt"
)

// Field names attached to a ValidationError.
const (
	FieldK    = "k"
	FieldGrid = "grid"
)

// ErrInternal marks failures that are not caused by the caller's input.
var ErrInternal = errors.New("internal error")

// ValidationError reports malformed input. Field names the offending input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Kind is the error kind reported at the service boundary.
func (e *ValidationError) Kind() string { return "ValidationError" }

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidationError reports whether err wraps a *ValidationError and returns it.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
