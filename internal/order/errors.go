package order

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound signals that no order exists for the requested id. It is a
// recoverable, client-facing condition, not a fault.
var ErrNotFound = errors.New("order not found")

// FieldError names a single offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError rejects malformed create-order input. It carries every
// offending field so the client sees the full list in one round trip.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// PersistenceError wraps a store fault during an order write or read. It is
// fatal for the current operation and never retried automatically.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
