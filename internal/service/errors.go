// Package service implements the reservation lifecycle and the space
// catalog on top of the repository layer.  Every operation takes an
// explicit principal; nothing reads ambient auth state.  Errors fall
// into three deterministic kinds: ValidationError (per-field
// messages), ErrNotFound and ConflictError.  None are retried and no
// operation leaves a partial write behind.
package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when an operation references an ID that does
// not exist.  Handlers translate it into a 404 response.
var ErrNotFound = errors.New("not found")

// FieldErrors collects validation messages keyed by input field name.
type FieldErrors map[string][]string

// Add appends a message for a field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// ValidationError reports one or more invalid input fields.  Handlers
// render it as an unprocessable-entity response with the full field
// map so clients can attach messages to their form inputs.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("validation failed: %s", strings.Join(keys, ", "))
}

// ConflictError reports that the requested time window overlaps an
// active reservation on the same space and date.  It surfaces as a
// validation error attached to the conflicting field.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// AsFieldErrors renders the conflict in the same shape as a
// ValidationError payload.
func (e *ConflictError) AsFieldErrors() FieldErrors {
	return FieldErrors{e.Field: []string{e.Message}}
}
