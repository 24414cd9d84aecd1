// Package apperr defines the error kinds shared by the store, the services
// and the HTTP layer.
package apperr

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrValidation marks bad input: short text, unknown group, non-image upload.
	ErrValidation = errors.New("validation failed")
	// ErrAuthorization marks an actor trying something they are not allowed to do.
	ErrAuthorization = errors.New("not authorized")
	// ErrConflict marks a uniqueness violation such as a duplicate follow.
	ErrConflict = errors.New("conflict")
	// ErrNotFound marks an unknown post, group or user.
	ErrNotFound = errors.New("record not found")
)

// ValidationError carries one message per offending form field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidation builds a ValidationError for a single field.
func NewValidation(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// FieldErrors extracts field messages from err, or nil if err is not a
// validation error.
func FieldErrors(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	if errors.Is(err, ErrValidation) {
		return map[string]string{"__all__": err.Error()}
	}
	return nil
}
