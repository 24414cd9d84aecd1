package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	t.Run("matches sentinel through wrapping", func(t *testing.T) {
		err := fmt.Errorf("invalid post: %w", NewValidation("text", "too short"))
		assert.True(t, errors.Is(err, ErrValidation))
		assert.False(t, errors.Is(err, ErrConflict))
	})

	t.Run("message lists fields in order", func(t *testing.T) {
		err := &ValidationError{Fields: map[string]string{"text": "a", "group": "b"}}
		assert.Equal(t, "validation failed: group: b; text: a", err.Error())
	})

	t.Run("empty fields", func(t *testing.T) {
		err := &ValidationError{}
		assert.Equal(t, "validation failed", err.Error())
	})
}

func TestFieldErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want map[string]string
	}{
		{
			name: "validation error",
			err:  fmt.Errorf("wrap: %w", NewValidation("text", "required")),
			want: map[string]string{"text": "required"},
		},
		{
			name: "bare sentinel",
			err:  ErrValidation,
			want: map[string]string{"__all__": "validation failed"},
		},
		{
			name: "other error",
			err:  ErrNotFound,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FieldErrors(tt.err))
		})
	}
}
