package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeMatching(t *testing.T) {
	base := errors.New("connection refused")
	wrapped := Wrap(base, CodeUnavailable, "tally store unavailable")

	t.Run("Is matches outermost code", func(t *testing.T) {
		assert.True(t, Is(wrapped, CodeUnavailable))
		assert.False(t, Is(wrapped, CodeInternal))
	})

	t.Run("HasCode walks the chain", func(t *testing.T) {
		outer := Wrap(fmt.Errorf("evaluate: %w", wrapped), CodeInternal, "evaluation failed")
		assert.True(t, HasCode(outer, CodeUnavailable))
		assert.True(t, HasCode(outer, CodeInternal))
		assert.False(t, HasCode(outer, CodeNotFound))
	})

	t.Run("cause is preserved", func(t *testing.T) {
		assert.ErrorIs(t, wrapped, base)
		assert.Contains(t, wrapped.Error(), "connection refused")
	})

	t.Run("Wrap of nil is nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "unused"))
	})

	t.Run("plain errors default to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(base))
		assert.Equal(t, CodeValidation, CodeOf(New(CodeValidation, "bad")))
	})
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{Code("something_else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTTPStatus(tt.code))
		})
	}
}
