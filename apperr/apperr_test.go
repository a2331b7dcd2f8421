package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Unauthorized("no"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{DuplicateEntry("twice"), http.StatusConflict},
		{Conflict("in use"), http.StatusConflict},
		{RateLimited("slow down"), http.StatusTooManyRequests},
		{Internal("boom", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Status(), tt.err.Code)
	}
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("connection refused")

	got := From(cause)

	assert.Equal(t, KindInternal, got.Kind)
	assert.ErrorIs(t, got, cause)
	assert.Equal(t, "internal server error", got.Message)
}

func TestFromKeepsWrappedAppError(t *testing.T) {
	dup := DuplicateEntry("menu item already exists")
	wrapped := fmt.Errorf("create menu item: %w", dup)

	assert.Same(t, dup, From(wrapped))
	assert.True(t, Is(wrapped, KindDuplicateEntry))
	assert.False(t, Is(wrapped, KindNotFound))
}

func TestWithDetail(t *testing.T) {
	err := NotFound("table type not found").WithDetail("table_type_id", "abc")

	assert.Equal(t, map[string]any{"table_type_id": "abc"}, err.Details)
}
