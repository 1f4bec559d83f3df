package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/pvasek/taskhub/internal/domain"
	"github.com/pvasek/taskhub/internal/service/auth"
	"github.com/pvasek/taskhub/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid token", err: auth.ErrInvalidToken, want: http.StatusUnauthorized},
		{name: "expired token", err: auth.ErrExpiredToken, want: http.StatusUnauthorized},
		{name: "permission denied", err: domain.ErrPermissionDenied, want: http.StatusForbidden},
		{name: "task not found", err: store.ErrTaskNotFound, want: http.StatusNotFound},
		{name: "notification not found", err: store.ErrNotificationNotFound, want: http.StatusNotFound},
		{name: "concurrent modification", err: store.ErrConcurrentModification, want: http.StatusConflict},
		{name: "duplicate", err: store.ErrDuplicate, want: http.StatusConflict},
		{name: "invalid transition", err: domain.ErrInvalidTransition, want: http.StatusUnprocessableEntity},
		{name: "validation failure", err: domain.ErrValidation, want: http.StatusBadRequest},
		{name: "empty content", err: domain.ErrEmptyContent, want: http.StatusBadRequest},
		{name: "invalid entity", err: store.ErrInvalidEntity, want: http.StatusBadRequest},
		{name: "unknown error", err: errors.New("boom"), want: http.StatusInternalServerError},
		{
			name: "wrapped sentinel",
			err:  fmt.Errorf("transition task: %w", domain.ErrInvalidTransition),
			want: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("validation errors surface their message", func(t *testing.T) {
		t.Parallel()
		err := domain.NewValidationError("title", "cannot be empty", domain.ErrValidation)
		assert.Contains(t, GetSafeErrorMessage(err), "title")
	})

	t.Run("internal details never leak", func(t *testing.T) {
		t.Parallel()
		err := errors.New("pq: connection to postgres://user:pass@db failed")
		msg := GetSafeErrorMessage(err)
		assert.Equal(t, "An unexpected error occurred", msg)
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	})

	t.Run("concurrent modification suggests retry", func(t *testing.T) {
		t.Parallel()
		assert.Contains(t, GetSafeErrorMessage(store.ErrConcurrentModification), "retry")
	})
}
