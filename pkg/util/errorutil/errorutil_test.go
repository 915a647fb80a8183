package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"domain error passes through", NewForbidden("nope"), http.StatusForbidden, CodeForbidden},
		{"wrapped domain error", fmt.Errorf("ctx: %w", NewConflict("dup", nil)), http.StatusBadRequest, CodeConflict},
		{"fiber error", fiber.NewError(http.StatusNotFound, "Cannot GET /x"), http.StatusNotFound, CodeNotFound},
		{"no rows", pgx.ErrNoRows, http.StatusNotFound, CodeNotFound},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			assert.Equal(t, tt.status, de.HTTPStatus)
			assert.Equal(t, tt.code, de.Code)
		})
	}

	assert.Nil(t, ToDomainError(nil))
}

func TestInternalErrorHidesCause(t *testing.T) {
	cause := errors.New("connection refused")
	de := ToDomainError(NewInternalError(cause))

	assert.Equal(t, "internal server error", de.Message)
	assert.ErrorIs(t, de, cause)
}

func TestUnauthorizedCause(t *testing.T) {
	cause := errors.New("token is expired")
	de := ToDomainError(NewUnauthorizedCause("not authorized, token failed", cause))

	assert.Equal(t, http.StatusUnauthorized, de.HTTPStatus)
	assert.Equal(t, "not authorized, token failed", de.Message)
	assert.ErrorIs(t, de, cause)
}

func TestDeadlineIsTimeout(t *testing.T) {
	wrapped := NewInternalError(fmt.Errorf("list ideas: %w", context.DeadlineExceeded))
	de := ToDomainError(wrapped)

	assert.Equal(t, CodeTimeout, de.Code)
	assert.Equal(t, http.StatusServiceUnavailable, de.HTTPStatus)
	assert.NotContains(t, de.Message, "deadline")
}
