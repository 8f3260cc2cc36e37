package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeAlreadyExists, http.StatusBadRequest},
		{CodeValidation, http.StatusBadRequest},
		{CodeInvalidOperation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFound("book not found")

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrConflict))

	wrapped := fmt.Errorf("load book: %w", err)
	assert.True(t, Is(wrapped, ErrNotFound))
}

func TestError_WithCause(t *testing.T) {
	cause := fmt.Errorf("disk on fire")
	err := Internal("failed to save").WithCause(cause)

	assert.Equal(t, "failed to save: disk on fire", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, ErrInternal))
}

func TestError_WithDetails(t *testing.T) {
	details := map[string]string{"username": "taken"}
	err := Conflict("Username already taken").WithDetails(details)

	assert.Equal(t, details, err.Details)
	assert.Equal(t, http.StatusConflict, err.HTTPStatus())
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrapf(cause, CodeInternal, "save user %s", "user-1")

	assert.Equal(t, CodeInternal, err.Code)
	assert.Equal(t, "save user user-1: boom", err.Error())
	assert.Equal(t, cause, Unwrap(err))
}
