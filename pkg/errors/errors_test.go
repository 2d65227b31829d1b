package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorString(t *testing.T) {
	withCause := &AppError{Code: "INTERNAL_ERROR", Message: "stats failed", Err: errors.New("db down")}
	assert.Equal(t, "INTERNAL_ERROR: stats failed: db down", withCause.Error())

	bare := &AppError{Code: "INVALID_INPUT", Message: "user id is required"}
	assert.Equal(t, "INVALID_INPUT: user id is required", bare.Error())
}

func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("pq: relation \"reviews\" does not exist")
	err := Internal(cause)

	assert.NotContains(t, err.Message, "reviews")
	assert.ErrorIs(t, err, cause)
}

func TestFrom(t *testing.T) {
	invalid := InvalidInput("user id is required")

	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantStatus  int
		wantMessage string
	}{
		{"app error", invalid, "INVALID_INPUT", http.StatusBadRequest, "user id is required"},
		{"wrapped app error", fmt.Errorf("bulk: %w", invalid), "INVALID_INPUT", http.StatusBadRequest, "user id is required"},
		{"invalid sentinel", fmt.Errorf("category: %w", ErrInvalidInput), "INVALID_INPUT", http.StatusBadRequest, "category: invalid input"},
		{"deadline", fmt.Errorf("rank users: %w", context.DeadlineExceeded), "TIMEOUT", http.StatusGatewayTimeout, "the request took too long to complete"},
		{"unknown", errors.New("pgx: connection refused"), "INTERNAL_ERROR", http.StatusInternalServerError, "an internal error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := From(tt.err)

			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantMessage, got.Message)
			assert.ErrorIs(t, tt.err, got.Err)
		})
	}
}

func TestFrom_AppErrorPassesThrough(t *testing.T) {
	original := Timeout(context.DeadlineExceeded)

	assert.Same(t, original, From(fmt.Errorf("leaderboard: %w", original)))
}
