package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/zwehtet-dev/talent2income-rating/pkg/errors"
	"github.com/zwehtet-dev/talent2income-rating/pkg/logger"
	"github.com/zwehtet-dev/talent2income-rating/pkg/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// --- WriteJSON ---

func TestWriteJSON_SetsContentTypeAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, Response{Data: map[string]string{"user_id": "u-1"}})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"data":{"user_id":"u-1"}}`, rec.Body.String())
}

// --- WriteError ---

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"app error", apperrors.InvalidInput("user id is required"), http.StatusBadRequest, "INVALID_INPUT", "user id is required"},
		{"wrapped app error", fmt.Errorf("bulk: %w", apperrors.InvalidInput("too many users")), http.StatusBadRequest, "INVALID_INPUT", "too many users"},
		{"invalid sentinel", fmt.Errorf("category: %w", apperrors.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT", "category: invalid input"},
		{"deadline", fmt.Errorf("rank users: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "TIMEOUT", "the request took too long to complete"},
		{"unknown", errors.New("pgx: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"},
		{"internal app error hides cause", apperrors.Internal(errors.New("secret")), http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/ratings/u-1", nil)

			WriteError(rec, req, tt.err, testLogger())

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMsg, resp.Error.Message)
		})
	}
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx := logger.WithCorrelationID(context.Background(), "corr-123")
	req := httptest.NewRequest(http.MethodGet, "/test", nil).WithContext(ctx)

	WriteError(rec, req, apperrors.ErrInvalidInput, testLogger())

	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "corr-123", resp.Error.RequestID)
}

func TestWriteError_NoCorrelationID_OmitsRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	WriteError(rec, req, apperrors.ErrInvalidInput, testLogger())

	assert.NotContains(t, rec.Body.String(), "request_id")
}

// --- WriteValidationError ---

func TestWriteValidationError_FieldErrors(t *testing.T) {
	type bulkRequest struct {
		UserIDs []string `json:"user_ids" validate:"required,min=1"`
	}
	err := validator.Validate(bulkRequest{UserIDs: []string{}})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	WriteValidationError(rec, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "user_ids")
}

func TestWriteValidationError_NonValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteValidationError(rec, errors.New("decode request body: unexpected EOF"))

	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "unexpected EOF")
}

// --- NewPaginatedResponse ---

func TestNewPaginatedResponse(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		page      int
		perPage   int
		wantPages int
		wantNext  bool
	}{
		{"partial last page", 45, 1, 20, 3, true},
		{"last page", 45, 3, 20, 3, false},
		{"exact division", 40, 2, 20, 2, false},
		{"empty", 0, 1, 20, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewPaginatedResponse([]int{1}, tt.total, tt.page, tt.perPage)
			assert.Equal(t, tt.wantPages, resp.TotalPages)
			assert.Equal(t, tt.wantNext, resp.HasNext)
		})
	}
}

func TestNewPaginatedResponse_NilDataBecomesEmptySlice(t *testing.T) {
	resp := NewPaginatedResponse[string](nil, 0, 1, 20)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"data":[]`)
}

// --- Parameter parsing ---

func TestParseUUID(t *testing.T) {
	rec := httptest.NewRecorder()
	id, ok := ParseUUID(rec, "550E8400-E29B-41D4-A716-446655440000")
	assert.True(t, ok)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", id.String())

	for _, bad := range []string{"", "not-a-uuid", "550e8400"} {
		rec := httptest.NewRecorder()
		_, ok := ParseUUID(rec, bad)
		assert.False(t, ok, bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_PARAMETER", decode(t, rec).Error.Code)
	}
}

func TestOptionalUUIDQuery(t *testing.T) {
	const id = "550e8400-e29b-41d4-a716-446655440000"

	rec := httptest.NewRecorder()
	got, ok := OptionalUUIDQuery(rec, httptest.NewRequest(http.MethodGet, "/?category_id="+id, nil), "category_id")
	require.True(t, ok)
	require.NotNil(t, got)
	assert.Equal(t, id, *got)

	got, ok = OptionalUUIDQuery(rec, httptest.NewRequest(http.MethodGet, "/", nil), "category_id")
	assert.True(t, ok)
	assert.Nil(t, got)

	rec = httptest.NewRecorder()
	_, ok = OptionalUUIDQuery(rec, httptest.NewRequest(http.MethodGet, "/?category_id=design", nil), "category_id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBoolQuery(t *testing.T) {
	tests := []struct {
		query  string
		want   bool
		wantOK bool
	}{
		{"", false, true},
		{"?fresh=true", true, true},
		{"?fresh=1", true, true},
		{"?fresh=false", false, true},
		{"?fresh=maybe", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			got, ok := BoolQuery(rec, httptest.NewRequest(http.MethodGet, "/"+tt.query, nil), "fresh", false)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			}
		})
	}
}
