package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/zwehtet-dev/talent2income-rating/pkg/logger"
)

func newTestLogger(w *bytes.Buffer) *slog.Logger {
	return logger.NewWithWriter("test-svc", "info", w)
}

// logThroughRequestLogger serves req through RequestLogger and returns the
// single line the handler logged.
func logThroughRequestLogger(t *testing.T, req *http.Request) map[string]any {
	t.Helper()
	var buf bytes.Buffer

	handler := RequestLogger(newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("handler log")
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out), "log output: %s", buf.String())
	return out
}

func TestRequestLogger_CorrelationID(t *testing.T) {
	ctx := logger.WithCorrelationID(context.Background(), "corr-test-123")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ratings/x", nil).WithContext(ctx)

	out := logThroughRequestLogger(t, req)

	assert.Equal(t, "corr-test-123", out["correlation_id"])
	assert.Equal(t, "handler log", out["msg"])
}

func TestRequestLogger_UserIDHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   any
	}{
		{name: "gateway uuid", header: "3f1b7c2e-8a4d-4e0f-9b6a-2c5d7e9f1a3b", want: "3f1b7c2e-8a4d-4e0f-9b6a-2c5d7e9f1a3b"},
		{name: "uppercase uuid is normalized", header: "3F1B7C2E-8A4D-4E0F-9B6A-2C5D7E9F1A3B", want: "3f1b7c2e-8a4d-4e0f-9b6a-2c5d7e9f1a3b"},
		{name: "garbage ignored", header: "admin\nlevel=ERROR", want: nil},
		{name: "absent", header: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set(UserIDHeader, tt.header)
			}

			out := logThroughRequestLogger(t, req)

			got, ok := out["user_id"]
			if tt.want == nil {
				assert.False(t, ok, "user_id should be omitted, got %v", got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequestLogger_TraceFields(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	req := httptest.NewRequest(http.MethodGet, "/test", nil).WithContext(ctx)

	out := logThroughRequestLogger(t, req)

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", out["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", out["span_id"])
}

func TestRequestLogger_ClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	out := logThroughRequestLogger(t, req)

	assert.Equal(t, "203.0.113.7", out["client_ip"])
}
