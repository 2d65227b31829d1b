package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewWithWriter_TagsServiceAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("rating", "warn", &buf)

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	out := decodeLine(t, &buf)
	assert.Equal(t, "rating", out["service"])
	assert.Equal(t, "kept", out["msg"])
	assert.NotContains(t, out, "source")
}

func TestNewWithFormat_Text(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithFormat("rating", "info", FormatText, &buf)

	l.Info("stats computed", slog.Int("total_reviews", 3))

	assert.Contains(t, buf.String(), "service=rating")
	assert.Contains(t, buf.String(), "total_reviews=3")
}

func TestNewWithWriter_DebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("rating", "debug", &buf).Debug("trace me")

	assert.Contains(t, decodeLine(t, &buf), "source")
}

func TestWithContext_AllFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("rating", "info", &buf)

	ctx := spanContext(t)
	ctx = WithCorrelationID(ctx, "corr-1")
	ctx = WithUserID(ctx, "user-7")
	WithContext(ctx, l).Info("hello")

	out := decodeLine(t, &buf)
	assert.Equal(t, "corr-1", out["correlation_id"])
	assert.Equal(t, "user-7", out["user_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", out["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", out["span_id"])
}

func TestWithContext_EmptyContextReturnsSameLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("rating", "info", &buf)

	assert.Same(t, l, WithContext(context.Background(), l))

	WithContext(context.Background(), l).Info("plain")
	out := decodeLine(t, &buf)
	for _, k := range []string{"correlation_id", "user_id", "trace_id", "span_id"} {
		assert.NotContains(t, out, k)
	}
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, CorrelationIDFromContext(ctx))
	assert.Empty(t, UserIDFromContext(ctx))

	ctx = WithUserID(WithCorrelationID(ctx, "c"), "u")
	assert.Equal(t, "c", CorrelationIDFromContext(ctx))
	assert.Equal(t, "u", UserIDFromContext(ctx))
}

func TestFromContext(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	l := NewWithWriter("rating", "info", &bytes.Buffer{})
	assert.Same(t, l, FromContext(NewContext(context.Background(), l)))
}
