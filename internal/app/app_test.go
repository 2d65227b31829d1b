package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	failures int
	calls    int
}

func (f *fakePinger) Ping(context.Context) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("dial tcp: connection refused")
	}
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastPings(t *testing.T) {
	t.Helper()
	prev := pingBaseWait
	pingBaseWait = time.Millisecond
	t.Cleanup(func() { pingBaseWait = prev })
}

func TestPingWithRetry_SucceedsAfterFailures(t *testing.T) {
	fastPings(t)
	p := &fakePinger{failures: 2}

	err := pingWithRetry(context.Background(), "kafka producer", p, quietLogger())

	require.NoError(t, err)
	assert.Equal(t, 3, p.calls)
}

func TestPingWithRetry_GivesUp(t *testing.T) {
	fastPings(t)
	p := &fakePinger{failures: 10}

	err := pingWithRetry(context.Background(), "kafka producer", p, quietLogger())

	require.Error(t, err)
	assert.Equal(t, pingAttempts, p.calls)
	assert.Contains(t, err.Error(), "kafka producer ping failed after 3 attempts")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPingWithRetry_StopsOnCancel(t *testing.T) {
	prev := pingBaseWait
	pingBaseWait = time.Hour
	t.Cleanup(func() { pingBaseWait = prev })

	ctx, cancel := context.WithCancel(context.Background())
	p := &fakePinger{failures: 10}
	done := make(chan error, 1)
	go func() { done <- pingWithRetry(ctx, "kafka producer", p, quietLogger()) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("pingWithRetry did not return after cancel")
	}
}
