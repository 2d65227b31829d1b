package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig holds configuration for the cache circuit breaker.
type BreakerConfig struct {
	// Name identifies this breaker (used in metrics and logs).
	Name string

	// MaxRequests is the maximum number of requests allowed in the half-open state.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state for clearing internal counts.
	Interval time.Duration

	// Timeout is how long the breaker stays open before moving to half-open.
	Timeout time.Duration

	// FailureRatio is the ratio of failures to total requests that trips the breaker.
	FailureRatio float64

	// MinRequests is the minimum number of requests needed before the failure ratio is evaluated.
	MinRequests uint32
}

// DefaultBreakerConfig returns sensible defaults for a cache circuit breaker.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      15 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

var (
	breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rating_cache_breaker_state",
			Help: "Current state of the cache circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	breakerShortCircuits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_cache_breaker_short_circuits_total",
			Help: "Total number of cache operations skipped because the breaker was open",
		},
		[]string{"name", "operation"},
	)
)

func init() {
	prometheus.MustRegister(breakerState)
	prometheus.MustRegister(breakerShortCircuits)
}

// stateToFloat maps gobreaker states to prometheus gauge values.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// BreakerStore wraps a Store with a circuit breaker. While the breaker is
// open, reads behave as misses and writes are dropped, so an unreachable
// cache backend degrades to direct computation instead of failing callers.
// Deletes are the exception: a skipped delete leaves a stale entry behind,
// so it is reported to the caller as an error wrapping the breaker state.
type BreakerStore struct {
	next    Store
	breaker *gobreaker.CircuitBreaker[bool]
	logger  *slog.Logger
	name    string
}

// NewBreakerStore wraps next with a circuit breaker.
func NewBreakerStore(next Store, cfg BreakerConfig, logger *slog.Logger) *BreakerStore {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("cache circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}

	breakerState.WithLabelValues(cfg.Name).Set(0)

	return &BreakerStore{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[bool](settings),
		logger:  logger,
		name:    cfg.Name,
	}
}

// Get reads through the breaker. An open breaker reports a miss.
func (s *BreakerStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	found, err := s.breaker.Execute(func() (bool, error) {
		return s.next.Get(ctx, key, dst)
	})
	if s.shortCircuited(ctx, "get", err) {
		return false, nil
	}
	return found, err
}

// Set writes through the breaker. An open breaker drops the write.
func (s *BreakerStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	_, err := s.breaker.Execute(func() (bool, error) {
		return true, s.next.Set(ctx, key, value, ttl)
	})
	if s.shortCircuited(ctx, "set", err) {
		return nil
	}
	return err
}

// Delete removes keys through the breaker. An open breaker fails the delete
// with an error matching gobreaker.ErrOpenState or ErrTooManyRequests.
func (s *BreakerStore) Delete(ctx context.Context, keys ...string) error {
	_, err := s.breaker.Execute(func() (bool, error) {
		return true, s.next.Delete(ctx, keys...)
	})
	if s.shortCircuited(ctx, "delete", err) {
		return fmt.Errorf("delete skipped for %d cache keys: %w", len(keys), err)
	}
	return err
}

// State returns the current state of the circuit breaker.
func (s *BreakerStore) State() gobreaker.State {
	return s.breaker.State()
}

func (s *BreakerStore) shortCircuited(ctx context.Context, op string, err error) bool {
	if !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	breakerShortCircuits.WithLabelValues(s.name, op).Inc()
	s.logger.DebugContext(ctx, "cache circuit breaker open, skipping operation",
		slog.String("breaker", s.name),
		slog.String("operation", op),
	)
	return true
}
