package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// IdempotencyStore remembers which event ids have been handled.
// Implementations must be safe for concurrent use.
type IdempotencyStore interface {
	Contains(ctx context.Context, eventID string) (bool, error)
	Add(ctx context.Context, eventID string) error
}

// MemoryIdempotencyStore keeps handled event ids in process memory until
// they expire. Replicas do not share it, so deployments use a Redis backed
// store instead.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryIdempotencyStore returns a store that forgets ids after ttl.
func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		expires: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Contains reports whether eventID was added and has not expired yet.
func (s *MemoryIdempotencyStore) Contains(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.expires[eventID]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.expires, eventID)
		return false, nil
	}
	return true, nil
}

// Add records eventID and drops every id that has expired.
func (s *MemoryIdempotencyStore) Add(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, exp := range s.expires {
		if !now.Before(exp) {
			delete(s.expires, id)
		}
	}
	s.expires[eventID] = now.Add(s.ttl)
	return nil
}

// Len returns the number of ids held, including expired ones not yet pruned.
func (s *MemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expires)
}

// IdempotentHandler skips events whose id is already in store and records the
// id once inner succeeds. A store that cannot be read never blocks handling:
// the event is processed and may be handled twice.
func IdempotentHandler(store IdempotencyStore, inner Handler, logger *slog.Logger) Handler {
	return func(ctx context.Context, event *Event) error {
		if event.EventID == "" {
			return inner(ctx, event)
		}

		seen, err := store.Contains(ctx, event.EventID)
		switch {
		case err != nil:
			logger.WarnContext(ctx, "idempotency lookup failed, handling event anyway",
				slog.String("event_id", event.EventID),
				slog.String("error", err.Error()),
			)
		case seen:
			consumerDuplicates.WithLabelValues(event.EventType, event.Source).Inc()
			logger.DebugContext(ctx, "skipping duplicate event",
				slog.String("event_id", event.EventID),
				slog.String("event_type", event.EventType),
				slog.String("aggregate_id", event.AggregateID),
			)
			return nil
		}

		if err := inner(ctx, event); err != nil {
			return err
		}

		if err := store.Add(ctx, event.EventID); err != nil {
			logger.WarnContext(ctx, "failed to record handled event",
				slog.String("event_id", event.EventID),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}
}
