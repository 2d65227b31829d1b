package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/zwehtet-dev/talent2income-rating/internal/cache"
)

// cacheClient applies the degrade policy shared by the services: a failing
// cache is logged and treated as empty, never surfaced to the caller.
type cacheClient struct {
	store  cache.Store
	logger *slog.Logger
}

// get reads key into dst and reports whether it was a hit.
func (c cacheClient) get(ctx context.Context, kind, key string, dst any) bool {
	found, err := c.store.Get(ctx, key, dst)
	if err != nil {
		cacheLookupsTotal.WithLabelValues(kind, cacheError).Inc()
		c.logger.WarnContext(ctx, "rating cache read failed, computing directly",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}
	if !found {
		cacheLookupsTotal.WithLabelValues(kind, cacheMiss).Inc()
		return false
	}
	cacheLookupsTotal.WithLabelValues(kind, cacheHit).Inc()
	return true
}

func (c cacheClient) set(ctx context.Context, key string, value any, ttl time.Duration) {
	if err := c.store.Set(ctx, key, value, ttl); err != nil {
		c.logger.WarnContext(ctx, "rating cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
