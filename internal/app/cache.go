package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zwehtet-dev/talent2income-rating/internal/cache"
	"github.com/zwehtet-dev/talent2income-rating/internal/config"
	"github.com/zwehtet-dev/talent2income-rating/pkg/database"
	pkgkafka "github.com/zwehtet-dev/talent2income-rating/pkg/kafka"
)

// cacheLayer is the rating cache and the processed-event store. redis is nil
// when the service runs without Redis.
type cacheLayer struct {
	store  cache.Store
	dedupe pkgkafka.IdempotencyStore
	redis  *redis.Client
}

func newCacheLayer(ctx context.Context, cfg *config.Config, logger *slog.Logger) cacheLayer {
	if !cfg.RedisEnabled {
		logger.Warn("redis disabled, rating cache and event dedupe are kept in process memory")
		return cacheLayer{
			store:  cache.NewMemoryStore(),
			dedupe: pkgkafka.NewMemoryIdempotencyStore(cfg.EventDedupeTTL()),
		}
	}

	redisCfg := database.DefaultRedisConfig()
	redisCfg.Host = cfg.RedisHost
	redisCfg.Port = cfg.RedisPort
	redisCfg.Password = cfg.RedisPassword
	redisCfg.DB = cfg.RedisDB

	// An unreachable Redis is not fatal: the breaker keeps it out of the
	// request path until it answers again.
	client, err := database.NewRedisClient(ctx, redisCfg, logger)
	if err != nil {
		logger.Warn("redis unavailable, continuing with cache disabled until it recovers",
			slog.String("addr", redisCfg.Addr()),
			slog.String("error", err.Error()),
		)
		client = redis.NewClient(&redis.Options{
			Addr:         redisCfg.Addr(),
			Password:     redisCfg.Password,
			DB:           redisCfg.DB,
			PoolSize:     redisCfg.PoolSize,
			DialTimeout:  redisCfg.DialTimeout,
			ReadTimeout:  redisCfg.ReadTimeout,
			WriteTimeout: redisCfg.WriteTimeout,
		})
	} else {
		logger.Info("connected to Redis", slog.String("addr", redisCfg.Addr()))
	}

	breakerCfg := cache.DefaultBreakerConfig("rating-cache")
	breakerCfg.Timeout = time.Duration(cfg.CacheBreakerTimeoutSecs) * time.Second
	breakerCfg.FailureRatio = cfg.CacheBreakerFailureRatio

	return cacheLayer{
		store:  cache.NewBreakerStore(cache.NewRedisStore(client), breakerCfg, logger),
		dedupe: cache.NewRedisIdempotencyStore(client, cfg.EventDedupeTTL()),
		redis:  client,
	}
}
