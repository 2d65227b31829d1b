package app

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/zwehtet-dev/talent2income-rating/internal/config"
	"github.com/zwehtet-dev/talent2income-rating/internal/event"
	handler "github.com/zwehtet-dev/talent2income-rating/internal/handler/http"
	"github.com/zwehtet-dev/talent2income-rating/internal/repository/postgres"
	"github.com/zwehtet-dev/talent2income-rating/internal/service"
	"github.com/zwehtet-dev/talent2income-rating/migrations"
	"github.com/zwehtet-dev/talent2income-rating/pkg/database"
	"github.com/zwehtet-dev/talent2income-rating/pkg/health"
	pkgkafka "github.com/zwehtet-dev/talent2income-rating/pkg/kafka"
	"github.com/zwehtet-dev/talent2income-rating/pkg/tracing"
)

const serviceName = "rating"

// App wires together all dependencies and runs the rating service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	dlq            *pkgkafka.DLQProducer
	reviewConsumer *pkgkafka.Consumer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: cmp.Or(cfg.Version, "dev"),
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, serviceName)

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	cacheLayer := newCacheLayer(ctx, cfg, logger)

	// Initialize Kafka producer with connection validation and retry.
	// Stats events are best-effort, so writes do not block the request.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	kafkaCfg.Async = true
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	if err := pingWithRetry(ctx, "kafka producer", producer, logger); err != nil {
		logger.Warn("kafka producer ping failed after retries, continuing in degraded mode",
			slog.String("error", err.Error()),
		)
	} else {
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}
	dlq := pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)

	// Build the dependency graph.
	reviews := postgres.NewReviewRepository(pool)
	users := postgres.NewUserRepository(pool)
	rankings := postgres.NewRankingRepository(pool)
	eventProducer := event.NewProducer(producer, logger)

	ratingService := service.NewRatingService(reviews, users, cacheLayer.store, eventProducer, logger, service.Options{
		StatsTTL:       cfg.StatsTTL(),
		CredibilityTTL: cfg.CredibilityTTL(),
		BulkWorkers:    cfg.BulkWorkers,
	})
	rankingService := service.NewRankingService(rankings, ratingService, cacheLayer.store, logger, cfg.RankingTTL())

	// Review lifecycle events invalidate cached ratings. Redeliveries are
	// skipped through the processed event ids kept by the cache layer.
	eventConsumer := event.NewConsumer(ratingService, logger)
	reviewConsumer := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers:    cfg.KafkaBrokers,
		GroupID:    cfg.ConsumerGroup,
		Topic:      event.TopicReviewChanged,
		MinBytes:   1,
		MaxBytes:   10e6,
		DeadLetter: dlq,
	}, pkgkafka.IdempotentHandler(cacheLayer.dedupe, eventConsumer.Handle, logger), logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if cacheLayer.redis != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return cacheLayer.redis.Ping(ctx).Err()
		})
	}
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(ratingService, rankingService, healthHandler, logger, handler.RouterConfig{
		PprofCIDRs:        cfg.PprofAllowedCIDRs,
		RateLimitRPS:      cfg.RateLimitRPS,
		RateLimitBurst:    cfg.RateLimitBurst,
		LeaderboardMaxAge: cfg.RankingTTL(),
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          cacheLayer.redis,
		producer:       producer,
		dlq:            dlq,
		reviewConsumer: reviewConsumer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and the review event consumer, then blocks until
// the context is canceled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	// Start HTTP server.
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Start Kafka consumer.
	go func() {
		if err := a.reviewConsumer.Start(ctx); err != nil {
			errCh <- fmt.Errorf("review event consumer: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.logger.Error("component failed, shutting down", slog.String("error", err.Error()))
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka consumer
// 4. Kafka producers (events, then dead letters)
// 5. Redis client
// 6. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error
	record := func(component string, err error) {
		if err != nil {
			a.logger.Error(component+" shutdown error", slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", component, err))
		}
	}

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	record("http server", a.httpServer.Shutdown(httpCtx))

	// 2. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		record("tracer", a.tracerShutdown(tracerCtx))
	}

	// 3. Stop consuming before the producers go away, so no message is
	// dead-lettered into a closed writer.
	record("review event consumer", a.reviewConsumer.Close())

	// 4. Flush buffered async events, then the dead letter writer.
	record("kafka producer", a.producer.Close())
	record("dlq producer", a.dlq.Close())

	// 5. Close Redis.
	if a.redis != nil {
		record("redis", a.redis.Close())
	}

	// 6. Close PostgreSQL pool.
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// pinger is anything that can verify connectivity to a broker.
type pinger interface {
	Ping(ctx context.Context) error
}

const pingAttempts = 3

// pingBaseWait is the first retry delay; it doubles on every attempt.
var pingBaseWait = time.Second

// pingWithRetry pings p with exponential backoff (3 attempts, 1s/2s with
// ±25% jitter between them).
func pingWithRetry(ctx context.Context, name string, p pinger, logger *slog.Logger) error {
	var lastErr error
	for attempt := 0; attempt < pingAttempts; attempt++ {
		if lastErr = p.Ping(ctx); lastErr == nil {
			return nil
		}
		if attempt == pingAttempts-1 {
			break
		}

		base := pingBaseWait << attempt
		jitter := time.Duration(float64(base) * 0.25 * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter for retry backoff
		wait := base + jitter
		logger.Warn(name+" ping failed, retrying",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", pingAttempts),
			slog.Duration("backoff", wait),
			slog.String("error", lastErr.Error()),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s ping: context canceled during retry: %w", name, ctx.Err())
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("%s ping failed after %d attempts: %w", name, pingAttempts, lastErr)
}
