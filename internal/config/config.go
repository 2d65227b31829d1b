package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/zwehtet-dev/talent2income-rating/pkg/config"
	"github.com/zwehtet-dev/talent2income-rating/pkg/logger"
)

// Config holds all configuration for the rating service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	// Version is the build version, stamped by the binary rather than read
	// from the environment.
	Version string

	// HTTP server
	HTTPPort int `env:"RATING_HTTP_PORT" envDefault:"8010"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"rating"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"rating_secret"`
	PostgresDB   string `env:"RATING_DB_NAME" envDefault:"talent2income"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis (rating cache and event dedupe). Disabled, both live in process
	// memory, which only suits a single replica.
	RedisEnabled  bool   `env:"REDIS_ENABLED" envDefault:"true"`
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Cache circuit breaker
	CacheBreakerTimeoutSecs  int     `env:"CACHE_CB_TIMEOUT_SECONDS" envDefault:"15"`
	CacheBreakerFailureRatio float64 `env:"CACHE_CB_FAILURE_RATIO" envDefault:"0.5"`

	// Kafka
	KafkaBrokers        []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	ConsumerGroup       string   `env:"RATING_CONSUMER_GROUP" envDefault:"rating-service"`
	EventDedupeTTLHours int      `env:"RATING_EVENT_DEDUPE_TTL_HOURS" envDefault:"24"`

	// Rating engine
	StatsTTLMinutes       int `env:"RATING_STATS_TTL_MINUTES" envDefault:"60"`
	CredibilityTTLMinutes int `env:"RATING_CREDIBILITY_TTL_MINUTES" envDefault:"30"`
	RankingTTLSeconds     int `env:"RATING_RANKING_TTL_SECONDS" envDefault:"120"`
	BulkWorkers           int `env:"RATING_BULK_WORKERS" envDefault:"4"`

	// Rate limiting of the ranking endpoints (per client IP; 0 disables)
	RateLimitRPS   float64 `env:"RATING_RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATING_RATE_LIMIT_BURST" envDefault:"40"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load rating config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.RedisEnabled && c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.ConsumerGroup == "" {
		return fmt.Errorf("RATING_CONSUMER_GROUP is required")
	}
	if c.StatsTTLMinutes <= 0 {
		return fmt.Errorf("RATING_STATS_TTL_MINUTES must be > 0, got %d", c.StatsTTLMinutes)
	}
	if c.CredibilityTTLMinutes <= 0 {
		return fmt.Errorf("RATING_CREDIBILITY_TTL_MINUTES must be > 0, got %d", c.CredibilityTTLMinutes)
	}
	if c.RankingTTLSeconds <= 0 {
		return fmt.Errorf("RATING_RANKING_TTL_SECONDS must be > 0, got %d", c.RankingTTLSeconds)
	}
	if c.BulkWorkers < 1 {
		return fmt.Errorf("RATING_BULK_WORKERS must be >= 1, got %d", c.BulkWorkers)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATING_RATE_LIMIT_RPS must be >= 0, got %f", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATING_RATE_LIMIT_BURST must be >= 1 when rate limiting is enabled, got %d", c.RateLimitBurst)
	}
	if c.CacheBreakerFailureRatio <= 0 || c.CacheBreakerFailureRatio > 1.0 {
		return fmt.Errorf("CACHE_CB_FAILURE_RATIO must be in (0.0, 1.0], got %f", c.CacheBreakerFailureRatio)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if c.LogFormat != logger.FormatJSON && c.LogFormat != logger.FormatText {
		return fmt.Errorf("LOG_FORMAT must be %q or %q, got %q", logger.FormatJSON, logger.FormatText, c.LogFormat)
	}
	return nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

// StatsTTL is how long computed rating statistics stay cached.
func (c *Config) StatsTTL() time.Duration {
	return time.Duration(c.StatsTTLMinutes) * time.Minute
}

// CredibilityTTL is how long reviewer credibility stays cached.
func (c *Config) CredibilityTTL() time.Duration {
	return time.Duration(c.CredibilityTTLMinutes) * time.Minute
}

// RankingTTL is how long ranking results and leaderboards stay cached.
func (c *Config) RankingTTL() time.Duration {
	return time.Duration(c.RankingTTLSeconds) * time.Second
}

// EventDedupeTTL is how long processed event ids are remembered.
func (c *Config) EventDedupeTTL() time.Duration {
	return time.Duration(c.EventDedupeTTLHours) * time.Hour
}
