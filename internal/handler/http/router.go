package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zwehtet-dev/talent2income-rating/pkg/health"
	"github.com/zwehtet-dev/talent2income-rating/pkg/middleware"
)

const serviceName = "rating"

// RouterConfig holds the transport-level settings of the router.
type RouterConfig struct {
	PprofCIDRs     []string
	RateLimitRPS   float64
	RateLimitBurst int
	// LeaderboardMaxAge is advertised in Cache-Control on the public
	// leaderboard. Zero sends no-store.
	LeaderboardMaxAge time.Duration
}

// NewRouter creates a chi router with all rating service routes registered.
func NewRouter(
	ratingService RatingService,
	rankingService RankingService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger, "/health/live", "/health/ready", "/metrics"))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	ratingHandler := NewRatingHandler(ratingService, logger)
	rankingHandler := NewRankingHandler(rankingService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(requireJSON).Post("/ratings/bulk", ratingHandler.BulkCalculate)
		r.Get("/ratings/{userId}", ratingHandler.GetRatingStats)
		r.Delete("/ratings/{userId}/cache", ratingHandler.InvalidateCache)
		r.Get("/reviewers/{userId}/credibility", ratingHandler.GetCredibility)

		// Rankings fan out over every qualified user on a miss.
		r.Group(func(r chi.Router) {
			if cfg.RateLimitRPS > 0 {
				r.Use(middleware.RateLimit(serviceName, cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
			}
			r.Get("/ratings/{userId}/ranking", rankingHandler.GetUserRanking)
			r.With(middleware.CacheControl(cfg.LeaderboardMaxAge)).Get("/rankings", rankingHandler.ListRankings)
		})
	})

	return r
}
