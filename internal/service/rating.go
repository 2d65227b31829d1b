package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/zwehtet-dev/talent2income-rating/internal/cache"
	"github.com/zwehtet-dev/talent2income-rating/internal/domain"
	"github.com/zwehtet-dev/talent2income-rating/internal/rating"
	"github.com/zwehtet-dev/talent2income-rating/internal/repository"
	apperrors "github.com/zwehtet-dev/talent2income-rating/pkg/errors"
	"github.com/zwehtet-dev/talent2income-rating/pkg/tracing"
)

var tracer = tracing.Tracer("github.com/zwehtet-dev/talent2income-rating/internal/service")

// Cache entry kinds, used as metric labels.
const (
	kindStats       = "stats"
	kindCredibility = "credibility"
	kindRanking     = "ranking"
	kindLeaderboard = "leaderboard"
)

// StatsPublisher announces freshly computed statistics.
type StatsPublisher interface {
	PublishStatsUpdated(ctx context.Context, stats *domain.RatingStats) error
}

// Options tunes the rating service.
type Options struct {
	StatsTTL       time.Duration
	CredibilityTTL time.Duration
	// BulkWorkers bounds the number of users computed concurrently by
	// BulkCalculateRatings.
	BulkWorkers int
	// Now is the clock used for all day counts. Defaults to time.Now in UTC.
	Now func() time.Time
}

// DefaultOptions returns the standard TTLs and worker count.
func DefaultOptions() Options {
	return Options{
		StatsTTL:       60 * time.Minute,
		CredibilityTTL: 30 * time.Minute,
		BulkWorkers:    4,
		Now:            func() time.Time { return time.Now().UTC() },
	}
}

// RatingService computes and caches per-user rating statistics.
type RatingService struct {
	reviews   repository.ReviewStore
	users     repository.UserStore
	cache     cacheClient
	publisher StatsPublisher
	logger    *slog.Logger
	opts      Options
}

// NewRatingService creates a new rating service. publisher may be nil.
func NewRatingService(
	reviews repository.ReviewStore,
	users repository.UserStore,
	store cache.Store,
	publisher StatsPublisher,
	logger *slog.Logger,
	opts Options,
) *RatingService {
	defaults := DefaultOptions()
	if opts.StatsTTL <= 0 {
		opts.StatsTTL = defaults.StatsTTL
	}
	if opts.CredibilityTTL <= 0 {
		opts.CredibilityTTL = defaults.CredibilityTTL
	}
	if opts.BulkWorkers <= 0 {
		opts.BulkWorkers = defaults.BulkWorkers
	}
	if opts.Now == nil {
		opts.Now = defaults.Now
	}

	return &RatingService{
		reviews:   reviews,
		users:     users,
		cache:     cacheClient{store: store, logger: logger},
		publisher: publisher,
		logger:    logger,
		opts:      opts,
	}
}

// CalculateUserRatingStats returns the rating statistics of a user. With
// useCache the cached entry is returned when present; otherwise the stats are
// recomputed from the stores and written back to the cache. A user without
// eligible reviews gets the empty statistics, not an error.
func (s *RatingService) CalculateUserRatingStats(ctx context.Context, userID string, useCache bool) (_ *domain.RatingStats, err error) {
	ctx, span := tracer.Start(ctx, "rating.calculate_user_stats", trace.WithAttributes(
		attribute.String("rating.user_id", userID),
		attribute.Bool("rating.use_cache", useCache),
	))
	defer func() { tracing.End(span, err) }()

	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	key := cache.StatsKey(userID)
	if useCache {
		var cached domain.RatingStats
		if s.cache.get(ctx, kindStats, key, &cached) {
			span.SetAttributes(attribute.Bool("rating.cache_hit", true))
			return &cached, nil
		}
	}

	start := time.Now()
	stats, err := s.computeStats(ctx, userID, useCache)
	if err != nil {
		return nil, err
	}
	computationDuration.WithLabelValues(kindStats).Observe(time.Since(start).Seconds())

	s.cache.set(ctx, key, stats, s.opts.StatsTTL)

	if s.publisher != nil {
		if err := s.publisher.PublishStatsUpdated(ctx, stats); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish rating.stats_updated event",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.DebugContext(ctx, "rating stats computed",
		slog.String("user_id", userID),
		slog.Int("total_reviews", stats.TotalReviews),
		slog.Float64("quality_score", stats.QualityScore),
	)

	return stats, nil
}

func (s *RatingService) computeStats(ctx context.Context, userID string, useCache bool) (*domain.RatingStats, error) {
	reviews, err := s.reviews.FindEligibleReviewsForReviewee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find reviews for %s: %w", userID, err)
	}

	credibility := make(map[string]domain.ReviewerCredibility)
	for _, rv := range reviews {
		if _, ok := credibility[rv.ReviewerID]; ok {
			continue
		}
		cred, err := s.reviewerCredibility(ctx, rv.ReviewerID, useCache)
		if err != nil {
			return nil, err
		}
		credibility[rv.ReviewerID] = *cred
	}

	lastActivity, err := s.users.GetLastActivityTimestamp(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get last activity of %s: %w", userID, err)
	}

	stats := rating.Compute(rating.Input{
		UserID:       userID,
		Reviews:      reviews,
		Credibility:  credibility,
		LastActivity: lastActivity,
		Now:          s.opts.Now(),
	})
	return &stats, nil
}

// ReviewerCredibility returns the cached credibility of a reviewer, computing
// it on a miss.
func (s *RatingService) ReviewerCredibility(ctx context.Context, reviewerID string) (*domain.ReviewerCredibility, error) {
	if reviewerID == "" {
		return nil, apperrors.InvalidInput("reviewer id is required")
	}
	return s.reviewerCredibility(ctx, reviewerID, true)
}

func (s *RatingService) reviewerCredibility(ctx context.Context, reviewerID string, useCache bool) (*domain.ReviewerCredibility, error) {
	key := cache.CredibilityKey(reviewerID)
	if useCache {
		var cached domain.ReviewerCredibility
		if s.cache.get(ctx, kindCredibility, key, &cached) {
			return &cached, nil
		}
	}

	start := time.Now()

	received, err := s.reviews.FindEligibleReviewsForReviewee(ctx, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("find reviews received by %s: %w", reviewerID, err)
	}

	given, err := s.reviews.FindEligibleReviewsByReviewer(ctx, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("find reviews given by %s: %w", reviewerID, err)
	}

	createdAt, err := s.users.GetAccountCreatedAt(ctx, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("get account age of %s: %w", reviewerID, err)
	}

	cred := rating.Credibility(reviewerID, received, given, createdAt, s.opts.Now())
	computationDuration.WithLabelValues(kindCredibility).Observe(time.Since(start).Seconds())

	s.cache.set(ctx, key, cred, s.opts.CredibilityTTL)
	return &cred, nil
}

// InvalidateUserCache evicts the user's cached statistics and their cached
// credibility as a reviewer. The next read recomputes from the stores.
func (s *RatingService) InvalidateUserCache(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	if err := s.cache.store.Delete(ctx, cache.StatsKey(userID), cache.CredibilityKey(userID)); err != nil {
		return fmt.Errorf("invalidate rating cache for %s: %w", userID, err)
	}

	s.logger.InfoContext(ctx, "rating cache invalidated", slog.String("user_id", userID))
	return nil
}

// BulkCalculateRatings recomputes the statistics of every given user,
// bypassing cache reads but writing each result through. Duplicate ids are
// computed once. The first failure cancels the remaining work.
func (s *RatingService) BulkCalculateRatings(ctx context.Context, userIDs []string) (_ map[string]*domain.RatingStats, err error) {
	ctx, span := tracer.Start(ctx, "rating.bulk_calculate", trace.WithAttributes(
		attribute.Int("rating.user_count", len(userIDs)),
	))
	defer func() { tracing.End(span, err) }()

	return s.calculateMany(ctx, userIDs, false)
}

// LookupRatings is BulkCalculateRatings with cache reads enabled.
func (s *RatingService) LookupRatings(ctx context.Context, userIDs []string) (map[string]*domain.RatingStats, error) {
	return s.calculateMany(ctx, userIDs, true)
}

func (s *RatingService) calculateMany(ctx context.Context, userIDs []string, useCache bool) (map[string]*domain.RatingStats, error) {
	ids := uniqueIDs(userIDs)
	bulkBatchSize.Observe(float64(len(ids)))

	results := make([]*domain.RatingStats, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.BulkWorkers)

	for i, id := range ids {
		g.Go(func() error {
			stats, err := s.CalculateUserRatingStats(gctx, id, useCache)
			if err != nil {
				return err
			}
			results[i] = stats
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*domain.RatingStats, len(ids))
	for i, id := range ids {
		out[id] = results[i]
	}
	return out, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
