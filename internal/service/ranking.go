package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zwehtet-dev/talent2income-rating/internal/cache"
	"github.com/zwehtet-dev/talent2income-rating/internal/domain"
	"github.com/zwehtet-dev/talent2income-rating/internal/rating"
	"github.com/zwehtet-dev/talent2income-rating/internal/repository"
	apperrors "github.com/zwehtet-dev/talent2income-rating/pkg/errors"
	"github.com/zwehtet-dev/talent2income-rating/pkg/pagination"
	"github.com/zwehtet-dev/talent2income-rating/pkg/tracing"
)

// DefaultRankingTTL is how long ranking results and leaderboards are cached.
const DefaultRankingTTL = 2 * time.Minute

// StatsCalculator is the part of RatingService the rankings depend on.
type StatsCalculator interface {
	CalculateUserRatingStats(ctx context.Context, userID string, useCache bool) (*domain.RatingStats, error)
	LookupRatings(ctx context.Context, userIDs []string) (map[string]*domain.RatingStats, error)
}

// RankingService ranks qualified users by quality score.
type RankingService struct {
	rankings repository.RankingStore
	stats    StatsCalculator
	cache    cacheClient
	logger   *slog.Logger
	ttl      time.Duration
}

// NewRankingService creates a new ranking service. A non-positive ttl uses DefaultRankingTTL.
func NewRankingService(rankings repository.RankingStore, stats StatsCalculator, store cache.Store, logger *slog.Logger, ttl time.Duration) *RankingService {
	if ttl <= 0 {
		ttl = DefaultRankingTTL
	}
	return &RankingService{
		rankings: rankings,
		stats:    stats,
		cache:    cacheClient{store: store, logger: logger},
		logger:   logger,
		ttl:      ttl,
	}
}

// GetUserRanking returns the position of userID among all users with at least
// domain.MinReviewsForRanking eligible reviews, optionally restricted to a
// skill category. A user outside the qualified set gets nil position and
// percentile together with their own quality score.
func (s *RankingService) GetUserRanking(ctx context.Context, userID string, categoryID *string) (_ *domain.RankingResult, err error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	categoryID = normalizeCategory(categoryID)

	ctx, span := tracer.Start(ctx, "rating.get_user_ranking", trace.WithAttributes(
		attribute.String("rating.user_id", userID),
		attribute.String("rating.category_id", cmp.Or(deref(categoryID), "all")),
	))
	defer func() { tracing.End(span, err) }()

	key := cache.RankingKey(userID, categoryID)
	var cached domain.RankingResult
	if s.cache.get(ctx, kindRanking, key, &cached) {
		return &cached, nil
	}

	ranked, err := s.rankedUsers(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	result := &domain.RankingResult{
		UserID:     userID,
		CategoryID: categoryID,
		TotalUsers: len(ranked),
	}

	idx := slices.IndexFunc(ranked, func(u domain.RankedUser) bool { return u.UserID == userID })
	if idx >= 0 {
		position := ranked[idx].Position
		percentile := rating.Round(float64(len(ranked)-position)/float64(len(ranked))*100, 1)
		result.Position = &position
		result.Percentile = &percentile
		result.QualityScore = ranked[idx].QualityScore
	} else {
		stats, err := s.stats.CalculateUserRatingStats(ctx, userID, true)
		if err != nil {
			return nil, err
		}
		result.QualityScore = stats.QualityScore
	}

	s.cache.set(ctx, key, result, s.ttl)
	return result, nil
}

// Leaderboard returns one page of the ranking together with the number of
// ranked users.
func (s *RankingService) Leaderboard(ctx context.Context, categoryID *string, params pagination.Params) ([]domain.RankedUser, int, error) {
	ranked, err := s.rankedUsers(ctx, normalizeCategory(categoryID))
	if err != nil {
		return nil, 0, err
	}

	start, end := params.Bounds(len(ranked))
	return ranked[start:end], len(ranked), nil
}

// rankedUsers returns every qualified user ordered by quality score, highest
// first. Ties go to the user with more reviews, then to the lower user id.
func (s *RankingService) rankedUsers(ctx context.Context, categoryID *string) ([]domain.RankedUser, error) {
	key := cache.LeaderboardKey(categoryID)
	var cached []domain.RankedUser
	if s.cache.get(ctx, kindLeaderboard, key, &cached) {
		return cached, nil
	}

	start := time.Now()

	ids, err := s.rankings.ListQualifiedReviewees(ctx, categoryID, domain.MinReviewsForRanking)
	if err != nil {
		return nil, fmt.Errorf("list qualified users: %w", err)
	}

	stats, err := s.stats.LookupRatings(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load ratings of qualified users: %w", err)
	}

	ranked := make([]domain.RankedUser, 0, len(stats))
	for _, id := range ids {
		st, ok := stats[id]
		if !ok {
			continue
		}
		ranked = append(ranked, domain.RankedUser{
			UserID:       id,
			QualityScore: st.QualityScore,
			TotalReviews: st.TotalReviews,
		})
	}

	slices.SortFunc(ranked, func(a, b domain.RankedUser) int {
		if c := cmp.Compare(b.QualityScore, a.QualityScore); c != 0 {
			return c
		}
		if c := cmp.Compare(b.TotalReviews, a.TotalReviews); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	for i := range ranked {
		ranked[i].Position = i + 1
	}

	computationDuration.WithLabelValues(kindLeaderboard).Observe(time.Since(start).Seconds())
	s.cache.set(ctx, key, ranked, s.ttl)

	s.logger.DebugContext(ctx, "ranking rebuilt",
		slog.Int("ranked_users", len(ranked)),
		slog.Bool("category_scoped", categoryID != nil),
	)

	return ranked, nil
}

func normalizeCategory(categoryID *string) *string {
	if categoryID == nil || *categoryID == "" {
		return nil
	}
	return categoryID
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
