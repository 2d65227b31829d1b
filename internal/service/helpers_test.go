package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/zwehtet-dev/talent2income-rating/internal/cache"
	"github.com/zwehtet-dev/talent2income-rating/internal/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testOptions() Options {
	return Options{
		StatsTTL:       time.Hour,
		CredibilityTTL: 30 * time.Minute,
		BulkWorkers:    3,
		Now:            func() time.Time { return testNow },
	}
}

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

// --- Fake marketplace stores ---

// fakeMarketplace is an in-memory ReviewStore and UserStore.
type fakeMarketplace struct {
	mu            sync.Mutex
	reviews       []domain.Review
	lastActivity  map[string]time.Time
	createdAt     map[string]time.Time
	revieweeCalls map[string]int
}

func newFakeMarketplace() *fakeMarketplace {
	return &fakeMarketplace{
		lastActivity:  make(map[string]time.Time),
		createdAt:     make(map[string]time.Time),
		revieweeCalls: make(map[string]int),
	}
}

func (f *fakeMarketplace) addReview(id, reviewee, reviewer string, rating int, createdAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews = append(f.reviews, domain.Review{
		ID:         id,
		RevieweeID: reviewee,
		ReviewerID: reviewer,
		Rating:     rating,
		IsPublic:   true,
		CreatedAt:  createdAt,
		Job:        &domain.Job{ID: "job-" + id, Status: domain.JobStatusCompleted},
	})
}

func (f *fakeMarketplace) calls(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revieweeCalls[userID]
}

func (f *fakeMarketplace) FindEligibleReviewsForReviewee(_ context.Context, userID string) ([]domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revieweeCalls[userID]++
	out := []domain.Review{}
	for _, r := range f.reviews {
		if r.RevieweeID == userID && r.Eligible() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeMarketplace) FindEligibleReviewsByReviewer(_ context.Context, userID string) ([]domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Review{}
	for _, r := range f.reviews {
		if r.ReviewerID == userID && r.Eligible() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeMarketplace) GetLastActivityTimestamp(_ context.Context, userID string) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.lastActivity[userID]; ok {
		return &t, nil
	}
	return nil, nil
}

func (f *fakeMarketplace) GetAccountCreatedAt(_ context.Context, userID string) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.createdAt[userID]; ok {
		return &t, nil
	}
	return nil, nil
}

// --- Mocks ---

type mockReviewStore struct {
	mock.Mock
}

func (m *mockReviewStore) FindEligibleReviewsForReviewee(ctx context.Context, userID string) ([]domain.Review, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewStore) FindEligibleReviewsByReviewer(ctx context.Context, userID string) ([]domain.Review, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishStatsUpdated(ctx context.Context, stats *domain.RatingStats) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}

type mockRankingStore struct {
	mock.Mock
}

func (m *mockRankingStore) ListQualifiedReviewees(ctx context.Context, categoryID *string, minReviews int) ([]string, error) {
	args := m.Called(ctx, categoryID, minReviews)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockStatsCalculator struct {
	mock.Mock
}

func (m *mockStatsCalculator) CalculateUserRatingStats(ctx context.Context, userID string, useCache bool) (*domain.RatingStats, error) {
	args := m.Called(ctx, userID, useCache)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatingStats), args.Error(1)
}

func (m *mockStatsCalculator) LookupRatings(ctx context.Context, userIDs []string) (map[string]*domain.RatingStats, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.RatingStats), args.Error(1)
}

// brokenCache fails every operation.
type brokenCache struct{}

var errCacheDown = errors.New("cache down")

func (brokenCache) Get(context.Context, string, any) (bool, error) { return false, errCacheDown }

func (brokenCache) Set(context.Context, string, any, time.Duration) error { return errCacheDown }

func (brokenCache) Delete(context.Context, ...string) error { return errCacheDown }

var _ cache.Store = brokenCache{}

// flakyCache is a MemoryStore whose operations fail while down is set.
type flakyCache struct {
	*cache.MemoryStore
	down atomic.Bool
}

func (f *flakyCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if f.down.Load() {
		return false, errCacheDown
	}
	return f.MemoryStore.Get(ctx, key, dst)
}

func (f *flakyCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if f.down.Load() {
		return errCacheDown
	}
	return f.MemoryStore.Set(ctx, key, value, ttl)
}

func (f *flakyCache) Delete(ctx context.Context, keys ...string) error {
	if f.down.Load() {
		return errCacheDown
	}
	return f.MemoryStore.Delete(ctx, keys...)
}
