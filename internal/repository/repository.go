package repository

import (
	"context"
	"time"

	"github.com/zwehtet-dev/talent2income-rating/internal/domain"
)

// ReviewStore defines read access to marketplace reviews.
type ReviewStore interface {
	// FindEligibleReviewsForReviewee returns the public, unflagged reviews the
	// user received, newest first, each with its job attached when present.
	FindEligibleReviewsForReviewee(ctx context.Context, userID string) ([]domain.Review, error)

	// FindEligibleReviewsByReviewer returns the public, unflagged reviews the
	// user wrote, newest first.
	FindEligibleReviewsByReviewer(ctx context.Context, userID string) ([]domain.Review, error)
}

// UserStore defines read access to user activity data.
type UserStore interface {
	// GetLastActivityTimestamp returns the latest activity signal of the user,
	// or nil when none is recorded.
	GetLastActivityTimestamp(ctx context.Context, userID string) (*time.Time, error)

	// GetAccountCreatedAt returns when the user's account was created, or nil
	// when the user is unknown.
	GetAccountCreatedAt(ctx context.Context, userID string) (*time.Time, error)
}

// RankingStore defines the queries backing cross-user rankings.
type RankingStore interface {
	// ListQualifiedReviewees returns the ids of users with at least minReviews
	// eligible reviews, optionally restricted to users holding a skill in the
	// given category. Ids are returned in ascending order.
	ListQualifiedReviewees(ctx context.Context, categoryID *string, minReviews int) ([]string, error)
}
