// Package cache provides the key/value stores used to memoize rating
// computations. Values are JSON encoded; every entry carries its own TTL.
package cache

import (
	"context"
	"time"
)

const keyPrefix = "rating:"

// allCategories is the key segment used when a ranking is not scoped to a category.
const allCategories = "all"

// Store is a TTL key/value cache. Get reports whether the key was found and
// decodes the value into dst when it was.
type Store interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// StatsKey is the cache key of a user's rating statistics.
func StatsKey(userID string) string {
	return keyPrefix + "stats:" + userID
}

// CredibilityKey is the cache key of a reviewer's credibility.
func CredibilityKey(reviewerID string) string {
	return keyPrefix + "credibility:" + reviewerID
}

// RankingKey is the cache key of a user's ranking within a category (or overall when nil).
func RankingKey(userID string, categoryID *string) string {
	return keyPrefix + "ranking:" + userID + ":" + categorySegment(categoryID)
}

// LeaderboardKey is the cache key of the ordered list of ranked users.
func LeaderboardKey(categoryID *string) string {
	return keyPrefix + "leaderboard:" + categorySegment(categoryID)
}

func categorySegment(categoryID *string) string {
	if categoryID == nil || *categoryID == "" {
		return allCategories
	}
	return *categoryID
}
