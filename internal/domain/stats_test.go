package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReview_Eligible(t *testing.T) {
	assert.True(t, Review{IsPublic: true}.Eligible())
	assert.False(t, Review{IsPublic: false}.Eligible())
	assert.False(t, Review{IsPublic: true, IsFlagged: true}.Eligible())
}

func TestReview_JobCompleted(t *testing.T) {
	assert.True(t, Review{Job: &Job{Status: JobStatusCompleted}}.JobCompleted())
	assert.False(t, Review{Job: &Job{Status: "cancelled"}}.JobCompleted())
	assert.False(t, Review{}.JobCompleted())
}

func TestEmptyRatingStats(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	stats := EmptyRatingStats("user-1", at)

	assert.Equal(t, "user-1", stats.UserID)
	assert.Equal(t, 0, stats.TotalReviews)
	assert.Equal(t, 0.0, stats.SimpleAverage)
	assert.Equal(t, 0.0, stats.QualityScore)
	assert.Equal(t, TrendStable, stats.Trend.Direction)
	assert.Len(t, stats.RatingDistribution, 5)
	assert.Equal(t, 0, stats.RatingDistribution.TotalCount())
	assert.Equal(t, at, stats.LastCalculated)
}

func TestRatingStats_JSONShape(t *testing.T) {
	stats := EmptyRatingStats("user-1", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))

	data, err := json.Marshal(stats)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{
		"user_id", "total_reviews", "simple_average", "weighted_average",
		"time_weighted_average", "decayed_rating", "quality_score",
		"rating_distribution", "trend", "last_calculated",
	} {
		assert.Contains(t, raw, key)
	}

	dist, ok := raw["rating_distribution"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, dist, "1")
	assert.Contains(t, dist, "5")
}
