package domain

import (
	"time"
)

// TrendDirection describes how a user's recent ratings compare to older ones.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// Trend compares the newer half of a user's reviews against the older half.
type Trend struct {
	Direction       TrendDirection `json:"direction"`
	Slope           float64        `json:"slope"`
	RecentAverage   float64        `json:"recent_average"`
	PreviousAverage float64        `json:"previous_average"`
}

// DistributionBucket holds the count and share of one star value.
type DistributionBucket struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Distribution maps each star value (1..5) to its bucket.
type Distribution map[int]DistributionBucket

// NewDistribution returns a distribution with every star value present and zeroed.
func NewDistribution() Distribution {
	d := make(Distribution, MaxRating-MinRating+1)
	for r := MinRating; r <= MaxRating; r++ {
		d[r] = DistributionBucket{}
	}
	return d
}

// TotalCount returns the sum of all bucket counts.
func (d Distribution) TotalCount() int {
	total := 0
	for _, b := range d {
		total += b.Count
	}
	return total
}

// RatingStats is the computed reputation summary of a single user.
type RatingStats struct {
	UserID              string       `json:"user_id"`
	TotalReviews        int          `json:"total_reviews"`
	SimpleAverage       float64      `json:"simple_average"`
	WeightedAverage     float64      `json:"weighted_average"`
	TimeWeightedAverage float64      `json:"time_weighted_average"`
	DecayedRating       float64      `json:"decayed_rating"`
	QualityScore        float64      `json:"quality_score"`
	RatingDistribution  Distribution `json:"rating_distribution"`
	Trend               Trend        `json:"trend"`
	LastCalculated      time.Time    `json:"last_calculated"`
}

// EmptyRatingStats is the result for a user without eligible reviews. Callers
// receive this shape instead of nil so they never branch on absence.
func EmptyRatingStats(userID string, at time.Time) RatingStats {
	return RatingStats{
		UserID:             userID,
		RatingDistribution: NewDistribution(),
		Trend:              Trend{Direction: TrendStable},
		LastCalculated:     at,
	}
}
