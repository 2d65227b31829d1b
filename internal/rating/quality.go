package rating

import (
	"math"

	"github.com/zwehtet-dev/talent2income-rating/internal/domain"
)

// Quality score tuning.
const (
	QualityVolumeDivisor = 50.0
	QualityVolumeCap     = 1.5
	ConsistencySpread    = 2.0
	ConsistencyBase      = 0.8
	ConsistencyRange     = 0.4
	RecencyWindowDays    = 365.0
	RecencyBase          = 0.9
	RecencyRange         = 0.2
)

// QualityInput carries the signals combined into a quality score.
type QualityInput struct {
	WeightedAverage     float64
	ReviewCount         int
	StdDev              float64
	DaysSinceLastReview int
}

// StdDev returns the population standard deviation of the ratings.
func StdDev(reviews []domain.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	mean := SimpleAverage(reviews)
	var sq float64
	for _, r := range reviews {
		d := float64(r.Rating) - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(reviews)))
}

// Consistency maps rating dispersion to [0, 1]; 1 means every rating is identical.
func Consistency(stddev float64) float64 {
	return math.Max(0, 1.0-stddev/ConsistencySpread)
}

// QualityScore combines rating level, volume, consistency and recency. The
// result is not capped: prolific, consistent, recent users can exceed 100.
func QualityScore(in QualityInput) float64 {
	if in.ReviewCount == 0 {
		return 0
	}

	base := (in.WeightedAverage / float64(domain.MaxRating)) * 100
	volume := math.Min(1.0+float64(in.ReviewCount)/QualityVolumeDivisor, QualityVolumeCap)
	consistency := ConsistencyBase + Consistency(in.StdDev)*ConsistencyRange
	recencyScore := math.Max(0, 1.0-float64(in.DaysSinceLastReview)/RecencyWindowDays)
	recency := RecencyBase + recencyScore*RecencyRange

	return base * volume * consistency * recency
}
