package rating

import (
	"time"

	"github.com/zwehtet-dev/talent2income-rating/internal/domain"
)

// Input is everything needed to compute one user's statistics.
type Input struct {
	UserID  string
	Reviews []domain.Review
	// Credibility holds the credibility of each reviewer in Reviews. Missing
	// reviewers fall back to domain.DefaultCredibility.
	Credibility  map[string]domain.ReviewerCredibility
	LastActivity *time.Time
	Now          time.Time
}

// Compute runs the full pipeline: eligibility filter, aggregation, quality
// scoring and inactivity decay. Averages are rounded to two decimals and
// percentages to one; intermediate values keep full precision.
func Compute(in Input) domain.RatingStats {
	reviews := NewestFirst(Eligible(in.Reviews))
	if len(reviews) == 0 {
		return domain.EmptyRatingStats(in.UserID, in.Now)
	}

	credibilityOf := func(reviewerID string) domain.ReviewerCredibility {
		if c, ok := in.Credibility[reviewerID]; ok {
			return c
		}
		return domain.DefaultCredibility(reviewerID)
	}

	weighted := WeightedAverage(reviews, func(r domain.Review) float64 {
		return CompositeWeight(r, credibilityOf(r.ReviewerID), in.Now)
	})

	quality := QualityScore(QualityInput{
		WeightedAverage:     weighted,
		ReviewCount:         len(reviews),
		StdDev:              StdDev(reviews),
		DaysSinceLastReview: DaysSince(reviews[0].CreatedAt, in.Now),
	})

	trend := AnalyzeTrend(reviews)

	return domain.RatingStats{
		UserID:              in.UserID,
		TotalReviews:        len(reviews),
		SimpleAverage:       Round(SimpleAverage(reviews), 2),
		WeightedAverage:     Round(weighted, 2),
		TimeWeightedAverage: Round(TimeWeightedAverage(reviews, in.Now), 2),
		DecayedRating:       Round(Decay(weighted, in.LastActivity, in.Now), 2),
		QualityScore:        Round(quality, 2),
		RatingDistribution:  BuildDistribution(reviews),
		Trend: domain.Trend{
			Direction:       trend.Direction,
			Slope:           Round(trend.Slope, 2),
			RecentAverage:   Round(trend.RecentAverage, 2),
			PreviousAverage: Round(trend.PreviousAverage, 2),
		},
		LastCalculated: in.Now,
	}
}
