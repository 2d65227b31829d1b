package rating

import (
	"math"
	"time"

	"github.com/zwehtet-dev/talent2income-rating/internal/domain"
)

// Composite weight tuning. Changing any of these changes every published score.
const (
	// CredibilityRatingFactor scales how far a reviewer's own average sits from neutral.
	CredibilityRatingFactor = 0.2
	// CredibilityVolumeDivisor converts given-review count into a bonus.
	CredibilityVolumeDivisor = 10.0
	// CredibilityVolumeCap bounds the bonus for prolific reviewers.
	CredibilityVolumeCap = 0.5
	// RecencyDecayRate is the per-day decay of the recency bonus.
	RecencyDecayRate = 0.01
	// RecencyBonus is the largest extra weight a brand-new review receives.
	RecencyBonus = 0.3
	// CompletedJobWeight applies to reviews tied to completed jobs.
	CompletedJobWeight = 1.1
	// TimeDecayRate is the per-day decay used by the time-weighted average.
	TimeDecayRate = 0.02
)

// CredibilityWeight rewards reviewers who are well rated and who review often.
func CredibilityWeight(c domain.ReviewerCredibility) float64 {
	volume := math.Min(float64(c.ReviewCount)/CredibilityVolumeDivisor, CredibilityVolumeCap)
	return 1.0 + (c.AverageRating-domain.DefaultReviewerAverage)*CredibilityRatingFactor + volume
}

// RecencyWeight favours recent reviews. It approaches 1.0 as a review ages
// and never drops below it.
func RecencyWeight(daysSinceReview int) float64 {
	return 1.0 + (1.0/(1.0+float64(daysSinceReview)*RecencyDecayRate))*RecencyBonus
}

// CompletionWeight favours reviews backed by completed work.
func CompletionWeight(r domain.Review) float64 {
	if r.JobCompleted() {
		return CompletedJobWeight
	}
	return 1.0
}

// CompositeWeight is the weight of a single review in the weighted average.
func CompositeWeight(r domain.Review, c domain.ReviewerCredibility, now time.Time) float64 {
	return CredibilityWeight(c) * RecencyWeight(DaysSince(r.CreatedAt, now)) * CompletionWeight(r)
}

// TimeWeight is the recency-only weight used by the time-weighted average.
// It decays faster than RecencyWeight and ignores the reviewer entirely.
func TimeWeight(daysSinceReview int) float64 {
	return 1.0 / (1.0 + float64(daysSinceReview)*TimeDecayRate)
}
