package rating

import (
	"time"

	"github.com/zwehtet-dev/talent2income-rating/internal/domain"
)

// Credibility derives a reviewer's trustworthiness from the reviews they
// received and the reviews they wrote. Ineligible reviews are ignored. A
// reviewer nobody has rated gets domain.DefaultReviewerAverage.
func Credibility(reviewerID string, received, given []domain.Review, accountCreatedAt *time.Time, now time.Time) domain.ReviewerCredibility {
	cred := domain.DefaultCredibility(reviewerID)

	eligibleReceived := Eligible(received)
	if len(eligibleReceived) > 0 {
		cred.AverageRating = SimpleAverage(eligibleReceived)
	}
	cred.ReviewCount = len(Eligible(given))

	if accountCreatedAt != nil {
		cred.AccountAgeDays = DaysSince(*accountCreatedAt, now)
	}

	return cred
}
