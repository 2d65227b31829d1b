package domain

// DefaultReviewerAverage is the credibility average assumed for reviewers
// who have not been rated themselves.
const DefaultReviewerAverage = 3.0

// ReviewerCredibility captures how trustworthy a reviewer's ratings are.
type ReviewerCredibility struct {
	ReviewerID     string  `json:"reviewer_id"`
	AverageRating  float64 `json:"average_rating"`
	ReviewCount    int     `json:"review_count"`
	AccountAgeDays int     `json:"account_age_days"`
}

// DefaultCredibility returns the credibility used when nothing is known about a reviewer.
func DefaultCredibility(reviewerID string) ReviewerCredibility {
	return ReviewerCredibility{
		ReviewerID:    reviewerID,
		AverageRating: DefaultReviewerAverage,
	}
}
