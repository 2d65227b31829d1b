package domain

// MinReviewsForRanking is the number of eligible reviews a user needs to be ranked.
const MinReviewsForRanking = 3

// RankingResult is a user's position among all ranked peers. Position and
// Percentile are nil when the user does not qualify for ranking.
type RankingResult struct {
	UserID       string   `json:"user_id"`
	CategoryID   *string  `json:"category_id,omitempty"`
	Position     *int     `json:"position"`
	TotalUsers   int      `json:"total_users"`
	Percentile   *float64 `json:"percentile"`
	QualityScore float64  `json:"quality_score"`
}

// RankedUser is one row of a leaderboard.
type RankedUser struct {
	Position     int     `json:"position"`
	UserID       string  `json:"user_id"`
	QualityScore float64 `json:"quality_score"`
	TotalReviews int     `json:"total_reviews"`
}
