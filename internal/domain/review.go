package domain

import (
	"time"
)

// JobStatusCompleted is the job status that marks delivered and accepted work.
const JobStatusCompleted = "completed"

// Rating bounds enforced upstream when a review is submitted.
const (
	MinRating = 1
	MaxRating = 5
)

// Job is the marketplace job a review was left for.
type Job struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Review is a rating one user left for another. Reviews are owned by the
// marketplace and are read-only to the rating engine.
type Review struct {
	ID         string    `json:"id"`
	RevieweeID string    `json:"reviewee_id"`
	ReviewerID string    `json:"reviewer_id"`
	Rating     int       `json:"rating"`
	IsPublic   bool      `json:"is_public"`
	IsFlagged  bool      `json:"is_flagged"`
	CreatedAt  time.Time `json:"created_at"`
	Job        *Job      `json:"job,omitempty"`
}

// Eligible reports whether the review counts towards ratings: it must be
// public and not flagged by moderation.
func (r Review) Eligible() bool {
	return r.IsPublic && !r.IsFlagged
}

// JobCompleted reports whether the review is tied to a completed job.
func (r Review) JobCompleted() bool {
	return r.Job != nil && r.Job.Status == JobStatusCompleted
}
