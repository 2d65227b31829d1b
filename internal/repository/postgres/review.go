package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/zwehtet-dev/talent2income-rating/internal/domain"
	"github.com/zwehtet-dev/talent2income-rating/pkg/database"
)

const reviewColumns = `r.id, r.reviewee_id, r.reviewer_id, r.rating, r.is_public, r.is_flagged, r.created_at,
		       j.id, j.status`

const eligibleReviewsForRevieweeQuery = `
		SELECT ` + reviewColumns + `
		FROM reviews r
		LEFT JOIN jobs j ON j.id = r.job_id
		WHERE r.reviewee_id = $1 AND r.is_public = TRUE AND r.is_flagged = FALSE
		ORDER BY r.created_at DESC, r.id ASC`

const eligibleReviewsByReviewerQuery = `
		SELECT ` + reviewColumns + `
		FROM reviews r
		LEFT JOIN jobs j ON j.id = r.job_id
		WHERE r.reviewer_id = $1 AND r.is_public = TRUE AND r.is_flagged = FALSE
		ORDER BY r.created_at DESC, r.id ASC`

// ReviewRepository implements review reads using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// FindEligibleReviewsForReviewee returns the eligible reviews received by userID.
func (r *ReviewRepository) FindEligibleReviewsForReviewee(ctx context.Context, userID string) (reviews []domain.Review, err error) {
	ctx, end := database.TraceQuery(ctx, "FindEligibleReviewsForReviewee", eligibleReviewsForRevieweeQuery)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, eligibleReviewsForRevieweeQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews for reviewee: %w", err)
	}
	return scanReviews(rows)
}

// FindEligibleReviewsByReviewer returns the eligible reviews written by userID.
func (r *ReviewRepository) FindEligibleReviewsByReviewer(ctx context.Context, userID string) (reviews []domain.Review, err error) {
	ctx, end := database.TraceQuery(ctx, "FindEligibleReviewsByReviewer", eligibleReviewsByReviewerQuery)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, eligibleReviewsByReviewerQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by reviewer: %w", err)
	}
	return scanReviews(rows)
}

func scanReviews(rows pgx.Rows) ([]domain.Review, error) {
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var (
			rv        domain.Review
			jobID     *string
			jobStatus *string
		)

		if err := rows.Scan(
			&rv.ID,
			&rv.RevieweeID,
			&rv.ReviewerID,
			&rv.Rating,
			&rv.IsPublic,
			&rv.IsFlagged,
			&rv.CreatedAt,
			&jobID,
			&jobStatus,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}

		if jobID != nil {
			rv.Job = &domain.Job{ID: *jobID}
			if jobStatus != nil {
				rv.Job.Status = *jobStatus
			}
		}

		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}
