package postgres

import (
	"context"
	"fmt"

	"github.com/zwehtet-dev/talent2income-rating/pkg/database"
)

const qualifiedRevieweesQuery = `
		SELECT r.reviewee_id
		FROM reviews r
		WHERE r.is_public = TRUE AND r.is_flagged = FALSE
		GROUP BY r.reviewee_id
		HAVING COUNT(*) >= $1
		ORDER BY r.reviewee_id`

const qualifiedRevieweesInCategoryQuery = `
		SELECT r.reviewee_id
		FROM reviews r
		WHERE r.is_public = TRUE AND r.is_flagged = FALSE
		  AND EXISTS (
			SELECT 1 FROM skills s
			WHERE s.user_id = r.reviewee_id AND s.category_id = $2
		  )
		GROUP BY r.reviewee_id
		HAVING COUNT(*) >= $1
		ORDER BY r.reviewee_id`

// RankingRepository implements ranking queries using PostgreSQL.
type RankingRepository struct {
	pool database.DBTX
}

// NewRankingRepository creates a new PostgreSQL-backed ranking repository.
func NewRankingRepository(pool database.DBTX) *RankingRepository {
	return &RankingRepository{pool: pool}
}

// ListQualifiedReviewees returns the ids of users with at least minReviews
// eligible reviews, restricted to a skill category when categoryID is set.
func (r *RankingRepository) ListQualifiedReviewees(ctx context.Context, categoryID *string, minReviews int) (ids []string, err error) {
	query := qualifiedRevieweesQuery
	args := []any{minReviews}
	if categoryID != nil && *categoryID != "" {
		query = qualifiedRevieweesInCategoryQuery
		args = append(args, *categoryID)
	}

	ctx, end := database.TraceQuery(ctx, "ListQualifiedReviewees", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list qualified reviewees: %w", err)
	}
	defer rows.Close()

	ids = []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan reviewee id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviewee rows: %w", err)
	}

	return ids, nil
}
