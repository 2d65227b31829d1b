package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/zwehtet-dev/talent2income-rating/pkg/database"
)

// lastActivityQuery takes the latest of the profile update, any job the user
// touched as client or freelancer, any of their skills, and any message they
// sent. GREATEST ignores NULLs, so the result is NULL only when every signal is.
const lastActivityQuery = `
		SELECT GREATEST(
			(SELECT updated_at FROM users WHERE id = $1),
			(SELECT MAX(updated_at) FROM jobs WHERE client_id = $1 OR freelancer_id = $1),
			(SELECT MAX(updated_at) FROM skills WHERE user_id = $1),
			(SELECT MAX(created_at) FROM messages WHERE sender_id = $1)
		)`

const accountCreatedAtQuery = `SELECT created_at FROM users WHERE id = $1`

// UserRepository implements user activity reads using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetLastActivityTimestamp returns the user's most recent activity, or nil.
func (r *UserRepository) GetLastActivityTimestamp(ctx context.Context, userID string) (last *time.Time, err error) {
	ctx, end := database.TraceQuery(ctx, "GetLastActivityTimestamp", lastActivityQuery)
	defer func() { end(err) }()

	if err := r.pool.QueryRow(ctx, lastActivityQuery, userID).Scan(&last); err != nil {
		return nil, fmt.Errorf("get last activity: %w", err)
	}

	if last != nil {
		utc := last.UTC()
		last = &utc
	}
	return last, nil
}

// GetAccountCreatedAt returns the user's account creation time, or nil when
// the user does not exist.
func (r *UserRepository) GetAccountCreatedAt(ctx context.Context, userID string) (created *time.Time, err error) {
	ctx, end := database.TraceQuery(ctx, "GetAccountCreatedAt", accountCreatedAtQuery)
	defer func() { end(err) }()

	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, accountCreatedAtQuery, userID).Scan(&createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account created at: %w", err)
	}

	createdAt = createdAt.UTC()
	return &createdAt, nil
}
