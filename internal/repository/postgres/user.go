package postgres

import (
	"context"
	"time"

	"stockpulse/internal/domain/user"
)

// Compile-time check
var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository using sqlx
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// EnsureExists registers a user on first contact; no-op for known users
func (r *UserRepository) EnsureExists(ctx context.Context, userID string) error {
	query := `
		INSERT INTO users (id, daily_updates_enabled, created_at)
		VALUES ($1, true, $2)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, userID, time.Now().UTC())
	return err
}

// ListForDailyUpdates returns ids of users with daily updates enabled
func (r *UserRepository) ListForDailyUpdates(ctx context.Context) ([]string, error) {
	var ids []string

	query := `SELECT id FROM users WHERE daily_updates_enabled = true ORDER BY id ASC`

	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, err
	}
	return ids, nil
}
