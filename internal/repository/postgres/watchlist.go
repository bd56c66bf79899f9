package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"stockpulse/internal/domain/watchlist"
	"stockpulse/pkg/errors"
)

// uniqueViolation is the Postgres error code for unique constraint breaches
const uniqueViolation = "23505"

// Compile-time check
var _ watchlist.Repository = (*WatchlistRepository)(nil)

// WatchlistRepository implements watchlist.Repository using sqlx
type WatchlistRepository struct {
	db DBTX
}

// NewWatchlistRepository creates a new watchlist repository
func NewWatchlistRepository(db DBTX) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Create inserts a new watchlist entry
func (r *WatchlistRepository) Create(ctx context.Context, entry *watchlist.Entry) error {
	query := `
		INSERT INTO watchlist_entries (id, user_id, symbol, added_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Symbol, entry.AddedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetBySymbol retrieves a watchlist entry by symbol
func (r *WatchlistRepository) GetBySymbol(ctx context.Context, userID, symbol string) (*watchlist.Entry, error) {
	var entry watchlist.Entry

	query := `SELECT * FROM watchlist_entries WHERE user_id = $1 AND symbol = $2`

	err := r.db.GetContext(ctx, &entry, query, userID, symbol)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByUser retrieves all watchlist entries for a user
func (r *WatchlistRepository) ListByUser(ctx context.Context, userID string) ([]*watchlist.Entry, error) {
	var entries []*watchlist.Entry

	query := `SELECT * FROM watchlist_entries WHERE user_id = $1 ORDER BY added_at ASC`

	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete removes a watchlist entry
func (r *WatchlistRepository) Delete(ctx context.Context, userID, symbol string) error {
	query := `DELETE FROM watchlist_entries WHERE user_id = $1 AND symbol = $2`

	res, err := r.db.ExecContext(ctx, query, userID, symbol)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.ErrNotFound
	}
	return nil
}
