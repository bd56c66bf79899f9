package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"stockpulse/internal/domain/holding"
	"stockpulse/pkg/errors"
)

// Compile-time check
var _ holding.Repository = (*HoldingRepository)(nil)

// HoldingRepository implements holding.Repository using sqlx
type HoldingRepository struct {
	db   DBTX
	root *sqlx.DB // nil when bound to a transaction
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *sqlx.DB) *HoldingRepository {
	return &HoldingRepository{db: db, root: db}
}

// InTx runs fn against a transaction-bound copy of the repository.
// Nested calls reuse the surrounding transaction.
func (r *HoldingRepository) InTx(ctx context.Context, fn func(holding.Repository) error) error {
	if r.root == nil {
		return fn(r)
	}

	tx, err := r.root.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin holding tx")
	}

	txRepo := &HoldingRepository{db: tx}
	if err := fn(txRepo); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// GetBySymbol retrieves one holding. Inside a transaction the row is
// locked so concurrent buys/sells of the same position serialize.
func (r *HoldingRepository) GetBySymbol(ctx context.Context, userID, symbol string) (*holding.Holding, error) {
	query := `SELECT * FROM holdings WHERE user_id = $1 AND symbol = $2`
	if r.root == nil {
		query += ` FOR UPDATE`
	}

	var h holding.Holding
	err := r.db.GetContext(ctx, &h, query, userID, symbol)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// ListByUser retrieves all holdings for a user
func (r *HoldingRepository) ListByUser(ctx context.Context, userID string) ([]*holding.Holding, error) {
	var holdings []*holding.Holding

	query := `SELECT * FROM holdings WHERE user_id = $1 ORDER BY symbol ASC`

	if err := r.db.SelectContext(ctx, &holdings, query, userID); err != nil {
		return nil, err
	}
	return holdings, nil
}

// Upsert inserts or updates a holding row
func (r *HoldingRepository) Upsert(ctx context.Context, h *holding.Holding) error {
	query := `
		INSERT INTO holdings (
			id, user_id, symbol, quantity, cost_basis,
			acquired_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (user_id, symbol) DO UPDATE SET
			quantity   = EXCLUDED.quantity,
			cost_basis = EXCLUDED.cost_basis,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		h.ID, h.UserID, h.Symbol, h.Quantity, h.CostBasis,
		h.AcquiredAt, h.CreatedAt, h.UpdatedAt,
	)
	return err
}

// Delete removes a holding row
func (r *HoldingRepository) Delete(ctx context.Context, userID, symbol string) error {
	query := `DELETE FROM holdings WHERE user_id = $1 AND symbol = $2`

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
