package holding

import "context"

// Repository defines the interface for holding data access.
// Mutations that read current state first must run inside InTx so the
// read-modify-write cycle commits as one atomic unit.
type Repository interface {
	// InTx runs fn against a transaction-bound copy of the repository
	InTx(ctx context.Context, fn func(Repository) error) error

	GetBySymbol(ctx context.Context, userID, symbol string) (*Holding, error)
	ListByUser(ctx context.Context, userID string) ([]*Holding, error)
	Upsert(ctx context.Context, h *Holding) error
	Delete(ctx context.Context, userID, symbol string) error
}
