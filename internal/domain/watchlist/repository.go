package watchlist

import "context"

// Repository defines the interface for watchlist data access
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	GetBySymbol(ctx context.Context, userID, symbol string) (*Entry, error)
	ListByUser(ctx context.Context, userID string) ([]*Entry, error)
	Delete(ctx context.Context, userID, symbol string) error
}
