package watchlist

import (
	"time"

	"github.com/google/uuid"
)

// Entry represents a stock on a user's watchlist.
// Unique per (user, symbol).
type Entry struct {
	ID      uuid.UUID `db:"id"`
	UserID  string    `db:"user_id"`
	Symbol  string    `db:"symbol"`
	AddedAt time.Time `db:"added_at"`
}
