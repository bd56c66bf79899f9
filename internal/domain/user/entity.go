package user

import "time"

// User is a known contact, keyed by their external identifier (the
// WhatsApp phone number or chat id). Registered implicitly on first
// portfolio or watchlist mutation so the daily summary sweep can find
// them.
type User struct {
	ID                  string    `db:"id"`
	DailyUpdatesEnabled bool      `db:"daily_updates_enabled"`
	CreatedAt           time.Time `db:"created_at"`
}
