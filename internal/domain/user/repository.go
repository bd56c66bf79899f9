package user

import "context"

// Repository defines the interface for user registry access
type Repository interface {
	// EnsureExists registers the user if unknown; no-op otherwise
	EnsureExists(ctx context.Context, userID string) error

	// ListForDailyUpdates returns ids of users with daily updates enabled
	ListForDailyUpdates(ctx context.Context) ([]string, error)
}
