package conversation

import "context"

// Repository defines the interface for conversation state persistence
type Repository interface {
	Get(ctx context.Context, userID string) (*State, error)
	Save(ctx context.Context, state *State) error
}
