package conversation

import (
	"context"
	"time"

	"stockpulse/pkg/errors"
	"stockpulse/pkg/logger"
)

// Service manages the load-mutate-persist lifecycle of conversation state.
type Service struct {
	repo   Repository
	window int
	log    *logger.Logger
}

// NewService creates a conversation service with the given retention window
func NewService(repo Repository, window int) *Service {
	return &Service{
		repo:   repo,
		window: window,
		log:    logger.Get().With("component", "conversation_service"),
	}
}

// Window returns the configured history retention window
func (s *Service) Window() int {
	return s.window
}

// Load fetches the state for a user, creating an empty one on first contact
func (s *Service) Load(ctx context.Context, userID string) (*State, error) {
	state, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			now := time.Now().UTC()
			return &State{
				UserID:        userID,
				History:       History{},
				WorkingMemory: Memory{},
				CreatedAt:     now,
				UpdatedAt:     now,
			}, nil
		}
		return nil, errors.Wrap(err, "load conversation state")
	}
	return state, nil
}

// Save truncates history to the retention window and persists the state
func (s *Service) Save(ctx context.Context, state *State) error {
	state.Truncate(s.window)
	state.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, state); err != nil {
		return errors.Wrap(err, "save conversation state")
	}
	return nil
}
