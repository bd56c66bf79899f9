package watchlist

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stockpulse/pkg/errors"
	"stockpulse/pkg/logger"
)

// Service manages watchlist operations.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService creates a new watchlist service
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		log:  logger.Get().With("component", "watchlist_service"),
	}
}

// Add puts a symbol on the user's watchlist. Adding a symbol that is
// already watched is not an error; the existing entry is returned.
func (s *Service) Add(ctx context.Context, userID, symbol string) (*Entry, error) {
	entry := &Entry{
		ID:      uuid.New(),
		UserID:  userID,
		Symbol:  symbol,
		AddedAt: time.Now().UTC(),
	}

	err := s.repo.Create(ctx, entry)
	if err != nil {
		if errors.Is(err, errors.ErrAlreadyExists) {
			existing, getErr := s.repo.GetBySymbol(ctx, userID, symbol)
			if getErr != nil {
				return nil, errors.Wrap(getErr, "load existing watchlist entry")
			}
			return existing, nil
		}
		return nil, errors.Wrap(err, "add watchlist entry")
	}

	s.log.Infow("Watchlist entry added", "user_id", userID, "symbol", symbol)
	return entry, nil
}

// Remove deletes a symbol from the watchlist
func (s *Service) Remove(ctx context.Context, userID, symbol string) error {
	err := s.repo.Delete(ctx, userID, symbol)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return errors.ErrNotWatched
		}
		return errors.Wrap(err, "remove watchlist entry")
	}

	s.log.Infow("Watchlist entry removed", "user_id", userID, "symbol", symbol)
	return nil
}

// List returns all watchlist entries for a user
func (s *Service) List(ctx context.Context, userID string) ([]*Entry, error) {
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list watchlist")
	}
	return entries, nil
}
