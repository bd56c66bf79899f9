package holding

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stockpulse/pkg/errors"
	"stockpulse/pkg/logger"
)

// Service manages portfolio holding lifecycle operations.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService creates a new holding service
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		log:  logger.Get().With("component", "holding_service"),
	}
}

// Buy records a purchase. First purchase of a symbol creates the
// holding; subsequent purchases increase quantity and re-average the
// cost basis. Runs as one transaction to avoid lost updates.
func (s *Service) Buy(ctx context.Context, userID, symbol string, quantity, price decimal.Decimal) (*Holding, error) {
	if !quantity.IsPositive() {
		return nil, errors.NewValidationError("quantity", "must be positive", quantity.String())
	}
	if !price.IsPositive() {
		return nil, errors.NewValidationError("price", "must be positive", price.String())
	}

	var result *Holding
	err := s.repo.InTx(ctx, func(r Repository) error {
		now := time.Now().UTC()

		existing, err := r.GetBySymbol(ctx, userID, symbol)
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return err
		}

		if existing == nil {
			existing = &Holding{
				ID:         uuid.New(),
				UserID:     userID,
				Symbol:     symbol,
				Quantity:   quantity,
				CostBasis:  price,
				AcquiredAt: now,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
		} else {
			existing.ApplyBuy(quantity, price, now)
		}

		if err := r.Upsert(ctx, existing); err != nil {
			return err
		}
		result = existing
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "buy holding")
	}

	s.log.Infow("Holding updated",
		"user_id", userID, "symbol", symbol,
		"quantity", result.Quantity.String(), "cost_basis", result.CostBasis.String())
	return result, nil
}

// Sell reduces or closes a position. A nil quantity (or one covering
// the whole position) deletes the row; a partial sale decrements the
// quantity and leaves the cost basis untouched.
func (s *Service) Sell(ctx context.Context, userID, symbol string, quantity *decimal.Decimal) (*Holding, error) {
	if quantity != nil && !quantity.IsPositive() {
		return nil, errors.NewValidationError("quantity", "must be positive", quantity.String())
	}

	var remaining *Holding
	err := s.repo.InTx(ctx, func(r Repository) error {
		existing, err := r.GetBySymbol(ctx, userID, symbol)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return errors.ErrHoldingNotFound
			}
			return err
		}

		// Selling the whole position (or more) removes the row
		if quantity == nil || quantity.GreaterThanOrEqual(existing.Quantity) {
			return r.Delete(ctx, userID, symbol)
		}

		existing.Quantity = existing.Quantity.Sub(*quantity)
		existing.UpdatedAt = time.Now().UTC()
		if err := r.Upsert(ctx, existing); err != nil {
			return err
		}
		remaining = existing
		return nil
	})
	if err != nil {
		if errors.Is(err, errors.ErrHoldingNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "sell holding")
	}

	s.log.Infow("Holding reduced", "user_id", userID, "symbol", symbol)
	return remaining, nil
}

// List returns all holdings for a user
func (s *Service) List(ctx context.Context, userID string) ([]*Holding, error) {
	holdings, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list holdings")
	}
	return holdings, nil
}
