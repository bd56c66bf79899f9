package holding

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Holding represents a user's position in a stock: total quantity held
// and the weighted-average cost per share. At most one row exists per
// (user, symbol); repeated buys fold into the average.
type Holding struct {
	ID     uuid.UUID `db:"id"`
	UserID string    `db:"user_id"`
	Symbol string    `db:"symbol"`

	Quantity  decimal.Decimal `db:"quantity"`
	CostBasis decimal.Decimal `db:"cost_basis"` // average cost per share

	AcquiredAt time.Time `db:"acquired_at"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// CostValue returns quantity * average cost
func (h *Holding) CostValue() decimal.Decimal {
	return h.Quantity.Mul(h.CostBasis)
}

// ApplyBuy folds an additional lot into the position, re-averaging the
// cost basis: new_cost = (old_qty*old_cost + qty*price) / (old_qty+qty)
func (h *Holding) ApplyBuy(quantity, price decimal.Decimal, at time.Time) {
	total := h.Quantity.Add(quantity)
	if total.IsZero() {
		return
	}
	h.CostBasis = h.Quantity.Mul(h.CostBasis).Add(quantity.Mul(price)).Div(total)
	h.Quantity = total
	h.UpdatedAt = at
}
