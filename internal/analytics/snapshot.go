package analytics

import (
	"github.com/shopspring/decimal"

	"stockpulse/internal/adapters/marketdata"
	"stockpulse/internal/domain/holding"
	"stockpulse/internal/domain/watchlist"
)

// PositionView is the computed performance of one holding. CurrentPrice
// is nil when the gateway had no quote for the symbol; such positions
// are listed but excluded from aggregate totals.
type PositionView struct {
	Symbol       string
	Quantity     decimal.Decimal
	CostBasis    decimal.Decimal
	CostValue    decimal.Decimal
	CurrentPrice *decimal.Decimal
	MarketValue  *decimal.Decimal
	GainAbs      *decimal.Decimal
	GainPct      *decimal.Decimal
	DayChangePct *decimal.Decimal
}

// WatchView pairs a watched symbol with its current quote, if any
type WatchView struct {
	Symbol       string
	Price        *decimal.Decimal
	DayChangePct *decimal.Decimal
}

// Snapshot is an ephemeral view of portfolio value and performance.
// Degraded is set when any input symbol lacked a quote, so callers can
// say so instead of presenting incomplete totals as complete.
type Snapshot struct {
	Positions    []PositionView
	Watchlist    []WatchView
	TotalValue   decimal.Decimal
	TotalCost    decimal.Decimal
	TotalGainAbs decimal.Decimal
	TotalGainPct decimal.Decimal
	Degraded     bool
}

var hundred = decimal.NewFromInt(100)

// Compute derives per-position and aggregate performance from holdings
// and live quotes. Pure function of its inputs: it never touches
// storage or the network.
func Compute(holdings []*holding.Holding, quotes map[string]marketdata.Quote, watch []*watchlist.Entry) *Snapshot {
	snap := &Snapshot{
		Positions: make([]PositionView, 0, len(holdings)),
		Watchlist: make([]WatchView, 0, len(watch)),
	}

	for _, h := range holdings {
		view := PositionView{
			Symbol:    h.Symbol,
			Quantity:  h.Quantity,
			CostBasis: h.CostBasis,
			CostValue: h.CostValue(),
		}

		q, ok := quotes[h.Symbol]
		if !ok {
			snap.Degraded = true
			snap.Positions = append(snap.Positions, view)
			continue
		}

		price := q.Price
		marketValue := h.Quantity.Mul(price)
		gainAbs := price.Sub(h.CostBasis).Mul(h.Quantity)
		// Cost basis is positive by invariant, so the division is safe
		gainPct := price.Sub(h.CostBasis).Div(h.CostBasis).Mul(hundred)
		dayChange := q.ChangePct

		view.CurrentPrice = &price
		view.MarketValue = &marketValue
		view.GainAbs = &gainAbs
		view.GainPct = &gainPct
		view.DayChangePct = &dayChange

		snap.TotalValue = snap.TotalValue.Add(marketValue)
		snap.TotalCost = snap.TotalCost.Add(view.CostValue)
		snap.Positions = append(snap.Positions, view)
	}

	snap.TotalGainAbs = snap.TotalValue.Sub(snap.TotalCost)
	if snap.TotalCost.IsPositive() {
		snap.TotalGainPct = snap.TotalGainAbs.Div(snap.TotalCost).Mul(hundred)
	}

	for _, e := range watch {
		view := WatchView{Symbol: e.Symbol}
		if q, ok := quotes[e.Symbol]; ok {
			price := q.Price
			dayChange := q.ChangePct
			view.Price = &price
			view.DayChangePct = &dayChange
		} else {
			snap.Degraded = true
		}
		snap.Watchlist = append(snap.Watchlist, view)
	}

	return snap
}
