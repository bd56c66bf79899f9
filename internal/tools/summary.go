package tools

import (
	"context"

	"stockpulse/internal/adapters/marketdata"
	"stockpulse/internal/analytics"
)

// NewGetSummaryTool produces the combined portfolio and watchlist view
// used both for ad-hoc questions and the scheduled daily update.
func NewGetSummaryTool(deps Deps) Tool {
	return New(
		Definition{
			Name:        "get_summary",
			Description: "Get a full summary: every holding with live valuation and gain/loss, portfolio totals, and the watchlist with current prices.",
			Parameters:  objectSchema(map[string]interface{}{}),
		},
		func(ctx context.Context, userID string, args map[string]interface{}) (map[string]interface{}, error) {
			holdings, err := deps.Holdings.List(ctx, userID)
			if err != nil {
				return nil, err
			}
			watch, err := deps.Watchlist.List(ctx, userID)
			if err != nil {
				return nil, err
			}
			if len(holdings) == 0 && len(watch) == 0 {
				return map[string]interface{}{
					"positions": []interface{}{},
					"watchlist": []interface{}{},
					"empty":     true,
				}, nil
			}

			seen := make(map[string]bool)
			symbols := make([]string, 0, len(holdings)+len(watch))
			for _, h := range holdings {
				if !seen[h.Symbol] {
					seen[h.Symbol] = true
					symbols = append(symbols, h.Symbol)
				}
			}
			for _, e := range watch {
				if !seen[e.Symbol] {
					seen[e.Symbol] = true
					symbols = append(symbols, e.Symbol)
				}
			}

			quotes, err := deps.Quotes.GetQuotes(ctx, symbols)
			if err != nil {
				deps.Log.Warnw("Quote gateway unavailable, degrading summary",
					"user_id", userID, "error", err)
				quotes = map[string]marketdata.Quote{}
			}

			snap := analytics.Compute(holdings, quotes, watch)
			return snapshotMap(snap, true), nil
		},
	)
}

// snapshotMap serializes a computed snapshot for the model. Positions
// without a live quote carry their cost figures only.
func snapshotMap(snap *analytics.Snapshot, includeWatch bool) map[string]interface{} {
	positions := make([]map[string]interface{}, 0, len(snap.Positions))
	for _, p := range snap.Positions {
		item := map[string]interface{}{
			"symbol":     p.Symbol,
			"quantity":   p.Quantity.InexactFloat64(),
			"cost_basis": money(p.CostBasis),
			"cost_value": money(p.CostValue),
		}
		if p.CurrentPrice != nil {
			item["price"] = money(*p.CurrentPrice)
			item["market_value"] = money(*p.MarketValue)
			item["gain_abs"] = money(*p.GainAbs)
			item["gain_pct"] = pct(*p.GainPct)
			item["day_change_pct"] = pct(*p.DayChangePct)
		} else {
			item["quote_missing"] = true
		}
		positions = append(positions, item)
	}

	out := map[string]interface{}{
		"positions":      positions,
		"total_value":    money(snap.TotalValue),
		"total_cost":     money(snap.TotalCost),
		"total_gain_abs": money(snap.TotalGainAbs),
		"total_gain_pct": pct(snap.TotalGainPct),
	}
	if snap.Degraded {
		out["degraded"] = true
	}

	if includeWatch {
		watch := make([]map[string]interface{}, 0, len(snap.Watchlist))
		for _, w := range snap.Watchlist {
			item := map[string]interface{}{"symbol": w.Symbol}
			if w.Price != nil {
				item["price"] = money(*w.Price)
				item["day_change_pct"] = pct(*w.DayChangePct)
			} else {
				item["quote_missing"] = true
			}
			watch = append(watch, item)
		}
		out["watchlist"] = watch
	}

	return out
}
