package tools

import (
	"context"

	"stockpulse/internal/adapters/marketdata"
	"stockpulse/internal/analytics"
	"stockpulse/internal/domain/holding"
)

// NewAddHoldingTool records a stock purchase. Repeated purchases of the
// same symbol merge into one position with a weighted-average cost.
func NewAddHoldingTool(deps Deps) Tool {
	return New(
		Definition{
			Name:        "add_holding",
			Description: "Record a stock purchase: symbol, number of shares and price paid per share. Buying a symbol the user already owns merges into the existing position.",
			Parameters: objectSchema(map[string]interface{}{
				"symbol":   stringProp("Ticker symbol, e.g. \"AAPL\""),
				"quantity": numberProp("Number of shares purchased, must be positive"),
				"price":    numberProp("Price paid per share, must be positive"),
			}, "symbol", "quantity", "price"),
		},
		func(ctx context.Context, userID string, args map[string]interface{}) (map[string]interface{}, error) {
			symbol, err := symbolArg(args)
			if err != nil {
				return nil, err
			}
			quantity, err := decimalArg(args, "quantity")
			if err != nil {
				return nil, err
			}
			price, err := decimalArg(args, "price")
			if err != nil {
				return nil, err
			}

			if err := deps.Users.EnsureExists(ctx, userID); err != nil {
				return nil, err
			}

			h, err := deps.Holdings.Buy(ctx, userID, symbol, quantity, price)
			if err != nil {
				return nil, err
			}
			return holdingMap(h), nil
		},
	)
}

// NewRemoveHoldingTool records a sale. Without a quantity, or with a
// quantity covering the whole position, the holding is removed.
func NewRemoveHoldingTool(deps Deps) Tool {
	return New(
		Definition{
			Name:        "remove_holding",
			Description: "Record a stock sale. Omit quantity to sell the entire position; a partial quantity reduces it. Cost basis per share does not change on a sale.",
			Parameters: objectSchema(map[string]interface{}{
				"symbol":   stringProp("Ticker symbol, e.g. \"AAPL\""),
				"quantity": numberProp("Number of shares sold. Omit to sell everything"),
			}, "symbol"),
		},
		func(ctx context.Context, userID string, args map[string]interface{}) (map[string]interface{}, error) {
			symbol, err := symbolArg(args)
			if err != nil {
				return nil, err
			}
			quantity, err := optionalDecimalArg(args, "quantity")
			if err != nil {
				return nil, err
			}

			remaining, err := deps.Holdings.Sell(ctx, userID, symbol, quantity)
			if err != nil {
				return nil, err
			}
			if remaining == nil {
				return map[string]interface{}{
					"symbol":  symbol,
					"removed": true,
				}, nil
			}
			return holdingMap(remaining), nil
		},
	)
}

// NewGetPortfolioTool lists holdings with live valuations. When the
// quote gateway is down the portfolio is still returned at cost basis,
// flagged as degraded.
func NewGetPortfolioTool(deps Deps) Tool {
	return New(
		Definition{
			Name:        "get_portfolio",
			Description: "Get the user's current holdings with live prices, market value and gain/loss per position plus portfolio totals.",
			Parameters:  objectSchema(map[string]interface{}{}),
		},
		func(ctx context.Context, userID string, args map[string]interface{}) (map[string]interface{}, error) {
			holdings, err := deps.Holdings.List(ctx, userID)
			if err != nil {
				return nil, err
			}
			if len(holdings) == 0 {
				return map[string]interface{}{
					"positions": []interface{}{},
					"empty":     true,
				}, nil
			}

			symbols := make([]string, 0, len(holdings))
			for _, h := range holdings {
				symbols = append(symbols, h.Symbol)
			}

			quotes, err := deps.Quotes.GetQuotes(ctx, symbols)
			if err != nil {
				// Cost-basis view is better than no answer
				deps.Log.Warnw("Quote gateway unavailable, degrading portfolio view",
					"user_id", userID, "error", err)
				quotes = map[string]marketdata.Quote{}
			}

			snap := analytics.Compute(holdings, quotes, nil)
			return snapshotMap(snap, false), nil
		},
	)
}

func holdingMap(h *holding.Holding) map[string]interface{} {
	return map[string]interface{}{
		"symbol":     h.Symbol,
		"quantity":   h.Quantity.InexactFloat64(),
		"cost_basis": money(h.CostBasis),
		"cost_value": money(h.CostValue()),
	}
}
