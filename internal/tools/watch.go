package tools

import (
	"context"

	"stockpulse/internal/adapters/marketdata"
)

// NewAddWatchTool puts a symbol on the user's watchlist. Re-adding a
// watched symbol succeeds quietly.
func NewAddWatchTool(deps Deps) Tool {
	return New(
		Definition{
			Name:        "add_watch",
			Description: "Add a ticker symbol to the user's watchlist. Adding a symbol that is already watched is fine and changes nothing.",
			Parameters: objectSchema(map[string]interface{}{
				"symbol": stringProp("Ticker symbol, e.g. \"TSLA\""),
			}, "symbol"),
		},
		func(ctx context.Context, userID string, args map[string]interface{}) (map[string]interface{}, error) {
			symbol, err := symbolArg(args)
			if err != nil {
				return nil, err
			}
			if err := deps.Users.EnsureExists(ctx, userID); err != nil {
				return nil, err
			}

			entry, err := deps.Watchlist.Add(ctx, userID, symbol)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"symbol":  entry.Symbol,
				"watched": true,
			}, nil
		},
	)
}

// NewRemoveWatchTool removes a symbol from the watchlist.
func NewRemoveWatchTool(deps Deps) Tool {
	return New(
		Definition{
			Name:        "remove_watch",
			Description: "Remove a ticker symbol from the user's watchlist.",
			Parameters: objectSchema(map[string]interface{}{
				"symbol": stringProp("Ticker symbol, e.g. \"TSLA\""),
			}, "symbol"),
		},
		func(ctx context.Context, userID string, args map[string]interface{}) (map[string]interface{}, error) {
			symbol, err := symbolArg(args)
			if err != nil {
				return nil, err
			}

			if err := deps.Watchlist.Remove(ctx, userID, symbol); err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"symbol":  symbol,
				"watched": false,
			}, nil
		},
	)
}

// NewGetWatchlistTool lists watched symbols with current prices.
func NewGetWatchlistTool(deps Deps) Tool {
	return New(
		Definition{
			Name:        "get_watchlist",
			Description: "Get the user's watchlist with the current price and day change of each watched symbol.",
			Parameters:  objectSchema(map[string]interface{}{}),
		},
		func(ctx context.Context, userID string, args map[string]interface{}) (map[string]interface{}, error) {
			entries, err := deps.Watchlist.List(ctx, userID)
			if err != nil {
				return nil, err
			}
			if len(entries) == 0 {
				return map[string]interface{}{
					"watchlist": []interface{}{},
					"empty":     true,
				}, nil
			}

			symbols := make([]string, 0, len(entries))
			for _, e := range entries {
				symbols = append(symbols, e.Symbol)
			}

			quotes, err := deps.Quotes.GetQuotes(ctx, symbols)
			if err != nil {
				deps.Log.Warnw("Quote gateway unavailable, degrading watchlist view",
					"user_id", userID, "error", err)
				quotes = map[string]marketdata.Quote{}
			}

			items := make([]map[string]interface{}, 0, len(entries))
			degraded := false
			for _, e := range entries {
				item := map[string]interface{}{"symbol": e.Symbol}
				if q, ok := quotes[e.Symbol]; ok {
					item["price"] = money(q.Price)
					item["day_change_pct"] = pct(q.ChangePct)
				} else {
					degraded = true
				}
				items = append(items, item)
			}

			out := map[string]interface{}{"watchlist": items}
			if degraded {
				out["degraded"] = true
			}
			return out, nil
		},
	)
}
