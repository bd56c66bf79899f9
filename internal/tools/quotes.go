package tools

import (
	"context"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"stockpulse/internal/adapters/marketdata"
	"stockpulse/pkg/errors"
)

// NewGetPriceTool returns the current price for one or more symbols.
func NewGetPriceTool(deps Deps) Tool {
	return New(
		Definition{
			Name:        "get_price",
			Description: "Get the current price and day change for one or more stock ticker symbols.",
			Parameters: objectSchema(map[string]interface{}{
				"symbols": stringArrayProp("Ticker symbols to look up, e.g. [\"AAPL\", \"MSFT\"]"),
			}, "symbols"),
		},
		func(ctx context.Context, userID string, args map[string]interface{}) (map[string]interface{}, error) {
			symbols, err := symbolsArg(args, "symbols")
			if err != nil {
				return nil, err
			}

			quotes, err := deps.Quotes.GetQuotes(ctx, symbols)
			if err != nil {
				return nil, err
			}

			results := make([]map[string]interface{}, 0, len(symbols))
			missing := make([]string, 0)
			for _, symbol := range symbols {
				q, ok := quotes[symbol]
				if !ok {
					missing = append(missing, symbol)
					continue
				}
				results = append(results, quoteBrief(q))
			}

			if len(results) == 0 {
				return nil, errors.Wrapf(errors.ErrSymbolNotFound,
					"no quotes for %s", strings.Join(missing, ", "))
			}

			out := map[string]interface{}{"quotes": results}
			if len(missing) > 0 {
				out["missing"] = missing
			}
			return out, nil
		},
	)
}

// NewGetQuoteDetailTool returns an extended profile for a single symbol
// including 52-week range and market capitalization.
func NewGetQuoteDetailTool(deps Deps) Tool {
	return New(
		Definition{
			Name:        "get_quote_detail",
			Description: "Get a detailed quote for a single symbol: price, day change, 52-week range, market cap and market state.",
			Parameters: objectSchema(map[string]interface{}{
				"symbol": stringProp("Ticker symbol, e.g. \"AAPL\""),
			}, "symbol"),
		},
		func(ctx context.Context, userID string, args map[string]interface{}) (map[string]interface{}, error) {
			symbol, err := symbolArg(args)
			if err != nil {
				return nil, err
			}

			quotes, err := deps.Quotes.GetQuotes(ctx, []string{symbol})
			if err != nil {
				return nil, err
			}
			q, ok := quotes[symbol]
			if !ok {
				return nil, errors.Wrapf(errors.ErrSymbolNotFound, "no quote for %s", symbol)
			}

			out := quoteBrief(q)
			out["name"] = q.Name
			out["previous_close"] = money(q.PreviousClose)
			out["market_state"] = q.MarketState
			out["year_high"] = q.YearHigh
			out["year_low"] = q.YearLow
			if q.MarketCap > 0 {
				out["market_cap"] = q.MarketCap
				out["market_cap_human"] = humanize.CommafWithDigits(q.MarketCap, 0)
			}
			return out, nil
		},
	)
}

func quoteBrief(q marketdata.Quote) map[string]interface{} {
	return map[string]interface{}{
		"symbol":         q.Symbol,
		"price":          money(q.Price),
		"day_change_pct": pct(q.ChangePct),
		"currency":       q.Currency,
	}
}

// money rounds to cents for presentation to the model
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func pct(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
