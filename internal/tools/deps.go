package tools

import (
	"context"

	"stockpulse/internal/adapters/marketdata"
	"stockpulse/internal/domain/holding"
	"stockpulse/internal/domain/user"
	"stockpulse/internal/domain/watchlist"
	"stockpulse/pkg/logger"
)

// QuoteGateway fetches live quotes for a set of symbols. Symbols the
// gateway cannot resolve are simply absent from the returned map.
type QuoteGateway interface {
	GetQuotes(ctx context.Context, symbols []string) (map[string]marketdata.Quote, error)
}

var _ QuoteGateway = (*marketdata.Client)(nil)

// Deps bundles the services the tool catalog operates on.
type Deps struct {
	Holdings  *holding.Service
	Watchlist *watchlist.Service
	Users     user.Repository
	Quotes    QuoteGateway
	Log       *logger.Logger
}
