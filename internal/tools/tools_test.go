package tools

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/internal/adapters/marketdata"
	"stockpulse/internal/domain/holding"
	"stockpulse/internal/domain/watchlist"
	"stockpulse/pkg/errors"
	"stockpulse/pkg/logger"
)

// In-memory fakes backing the real domain services

type fakeHoldingRepo struct {
	rows map[string]*holding.Holding
}

func (r *fakeHoldingRepo) InTx(ctx context.Context, fn func(holding.Repository) error) error {
	return fn(r)
}

func (r *fakeHoldingRepo) GetBySymbol(ctx context.Context, userID, symbol string) (*holding.Holding, error) {
	h, ok := r.rows[userID+"/"+symbol]
	if !ok {
		return nil, errors.ErrNotFound
	}
	copied := *h
	return &copied, nil
}

func (r *fakeHoldingRepo) ListByUser(ctx context.Context, userID string) ([]*holding.Holding, error) {
	var out []*holding.Holding
	for _, h := range r.rows {
		if h.UserID == userID {
			copied := *h
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeHoldingRepo) Upsert(ctx context.Context, h *holding.Holding) error {
	copied := *h
	r.rows[h.UserID+"/"+h.Symbol] = &copied
	return nil
}

func (r *fakeHoldingRepo) Delete(ctx context.Context, userID, symbol string) error {
	k := userID + "/" + symbol
	if _, ok := r.rows[k]; !ok {
		return errors.ErrNotFound
	}
	delete(r.rows, k)
	return nil
}

type fakeWatchlistRepo struct {
	rows map[string]*watchlist.Entry
}

func (r *fakeWatchlistRepo) Create(ctx context.Context, e *watchlist.Entry) error {
	k := e.UserID + "/" + e.Symbol
	if _, ok := r.rows[k]; ok {
		return errors.ErrAlreadyExists
	}
	copied := *e
	r.rows[k] = &copied
	return nil
}

func (r *fakeWatchlistRepo) GetBySymbol(ctx context.Context, userID, symbol string) (*watchlist.Entry, error) {
	e, ok := r.rows[userID+"/"+symbol]
	if !ok {
		return nil, errors.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *fakeWatchlistRepo) ListByUser(ctx context.Context, userID string) ([]*watchlist.Entry, error) {
	var out []*watchlist.Entry
	for _, e := range r.rows {
		if e.UserID == userID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeWatchlistRepo) Delete(ctx context.Context, userID, symbol string) error {
	k := userID + "/" + symbol
	if _, ok := r.rows[k]; !ok {
		return errors.ErrNotFound
	}
	delete(r.rows, k)
	return nil
}

type fakeUserRepo struct {
	users map[string]bool
}

func (r *fakeUserRepo) EnsureExists(ctx context.Context, userID string) error {
	r.users[userID] = true
	return nil
}

func (r *fakeUserRepo) ListForDailyUpdates(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range r.users {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeGateway struct {
	quotes map[string]marketdata.Quote
	err    error
	calls  [][]string
}

func (g *fakeGateway) GetQuotes(ctx context.Context, symbols []string) (map[string]marketdata.Quote, error) {
	g.calls = append(g.calls, symbols)
	if g.err != nil {
		return nil, g.err
	}
	out := make(map[string]marketdata.Quote)
	for _, s := range symbols {
		if q, ok := g.quotes[s]; ok {
			out[s] = q
		}
	}
	return out, nil
}

func quote(symbol string, price float64) marketdata.Quote {
	return marketdata.Quote{
		Symbol:    symbol,
		Price:     decimal.NewFromFloat(price),
		ChangePct: decimal.NewFromFloat(1.5),
		Currency:  "USD",
	}
}

func testDeps(gateway *fakeGateway) (Deps, *fakeHoldingRepo, *fakeUserRepo) {
	holdingRepo := &fakeHoldingRepo{rows: make(map[string]*holding.Holding)}
	userRepo := &fakeUserRepo{users: make(map[string]bool)}
	deps := Deps{
		Holdings:  holding.NewService(holdingRepo),
		Watchlist: watchlist.NewService(&fakeWatchlistRepo{rows: make(map[string]*watchlist.Entry)}),
		Users:     userRepo,
		Quotes:    gateway,
		Log:       logger.Get(),
	}
	return deps, holdingRepo, userRepo
}

func TestBuildRegistry_Catalog(t *testing.T) {
	deps, _, _ := testDeps(&fakeGateway{})
	registry := BuildRegistry(deps)

	assert.Equal(t, []string{
		"add_holding", "add_watch", "get_portfolio", "get_price",
		"get_quote_detail", "get_summary", "get_watchlist",
		"remove_holding", "remove_watch",
	}, registry.List())

	defs := registry.Definitions()
	require.Len(t, defs, 9)
	for _, def := range defs {
		assert.NotEmpty(t, def.Description, "tool %s", def.Name)
		assert.NotNil(t, def.Parameters, "tool %s", def.Name)
	}
}

func TestGetPriceTool(t *testing.T) {
	gateway := &fakeGateway{quotes: map[string]marketdata.Quote{
		"AAPL": quote("AAPL", 190.123),
	}}
	deps, _, _ := testDeps(gateway)
	tool := NewGetPriceTool(deps)

	result, err := tool.Execute(context.Background(), "user-1", map[string]interface{}{
		"symbols": []interface{}{"aapl", "ZZZZ"},
	})
	require.NoError(t, err)

	quotes := result["quotes"].([]map[string]interface{})
	require.Len(t, quotes, 1)
	assert.Equal(t, "AAPL", quotes[0]["symbol"])
	assert.Equal(t, 190.12, quotes[0]["price"])
	assert.Equal(t, []string{"ZZZZ"}, result["missing"])

	// Symbols reach the gateway normalized
	require.Len(t, gateway.calls, 1)
	assert.Equal(t, []string{"AAPL", "ZZZZ"}, gateway.calls[0])
}

func TestGetPriceTool_AllUnknown(t *testing.T) {
	deps, _, _ := testDeps(&fakeGateway{quotes: map[string]marketdata.Quote{}})
	tool := NewGetPriceTool(deps)

	_, err := tool.Execute(context.Background(), "user-1", map[string]interface{}{
		"symbols": []interface{}{"ZZZZ"},
	})
	assert.True(t, errors.Is(err, errors.ErrSymbolNotFound))
}

func TestAddHoldingTool(t *testing.T) {
	deps, holdingRepo, userRepo := testDeps(&fakeGateway{})
	tool := NewAddHoldingTool(deps)

	result, err := tool.Execute(context.Background(), "user-1", map[string]interface{}{
		"symbol":   " aapl ",
		"quantity": 5.0,
		"price":    175.0,
	})
	require.NoError(t, err)

	assert.Equal(t, "AAPL", result["symbol"])
	assert.Equal(t, 5.0, result["quantity"])
	assert.Equal(t, 175.0, result["cost_basis"])

	assert.True(t, userRepo.users["user-1"], "first contact registers the user")
	assert.Contains(t, holdingRepo.rows, "user-1/AAPL")
}

func TestAddHoldingTool_RejectsNegativeQuantity(t *testing.T) {
	deps, _, _ := testDeps(&fakeGateway{})
	tool := NewAddHoldingTool(deps)

	_, err := tool.Execute(context.Background(), "user-1", map[string]interface{}{
		"symbol":   "AAPL",
		"quantity": -5.0,
		"price":    175.0,
	})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestRemoveHoldingTool_FullSale(t *testing.T) {
	deps, _, _ := testDeps(&fakeGateway{})
	ctx := context.Background()

	_, err := NewAddHoldingTool(deps).Execute(ctx, "user-1", map[string]interface{}{
		"symbol": "AAPL", "quantity": 5.0, "price": 175.0,
	})
	require.NoError(t, err)

	result, err := NewRemoveHoldingTool(deps).Execute(ctx, "user-1", map[string]interface{}{
		"symbol": "AAPL",
	})
	require.NoError(t, err)
	assert.Equal(t, true, result["removed"])
}

func TestRemoveHoldingTool_NotHeld(t *testing.T) {
	deps, _, _ := testDeps(&fakeGateway{})
	tool := NewRemoveHoldingTool(deps)

	_, err := tool.Execute(context.Background(), "user-1", map[string]interface{}{
		"symbol": "AAPL",
	})
	assert.True(t, errors.Is(err, errors.ErrHoldingNotFound))
}

func TestGetPortfolioTool_DegradesWhenGatewayDown(t *testing.T) {
	gateway := &fakeGateway{quotes: map[string]marketdata.Quote{
		"AAPL": quote("AAPL", 190),
	}}
	deps, _, _ := testDeps(gateway)
	ctx := context.Background()

	_, err := NewAddHoldingTool(deps).Execute(ctx, "user-1", map[string]interface{}{
		"symbol": "AAPL", "quantity": 5.0, "price": 175.0,
	})
	require.NoError(t, err)

	gateway.err = errors.ErrGatewayUnavailable
	result, err := NewGetPortfolioTool(deps).Execute(ctx, "user-1", map[string]interface{}{})
	require.NoError(t, err, "a dead gateway degrades the view, it does not fail it")

	assert.Equal(t, true, result["degraded"])
	positions := result["positions"].([]map[string]interface{})
	require.Len(t, positions, 1)
	assert.Equal(t, true, positions[0]["quote_missing"])
	assert.Equal(t, 875.0, positions[0]["cost_value"])
}

func TestGetSummaryTool_EmptyAccount(t *testing.T) {
	deps, _, _ := testDeps(&fakeGateway{})
	tool := NewGetSummaryTool(deps)

	result, err := tool.Execute(context.Background(), "user-1", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, true, result["empty"])
}

func TestGetSummaryTool_CombinesHoldingsAndWatchlist(t *testing.T) {
	gateway := &fakeGateway{quotes: map[string]marketdata.Quote{
		"AAPL": quote("AAPL", 190),
		"NVDA": quote("NVDA", 500),
	}}
	deps, _, _ := testDeps(gateway)
	ctx := context.Background()

	_, err := NewAddHoldingTool(deps).Execute(ctx, "user-1", map[string]interface{}{
		"symbol": "AAPL", "quantity": 7.0, "price": 180.0,
	})
	require.NoError(t, err)
	_, err = NewAddWatchTool(deps).Execute(ctx, "user-1", map[string]interface{}{
		"symbol": "nvda",
	})
	require.NoError(t, err)

	result, err := NewGetSummaryTool(deps).Execute(ctx, "user-1", map[string]interface{}{})
	require.NoError(t, err)

	assert.Equal(t, 1330.0, result["total_value"])
	assert.Equal(t, 70.0, result["total_gain_abs"])

	watch := result["watchlist"].([]map[string]interface{})
	require.Len(t, watch, 1)
	assert.Equal(t, "NVDA", watch[0]["symbol"])
	assert.Equal(t, 500.0, watch[0]["price"])
}

func TestRemoveWatchTool_NotWatched(t *testing.T) {
	deps, _, _ := testDeps(&fakeGateway{})
	tool := NewRemoveWatchTool(deps)

	_, err := tool.Execute(context.Background(), "user-1", map[string]interface{}{
		"symbol": "TSLA",
	})
	assert.True(t, errors.Is(err, errors.ErrNotWatched))
}

func TestGetQuoteDetailTool(t *testing.T) {
	q := quote("AAPL", 190)
	q.Name = "Apple Inc."
	q.MarketCap = 2_950_000_000_000
	q.YearHigh = 199.6
	q.YearLow = 142.1
	gateway := &fakeGateway{quotes: map[string]marketdata.Quote{"AAPL": q}}
	deps, _, _ := testDeps(gateway)

	result, err := NewGetQuoteDetailTool(deps).Execute(context.Background(), "user-1",
		map[string]interface{}{"symbol": "aapl"})
	require.NoError(t, err)

	assert.Equal(t, "Apple Inc.", result["name"])
	assert.Equal(t, 199.6, result["year_high"])
	assert.Equal(t, "2,950,000,000,000", result["market_cap_human"])
}
