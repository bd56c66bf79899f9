package holding

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/pkg/errors"
)

// fakeRepo is an in-memory Repository keyed by user/symbol
type fakeRepo struct {
	rows map[string]*Holding
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[string]*Holding)}
}

func key(userID, symbol string) string { return userID + "/" + symbol }

func (r *fakeRepo) InTx(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeRepo) GetBySymbol(ctx context.Context, userID, symbol string) (*Holding, error) {
	h, ok := r.rows[key(userID, symbol)]
	if !ok {
		return nil, errors.ErrNotFound
	}
	copied := *h
	return &copied, nil
}

func (r *fakeRepo) ListByUser(ctx context.Context, userID string) ([]*Holding, error) {
	var out []*Holding
	for _, h := range r.rows {
		if h.UserID == userID {
			copied := *h
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepo) Upsert(ctx context.Context, h *Holding) error {
	copied := *h
	r.rows[key(h.UserID, h.Symbol)] = &copied
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, userID, symbol string) error {
	k := key(userID, symbol)
	if _, ok := r.rows[k]; !ok {
		return errors.ErrNotFound
	}
	delete(r.rows, k)
	return nil
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestBuy_FirstPurchase(t *testing.T) {
	svc := NewService(newFakeRepo())

	h, err := svc.Buy(context.Background(), "user-1", "AAPL", dec(5), dec(175))
	require.NoError(t, err)

	assert.Equal(t, "AAPL", h.Symbol)
	assert.True(t, h.Quantity.Equal(dec(5)))
	assert.True(t, h.CostBasis.Equal(dec(175)))
}

func TestBuy_MergesWithWeightedAverage(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Buy(ctx, "user-1", "AAPL", dec(5), dec(175))
	require.NoError(t, err)

	h, err := svc.Buy(ctx, "user-1", "AAPL", dec(5), dec(185))
	require.NoError(t, err)

	// (5*175 + 5*185) / 10 = 180
	assert.True(t, h.Quantity.Equal(dec(10)), "quantity = %s", h.Quantity)
	assert.InDelta(t, 180.0, h.CostBasis.InexactFloat64(), 1e-6)
}

func TestBuy_UnevenWeightedAverage(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Buy(ctx, "user-1", "TSLA", dec(3), dec(200))
	require.NoError(t, err)

	h, err := svc.Buy(ctx, "user-1", "TSLA", dec(1), dec(300))
	require.NoError(t, err)

	// (3*200 + 1*300) / 4 = 225
	assert.InDelta(t, 225.0, h.CostBasis.InexactFloat64(), 1e-6)
}

func TestBuy_RejectsNonPositiveInput(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Buy(ctx, "user-1", "AAPL", dec(0), dec(100))
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	_, err = svc.Buy(ctx, "user-1", "AAPL", dec(1), dec(-5))
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestSell_PartialKeepsCostBasis(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Buy(ctx, "user-1", "AAPL", dec(10), dec(180))
	require.NoError(t, err)

	qty := dec(3)
	remaining, err := svc.Sell(ctx, "user-1", "AAPL", &qty)
	require.NoError(t, err)
	require.NotNil(t, remaining)

	assert.True(t, remaining.Quantity.Equal(dec(7)))
	assert.True(t, remaining.CostBasis.Equal(dec(180)), "sales never move the cost basis")
}

func TestSell_FullQuantityDeletesRow(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Buy(ctx, "user-1", "AAPL", dec(10), dec(180))
	require.NoError(t, err)

	qty := dec(10)
	remaining, err := svc.Sell(ctx, "user-1", "AAPL", &qty)
	require.NoError(t, err)
	assert.Nil(t, remaining)

	_, err = repo.GetBySymbol(ctx, "user-1", "AAPL")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestSell_NilQuantityClosesPosition(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Buy(ctx, "user-1", "AAPL", dec(4), dec(150))
	require.NoError(t, err)

	remaining, err := svc.Sell(ctx, "user-1", "AAPL", nil)
	require.NoError(t, err)
	assert.Nil(t, remaining)
	assert.Empty(t, repo.rows)
}

func TestSell_OverSellClosesPosition(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Buy(ctx, "user-1", "AAPL", dec(2), dec(150))
	require.NoError(t, err)

	qty := dec(5)
	remaining, err := svc.Sell(ctx, "user-1", "AAPL", &qty)
	require.NoError(t, err)
	assert.Nil(t, remaining)
	assert.Empty(t, repo.rows)
}

func TestSell_UnknownSymbol(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Sell(context.Background(), "user-1", "ZZZZ", nil)
	assert.True(t, errors.Is(err, errors.ErrHoldingNotFound))
}
