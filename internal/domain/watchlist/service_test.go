package watchlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/pkg/errors"
)

// fakeRepo is an in-memory Repository keyed by user/symbol
type fakeRepo struct {
	rows map[string]*Entry
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[string]*Entry)}
}

func key(userID, symbol string) string { return userID + "/" + symbol }

func (r *fakeRepo) Create(ctx context.Context, entry *Entry) error {
	k := key(entry.UserID, entry.Symbol)
	if _, ok := r.rows[k]; ok {
		return errors.ErrAlreadyExists
	}
	copied := *entry
	r.rows[k] = &copied
	return nil
}

func (r *fakeRepo) GetBySymbol(ctx context.Context, userID, symbol string) (*Entry, error) {
	e, ok := r.rows[key(userID, symbol)]
	if !ok {
		return nil, errors.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *fakeRepo) ListByUser(ctx context.Context, userID string) ([]*Entry, error) {
	var out []*Entry
	for _, e := range r.rows {
		if e.UserID == userID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepo) Delete(ctx context.Context, userID, symbol string) error {
	k := key(userID, symbol)
	if _, ok := r.rows[k]; !ok {
		return errors.ErrNotFound
	}
	delete(r.rows, k)
	return nil
}

func TestAdd(t *testing.T) {
	svc := NewService(newFakeRepo())

	entry, err := svc.Add(context.Background(), "user-1", "TSLA")
	require.NoError(t, err)
	assert.Equal(t, "TSLA", entry.Symbol)
}

func TestAdd_IsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	first, err := svc.Add(ctx, "user-1", "TSLA")
	require.NoError(t, err)

	second, err := svc.Add(ctx, "user-1", "TSLA")
	require.NoError(t, err, "re-adding a watched symbol is not an error")

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.rows, 1)
}

func TestRemove(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Add(ctx, "user-1", "TSLA")
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, "user-1", "TSLA"))
	assert.Empty(t, repo.rows)
}

func TestRemove_NotWatched(t *testing.T) {
	svc := NewService(newFakeRepo())

	err := svc.Remove(context.Background(), "user-1", "TSLA")
	assert.True(t, errors.Is(err, errors.ErrNotWatched))
}

func TestList_ScopedToUser(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Add(ctx, "user-1", "TSLA")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "user-2", "NVDA")
	require.NoError(t, err)

	entries, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "TSLA", entries[0].Symbol)
}
