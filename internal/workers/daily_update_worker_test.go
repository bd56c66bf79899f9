package workers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/internal/adapters/config"
	"stockpulse/pkg/errors"
)

type fakeUsers struct {
	ids []string
	err error
}

func (f *fakeUsers) EnsureExists(ctx context.Context, userID string) error { return nil }

func (f *fakeUsers) ListForDailyUpdates(ctx context.Context) ([]string, error) {
	return f.ids, f.err
}

type fakeSummarizer struct {
	texts map[string]string
	errs  map[string]error
}

func (f *fakeSummarizer) GenerateSummary(ctx context.Context, userID string) (string, error) {
	if err, ok := f.errs[userID]; ok {
		return "", err
	}
	return f.texts[userID], nil
}

type fakeSender struct {
	sent map[string]string
	err  error
}

func (f *fakeSender) Send(ctx context.Context, userID, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent[userID] = text
	return nil
}

func newTestWorker(users *fakeUsers, summarizer *fakeSummarizer, sender *fakeSender, at time.Time) *DailyUpdateWorker {
	w := &DailyUpdateWorker{
		BaseWorker: NewBaseWorker("daily_update", time.Minute, true),
		users:      users,
		summarizer: summarizer,
		sender:     sender,
		cfg:        config.DailyUpdateConfig{Enabled: true, Hour: 8, Minute: 30},
	}
	w.now = func() time.Time { return at }
	return w
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 6, 3, hour, minute, 0, 0, time.UTC)
}

func TestDailyUpdate_FiresAtConfiguredTime(t *testing.T) {
	users := &fakeUsers{ids: []string{"+1555", "+1666"}}
	summarizer := &fakeSummarizer{texts: map[string]string{
		"+1555": "portfolio up 📈",
		"+1666": "portfolio down 📉",
	}}
	sender := &fakeSender{sent: make(map[string]string)}
	w := newTestWorker(users, summarizer, sender, at(8, 30))

	require.NoError(t, w.Run(context.Background()))

	assert.Equal(t, "portfolio up 📈", sender.sent["+1555"])
	assert.Equal(t, "portfolio down 📉", sender.sent["+1666"])
}

func TestDailyUpdate_NotDueBeforeTime(t *testing.T) {
	sender := &fakeSender{sent: make(map[string]string)}
	w := newTestWorker(&fakeUsers{ids: []string{"+1555"}},
		&fakeSummarizer{texts: map[string]string{"+1555": "x"}}, sender, at(8, 29))

	require.NoError(t, w.Run(context.Background()))
	assert.Empty(t, sender.sent)
}

func TestDailyUpdate_CatchesUpAfterMissedTick(t *testing.T) {
	sender := &fakeSender{sent: make(map[string]string)}
	w := newTestWorker(&fakeUsers{ids: []string{"+1555"}},
		&fakeSummarizer{texts: map[string]string{"+1555": "x"}}, sender, at(11, 45))

	require.NoError(t, w.Run(context.Background()))
	assert.Len(t, sender.sent, 1)
}

func TestDailyUpdate_OncePerDay(t *testing.T) {
	sender := &fakeSender{sent: make(map[string]string)}
	summarizer := &fakeSummarizer{texts: map[string]string{"+1555": "x"}}
	w := newTestWorker(&fakeUsers{ids: []string{"+1555"}}, summarizer, sender, at(8, 30))

	require.NoError(t, w.Run(context.Background()))
	require.Len(t, sender.sent, 1)

	// Later the same day nothing more goes out
	sender.sent = make(map[string]string)
	w.now = func() time.Time { return at(9, 0) }
	require.NoError(t, w.Run(context.Background()))
	assert.Empty(t, sender.sent)

	// The next day it fires again
	w.now = func() time.Time { return at(8, 30).AddDate(0, 0, 1) }
	require.NoError(t, w.Run(context.Background()))
	assert.Len(t, sender.sent, 1)
}

func TestDailyUpdate_PerUserFailuresDoNotStopBatch(t *testing.T) {
	users := &fakeUsers{ids: []string{"+1555", "+1666", "+1777"}}
	summarizer := &fakeSummarizer{
		texts: map[string]string{"+1555": "a", "+1777": "c"},
		errs:  map[string]error{"+1666": errors.ErrGatewayUnavailable},
	}
	sender := &fakeSender{sent: make(map[string]string)}
	w := newTestWorker(users, summarizer, sender, at(8, 30))

	require.NoError(t, w.Run(context.Background()))

	assert.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent, "+1555")
	assert.Contains(t, sender.sent, "+1777")
}

func TestDailyUpdate_EmptySummarySkipsSend(t *testing.T) {
	users := &fakeUsers{ids: []string{"+1555"}}
	summarizer := &fakeSummarizer{texts: map[string]string{"+1555": ""}}
	sender := &fakeSender{sent: make(map[string]string)}
	w := newTestWorker(users, summarizer, sender, at(8, 30))

	require.NoError(t, w.Run(context.Background()))
	assert.Empty(t, sender.sent, "users with nothing to report get no message")
}

func TestDailyUpdate_ListFailure(t *testing.T) {
	users := &fakeUsers{err: errors.New("db down")}
	sender := &fakeSender{sent: make(map[string]string)}
	w := newTestWorker(users, &fakeSummarizer{}, sender, at(8, 30))

	err := w.Run(context.Background())
	assert.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestDailyUpdate_RetriesBatchAfterListFailure(t *testing.T) {
	users := &fakeUsers{err: errors.New("db down")}
	summarizer := &fakeSummarizer{texts: map[string]string{"+1555": "portfolio up 📈"}}
	sender := &fakeSender{sent: make(map[string]string)}
	w := newTestWorker(users, summarizer, sender, at(8, 30))

	require.Error(t, w.Run(context.Background()))
	require.Empty(t, sender.sent)

	// The store recovers; a later tick the same day still delivers
	users.err = nil
	users.ids = []string{"+1555"}
	w.now = func() time.Time { return at(8, 31) }

	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, "portfolio up 📈", sender.sent["+1555"])
}
