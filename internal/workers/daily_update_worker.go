package workers

import (
	"context"
	"sync"
	"time"

	"stockpulse/internal/adapters/config"
	"stockpulse/internal/adapters/messaging"
	"stockpulse/internal/domain/user"
	"stockpulse/internal/metrics"
)

// Summarizer produces the daily update text for one user. An empty
// string with a nil error means there is nothing to send.
type Summarizer interface {
	GenerateSummary(ctx context.Context, userID string) (string, error)
}

// DailyUpdateWorker sends each opted-in user their portfolio summary
// once a day at the configured time. The worker ticks every minute and
// fires when the send time has passed and today's batch has not run.
type DailyUpdateWorker struct {
	*BaseWorker

	users      user.Repository
	summarizer Summarizer
	sender     messaging.Sender
	cfg        config.DailyUpdateConfig
	now        func() time.Time

	mu       sync.Mutex
	lastSent string // date of the last completed batch, YYYY-MM-DD
}

// NewDailyUpdateWorker creates the daily summary worker
func NewDailyUpdateWorker(
	users user.Repository,
	summarizer Summarizer,
	sender messaging.Sender,
	cfg config.DailyUpdateConfig,
) *DailyUpdateWorker {
	w := &DailyUpdateWorker{
		BaseWorker: NewBaseWorker("daily_update", time.Minute, cfg.Enabled),
		users:      users,
		summarizer: summarizer,
		sender:     sender,
		cfg:        cfg,
		now:        time.Now,
	}

	// A restart after today's send time must not resend today's batch
	if now := w.now(); w.due(now) {
		w.lastSent = now.Format("2006-01-02")
	}
	return w
}

// Run fires the daily batch when it is due. Per-user failures are
// logged and do not stop the rest of the batch.
func (w *DailyUpdateWorker) Run(ctx context.Context) error {
	now := w.now()
	if !w.due(now) {
		return nil
	}

	userIDs, err := w.users.ListForDailyUpdates(ctx)
	if err != nil {
		// The day stays unstamped so the next tick retries the batch
		w.RecordError(err)
		return err
	}

	w.mu.Lock()
	w.lastSent = now.Format("2006-01-02")
	w.mu.Unlock()

	w.Log().Infow("Sending daily updates", "users", len(userIDs))

	sent := 0
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.sendOne(ctx, userID); err != nil {
			w.Log().Errorw("Daily update failed", "user_id", userID, "error", err)
			metrics.DailyUpdatesSent.WithLabelValues("error").Inc()
			continue
		}
		sent++
	}

	w.Log().Infow("Daily updates complete", "sent", sent, "total", len(userIDs))
	w.RecordRun()
	return nil
}

func (w *DailyUpdateWorker) sendOne(ctx context.Context, userID string) error {
	text, err := w.summarizer.GenerateSummary(ctx, userID)
	if err != nil {
		return err
	}
	if text == "" {
		metrics.DailyUpdatesSent.WithLabelValues("skipped").Inc()
		return nil
	}
	if err := w.sender.Send(ctx, userID, text); err != nil {
		return err
	}
	metrics.DailyUpdatesSent.WithLabelValues("ok").Inc()
	return nil
}

// due reports whether the batch should fire now: the configured time
// has passed today and no batch has run today. Catching up after the
// exact minute covers restarts and missed ticks.
func (w *DailyUpdateWorker) due(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.lastSent == now.Format("2006-01-02") {
		return false
	}
	if now.Hour() < w.cfg.Hour {
		return false
	}
	if now.Hour() == w.cfg.Hour && now.Minute() < w.cfg.Minute {
		return false
	}
	return true
}
