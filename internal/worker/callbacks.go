package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/smsrelay/smsrelay/internal/job"
	"github.com/smsrelay/smsrelay/internal/notify"
)

// callbackBatchSize bounds how many pending callbacks one sweep handles.
const callbackBatchSize = 50

// CallbackDispatcher delivers terminal-status webhooks for jobs whose
// producers supplied a callback URL. Delivery is best-effort: permanent
// rejections are marked notified so they are not retried forever, while
// transient failures are picked up again on the next sweep.
type CallbackDispatcher struct {
	jobs     *job.Service
	notifier *notify.Notifier
	interval time.Duration
	log      zerolog.Logger
}

// NewCallbackDispatcher creates a CallbackDispatcher.
func NewCallbackDispatcher(jobs *job.Service, notifier *notify.Notifier, interval time.Duration, log zerolog.Logger) *CallbackDispatcher {
	return &CallbackDispatcher{
		jobs:     jobs,
		notifier: notifier,
		interval: interval,
		log:      log,
	}
}

// Run executes the dispatch loop until ctx is cancelled.
func (d *CallbackDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.log.Info().Dur("interval", d.interval).Msg("callback loop started")

	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("callback loop stopped")
			return
		case <-ticker.C:
			d.sweep(ctx)
		}
	}
}

func (d *CallbackDispatcher) sweep(ctx context.Context) {
	pending, err := d.jobs.PendingCallbacks(ctx, callbackBatchSize)
	if err != nil {
		d.log.Error().Err(err).Msg("pending callback lookup failed")
		return
	}

	for _, j := range pending {
		if ctx.Err() != nil {
			return
		}
		d.dispatch(ctx, j)
	}
}

func (d *CallbackDispatcher) dispatch(ctx context.Context, j *job.Job) {
	err := d.notifier.Deliver(ctx, j)

	switch {
	case err == nil:
		d.log.Info().
			Int64("request_id", j.ID).
			Str("status", j.Status).
			Msg("callback delivered")

	case errors.Is(err, notify.ErrRejected):
		// The receiver answered with a client error; retrying cannot help.
		d.log.Warn().
			Int64("request_id", j.ID).
			Msg("callback rejected by receiver")

	default:
		d.log.Error().Err(err).
			Int64("request_id", j.ID).
			Msg("callback delivery failed")
		return
	}

	if err := d.jobs.MarkNotified(ctx, j.ID); err != nil {
		d.log.Error().Err(err).
			Int64("request_id", j.ID).
			Msg("marking callback notified failed")
	}
}
