// Package worker runs the background maintenance loops: stale claim
// recovery and terminal-status callback dispatch.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/smsrelay/smsrelay/internal/job"
)

// Requeuer returns jobs stuck in the claimed state to the pending pool.
// A device that crashes or loses connectivity after polling never
// reports an outcome, so its claims expire after ClaimTTL.
type Requeuer struct {
	jobs     *job.Service
	interval time.Duration
	claimTTL time.Duration
	log      zerolog.Logger
}

// NewRequeuer creates a Requeuer.
func NewRequeuer(jobs *job.Service, interval, claimTTL time.Duration, log zerolog.Logger) *Requeuer {
	return &Requeuer{
		jobs:     jobs,
		interval: interval,
		claimTTL: claimTTL,
		log:      log,
	}
}

// Run executes the requeue loop until ctx is cancelled.
func (r *Requeuer) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info().
		Dur("interval", r.interval).
		Dur("claim_ttl", r.claimTTL).
		Msg("requeue loop started")

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("requeue loop stopped")
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Requeuer) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-r.claimTTL)

	requeued, err := r.jobs.RequeueStale(ctx, cutoff)
	if err != nil {
		r.log.Error().Err(err).Msg("stale claim sweep failed")
		return
	}

	if requeued > 0 {
		r.log.Warn().
			Int64("requeued", requeued).
			Time("cutoff", cutoff).
			Msg("stale claims returned to pending")
	}
}
