// Package consumer implements the blocking claim/notify/release loop on
// the durable queue.
package consumer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alshabili/first-backend/internal/jobs"
	"github.com/alshabili/first-backend/internal/metrics"
	"github.com/alshabili/first-backend/internal/queue"
)

// Notifier is the processing step invoked for each claimed envelope.
type Notifier interface {
	Notify(ctx context.Context, category string, record jobs.JobRecord) error
}

// Config controls Loop timing.
type Config struct {
	// ClaimTimeout bounds each blocking claim so the loop stays
	// responsive to shutdown. Zero defaults to 30s.
	ClaimTimeout time.Duration
	// Backoff is the pause after a failed notify. Zero defaults to 5s.
	Backoff time.Duration
}

// Loop consumes envelopes until its context is canceled. Each iteration
// walks WAIT -> CLAIMED -> NOTIFYING -> RELEASED, or discards a
// malformed envelope straight from CLAIMED. A notify failure leaves the
// envelope in the processing list for a later claim or operator
// intervention; the loop itself never terminates on a bad job.
type Loop struct {
	queue    queue.Queue
	notifier Notifier
	cfg      Config
	logger   *zap.Logger
}

// New constructs a Loop. Each instance gets a consumer id for log
// correlation across restarts.
func New(q queue.Queue, n Notifier, cfg Config, logger *zap.Logger) *Loop {
	if cfg.ClaimTimeout <= 0 {
		cfg.ClaimTimeout = 30 * time.Second
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 5 * time.Second
	}
	return &Loop{
		queue:    q,
		notifier: n,
		cfg:      cfg,
		logger:   logger.With(zap.String("consumer_id", uuid.NewString())),
	}
}

// RecoverProcessing inspects envelopes left in the processing list by a
// previous run. With requeue set they are moved back to main; otherwise
// they are only logged, leaving the replay decision to an operator
// (auto-replay could double-notify a job whose processing succeeded but
// crashed before release).
func (l *Loop) RecoverProcessing(ctx context.Context, requeue bool) error {
	entries, err := l.queue.ProcessingEntries(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	l.logger.Warn("envelopes left in processing by a previous run",
		zap.Int("count", len(entries)),
		zap.Bool("requeue", requeue),
	)
	for _, payload := range entries {
		id := "malformed"
		if env, err := jobs.DecodeEnvelope(payload); err == nil {
			id = env.Record.ExternalID
		}
		if !requeue {
			l.logger.Warn("stale processing envelope", zap.String("external_id", id))
			continue
		}
		if err := l.queue.Requeue(ctx, payload); err != nil {
			l.logger.Error("requeue failed", zap.String("external_id", id), zap.Error(err))
			continue
		}
		l.logger.Info("requeued stale envelope", zap.String("external_id", id))
	}
	return nil
}

// Run blocks until ctx is canceled. Cancellation is checked at the top
// of each WAIT so shutdown never loses a claimed envelope: anything
// claimed but unprocessed stays in the processing list and is safe to
// resume in a new process.
func (l *Loop) Run(ctx context.Context) {
	l.logger.Info("consumer started, listening for jobs")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("consumer stopped")
			return
		default:
		}

		payload, err := l.queue.Claim(ctx, l.cfg.ClaimTimeout)
		if err != nil {
			if ctx.Err() != nil {
				l.logger.Info("consumer stopped")
				return
			}
			l.logger.Error("queue claim failed", zap.Error(err))
			l.pause(ctx)
			continue
		}
		if payload == nil {
			// Claim timed out with an empty queue. Normal.
			l.updateDepths(ctx)
			continue
		}
		metrics.ObserveClaimed()

		l.processClaim(ctx, payload)
		l.updateDepths(ctx)
	}
}

func (l *Loop) processClaim(ctx context.Context, payload []byte) {
	env, err := jobs.DecodeEnvelope(payload)
	if err != nil {
		// Malformed envelopes can never succeed; drop them so they do
		// not wedge the processing list.
		l.logger.Error("malformed envelope discarded", zap.Error(err))
		metrics.ObserveDiscarded()
		if relErr := l.queue.Release(ctx, payload); relErr != nil {
			l.logger.Error("release of malformed envelope failed", zap.Error(relErr))
		}
		return
	}

	l.logger.Info("processing job",
		zap.String("category", env.Category),
		zap.String("external_id", env.Record.ExternalID),
	)

	if err := l.notifier.Notify(ctx, env.Category, env.Record); err != nil {
		// No release: the envelope stays in processing so the job is
		// not silently dropped on partial failure.
		l.logger.Error("notify failed, envelope left in processing",
			zap.String("category", env.Category),
			zap.String("external_id", env.Record.ExternalID),
			zap.Error(err),
		)
		metrics.ObserveNotifyFailure()
		l.pause(ctx)
		return
	}

	if err := l.queue.Release(ctx, payload); err != nil {
		l.logger.Error("release failed",
			zap.String("external_id", env.Record.ExternalID),
			zap.Error(err),
		)
		return
	}
	metrics.ObserveReleased()
	l.logger.Info("job completed", zap.String("external_id", env.Record.ExternalID))
}

// pause sleeps for the configured backoff, returning early on shutdown.
func (l *Loop) pause(ctx context.Context) {
	timer := time.NewTimer(l.cfg.Backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (l *Loop) updateDepths(ctx context.Context) {
	mainLen, processingLen, err := l.queue.Depths(ctx)
	if err != nil {
		l.logger.Debug("queue depth check failed", zap.Error(err))
		return
	}
	metrics.SetQueueDepths(mainLen, processingLen)
}
