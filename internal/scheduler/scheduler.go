// Package scheduler drives scrape cycles on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/alshabili/first-backend/internal/metrics"
)

// Runner is the unit of work the scheduler fires. In production it is the
// ingest cycle.
type Runner interface {
	Cycle(ctx context.Context) error
}

// Scheduler runs the Runner immediately on Start and then on every tick.
// Overlapping runs are skipped, not queued: a cycle that outlasts the
// interval simply absorbs the next tick.
type Scheduler struct {
	cron     *cron.Cron
	runner   Runner
	interval time.Duration
	logger   *zap.Logger
	running  atomic.Bool
}

// New constructs a Scheduler firing every interval.
func New(runner Runner, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		cron:     cron.New(),
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Start kicks off the first cycle right away and schedules the rest. It
// returns once the schedule is installed; cycles run on cron's goroutine.
func (s *Scheduler) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() { s.runCycle(ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}

	// cron waits a full interval before the first fire; users expect a
	// scrape as soon as the process is up
	go s.runCycle(ctx)

	s.cron.Start()
	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop halts the schedule and waits for an in-flight cycle to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("previous scrape cycle still running, skipping tick")
		metrics.ObserveScrapeCycle("skipped")
		return
	}
	defer s.running.Store(false)

	start := time.Now()
	if err := s.runner.Cycle(ctx); err != nil {
		s.logger.Error("scrape cycle failed", zap.Error(err))
		metrics.ObserveScrapeCycle("failed")
		return
	}
	metrics.ObserveScrapeCycle("ok")
	s.logger.Info("scrape cycle finished", zap.Duration("took", time.Since(start)))
}
