package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Trigger starts a polling cycle and reports whether it was accepted.
type Trigger interface {
	StartCycle() bool
}

// Scheduler delivers start signals on a fixed cadence.
type Scheduler struct {
	trigger      Trigger
	interval     time.Duration
	runOnStartup bool
	logger       *zap.Logger
}

// New creates a scheduler that starts a cycle every interval.
func New(trigger Trigger, interval time.Duration, runOnStartup bool, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		trigger:      trigger,
		interval:     interval,
		runOnStartup: runOnStartup,
		logger:       logger,
	}
}

// Run ticks until ctx is cancelled. A tick that lands while the previous
// cycle is still resolving is skipped.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started",
		zap.Duration("interval", s.interval),
		zap.Bool("runOnStartup", s.runOnStartup),
	)

	if s.runOnStartup {
		s.fire()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.fire()
		}
	}
}

func (s *Scheduler) fire() {
	if !s.trigger.StartCycle() {
		s.logger.Warn("previous cycle still running, skipping tick")
	}
}
