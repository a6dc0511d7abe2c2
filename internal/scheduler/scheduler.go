package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/amishk599/ghboard/internal/config"
	"github.com/amishk599/ghboard/internal/filter"
)

// Scheduler owns the watch loop: one run per interval over the same boards.
type Scheduler struct {
	runner   *Runner
	boards   []config.BoardConfig
	defaults filter.Options
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that runs all boards at the given interval.
func NewScheduler(runner *Runner, boards []config.BoardConfig, defaults filter.Options, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		boards:   boards,
		defaults: defaults,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the loop. It runs one immediate cycle, then one per interval.
// It returns nil when ctx is cancelled (graceful shutdown) and
// config.ErrNoURLs when there is nothing to watch.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.boards) == 0 {
		return config.ErrNoURLs
	}

	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"boards", len(s.boards),
	)

	// Run one immediate cycle.
	s.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	results, err := s.runner.RunOnce(ctx, s.boards, s.defaults)
	if err != nil {
		s.logger.Error("run failed", "error", err)
		return
	}
	if AllFailed(results) {
		s.logger.Error("every board failed this cycle", "boards", len(results))
	}
}
