package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/ghboard/internal/config"
	"github.com/amishk599/ghboard/internal/filter"
	"github.com/amishk599/ghboard/internal/model"
	"github.com/amishk599/ghboard/internal/processor"
)

// BoardProcessor runs the pipeline for one board token.
type BoardProcessor interface {
	Process(ctx context.Context, boardToken string, rc filter.RunConfig) (processor.Report, error)
}

// Result is the outcome for one configured URL.
type Result struct {
	URL        string
	BoardToken string // empty when the URL had no token
	Warnings   []filter.Warning
	Report     processor.Report
	Err        error
}

// Failed reports whether the board produced no complete run.
func (r Result) Failed() bool { return r.Err != nil }

// AllFailed reports whether every result failed. An empty slice has not failed.
func AllFailed(results []Result) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if !r.Failed() {
			return false
		}
	}
	return true
}

// Runner processes a set of boards once, in parallel.
type Runner struct {
	processor   BoardProcessor
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// NewRunner creates a runner that processes up to concurrency boards at a time.
func NewRunner(p BoardProcessor, concurrency int, logger *slog.Logger) *Runner {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Runner{
		processor:   p,
		concurrency: concurrency,
		logger:      logger,
		now:         time.Now,
	}
}

// RunOnce processes every board and returns one Result per input, in input
// order. A bad URL or a failing board is recorded in its Result and never
// stops its siblings. The only error is config.ErrNoURLs for empty input.
func (r *Runner) RunOnce(ctx context.Context, boards []config.BoardConfig, defaults filter.Options) ([]Result, error) {
	if len(boards) == 0 {
		return nil, config.ErrNoURLs
	}

	runID := uuid.NewString()
	ctx = model.WithRunID(ctx, runID)
	logger := r.logger.With("run_id", runID)
	start := r.now()

	logger.Info("starting run", "boards", len(boards), "concurrency", r.concurrency)

	results := make([]Result, len(boards))
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, b := range boards {
		g.Go(func() error {
			results[i] = r.runBoard(ctx, b, defaults, start, logger)
			return nil
		})
	}
	_ = g.Wait() // boards record their own errors

	failed, accepted := 0, 0
	for _, res := range results {
		if res.Failed() {
			failed++
		}
		accepted += res.Report.Accepted
	}
	logger.Info("run complete",
		"boards", len(results),
		"failed", failed,
		"accepted", accepted,
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)
	return results, nil
}

func (r *Runner) runBoard(ctx context.Context, b config.BoardConfig, defaults filter.Options, now time.Time, logger *slog.Logger) Result {
	plan, err := PlanBoard(b, defaults, now)
	if err != nil {
		logger.Error("skipping url", "url", b.URL, "error", err)
		return Result{URL: b.URL, Err: err}
	}

	res := Result{URL: b.URL, BoardToken: plan.BoardToken, Warnings: plan.Warnings}
	for _, w := range plan.Warnings {
		logger.Warn("invalid filter option",
			"board", plan.BoardToken,
			"option", w.Option,
			"value", w.Value,
			"reason", w.Reason,
		)
	}

	if ctx.Err() != nil {
		res.Err = ctx.Err()
		return res
	}

	res.Report, res.Err = r.processor.Process(ctx, plan.BoardToken, plan.RunConfig)
	if res.Err != nil {
		logger.Error("board failed", "board", plan.BoardToken, "error", res.Err)
	}
	return res
}
