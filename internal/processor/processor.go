// Package processor runs the fetch → filter → detail → normalize → emit
// pipeline for a single board token.
package processor

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/ghboard/internal/filter"
	"github.com/amishk599/ghboard/internal/model"
	"github.com/amishk599/ghboard/internal/normalize"
)

// Options tune how a board is processed, independent of the filters.
type Options struct {
	DetailConcurrency int  // detail fetches in flight; <= 0 means 1
	SkipDetails       bool // normalize from the listing only
}

// Report summarizes one board run.
type Report struct {
	BoardToken           string
	Departments          int // departments in the listing
	DepartmentsSelected  int // departments that passed the filter
	Accepted             int
	FilteredByDate       int
	FilteredByDepartment int
	DetailFailures       int
	CapReached           bool
}

// BoardProcessor owns the pipeline for one board at a time. It holds no
// per-run state, so one instance may process several boards in parallel.
type BoardProcessor struct {
	client     model.BoardClient
	sink       model.Sink
	normalizer *normalize.Normalizer
	opts       Options
	logger     *slog.Logger
}

// New creates a processor wired with its collaborators.
func New(
	client model.BoardClient,
	sink model.Sink,
	normalizer *normalize.Normalizer,
	opts Options,
	logger *slog.Logger,
) *BoardProcessor {
	if opts.DetailConcurrency <= 0 {
		opts.DetailConcurrency = 1
	}
	return &BoardProcessor{
		client:     client,
		sink:       sink,
		normalizer: normalizer,
		opts:       opts,
		logger:     logger,
	}
}

// selected is a job that passed every filter, with the department it was
// listed under.
type selected struct {
	department string
	job        model.JobSummary
}

// Process fetches the board listing, selects jobs according to rc, fetches
// their details, and emits one record per selected job in listing order.
// A listing or sink failure is returned; detail failures are logged and the
// job is emitted from its summary.
func (p *BoardProcessor) Process(ctx context.Context, boardToken string, rc filter.RunConfig) (Report, error) {
	logger := p.logger.With("board", boardToken)
	report := Report{BoardToken: boardToken}

	departments, err := p.client.ListDepartments(ctx, boardToken)
	if err != nil {
		return report, fmt.Errorf("listing departments for %s: %w", boardToken, err)
	}
	report.Departments = len(departments)

	picks := p.selectJobs(departments, rc, &report, logger)
	report.Accepted = len(picks)

	details := p.fetchDetails(ctx, boardToken, picks, &report, logger)

	for i, s := range picks {
		rec := p.normalizer.Normalize(boardToken, s.department, s.job, details[i])
		if err := p.sink.Emit(ctx, rec); err != nil {
			return report, fmt.Errorf("emitting job %d for %s: %w", s.job.ID, boardToken, err)
		}
	}

	logger.Info("processed board",
		"departments", report.Departments,
		"departments_selected", report.DepartmentsSelected,
		"accepted", report.Accepted,
		"filtered_by_date", report.FilteredByDate,
		"filtered_by_department", report.FilteredByDepartment,
		"detail_failures", report.DetailFailures,
		"cap_reached", report.CapReached,
	)
	return report, nil
}

// selectJobs walks departments and jobs in listing order and stops as soon
// as the cap is reached, before any detail fetch is issued.
func (p *BoardProcessor) selectJobs(departments []model.Department, rc filter.RunConfig, report *Report, logger *slog.Logger) []selected {
	var picks []selected
	for _, dept := range departments {
		if !rc.IncludesDepartment(dept.ID) {
			report.FilteredByDepartment += len(dept.Jobs)
			continue
		}
		report.DepartmentsSelected++

		for _, job := range dept.Jobs {
			if !rc.IsRecent(job.UpdatedAt) {
				report.FilteredByDate++
				continue
			}
			picks = append(picks, selected{department: dept.Name, job: job})
			if rc.CapReached(len(picks)) {
				report.CapReached = true
				logger.Info("reached max_jobs limit", "max_jobs", rc.MaxJobs())
				return picks
			}
		}
	}
	return picks
}

// fetchDetails returns one detail per pick, index-aligned. A nil entry means
// the job is normalized from its summary alone.
func (p *BoardProcessor) fetchDetails(ctx context.Context, boardToken string, picks []selected, report *Report, logger *slog.Logger) []*model.JobDetail {
	details := make([]*model.JobDetail, len(picks))

	if p.opts.SkipDetails {
		for i, s := range picks {
			details[i] = s.job.InlineDetail()
		}
		return details
	}

	failed := make([]bool, len(picks))
	var g errgroup.Group
	g.SetLimit(p.opts.DetailConcurrency)
	for i, s := range picks {
		g.Go(func() error {
			detail, err := p.client.FetchJobDetail(ctx, boardToken, s.job.ID)
			if err != nil {
				logger.Warn("job detail fetch failed, using summary",
					"job_id", s.job.ID,
					"error", err,
				)
				failed[i] = true
				return nil
			}
			details[i] = detail
			return nil
		})
	}
	_ = g.Wait() // workers never return an error

	for _, f := range failed {
		if f {
			report.DetailFailures++
		}
	}
	return details
}
