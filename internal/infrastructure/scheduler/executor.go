package scheduler

import (
	"context"
	"fmt"
	"time"

	reportapp "github.com/gym/backend/internal/application/report"
	"github.com/gym/backend/internal/domain/report"
	"go.uber.org/zap"
)

// ReportGenerator produces report files
type ReportGenerator interface {
	Generate(ctx context.Context, req reportapp.GenerateRequest) (*reportapp.GenerateResult, error)
	SuggestedFileName(t report.ReportType, productFilter string) string
}

// OutputStore places and expires generated files
type OutputStore interface {
	PathFor(name string) (string, error)
	Cleanup(ctx context.Context, now time.Time) (int, error)
}

// ReportExecutor runs report and cleanup jobs against the report service
type ReportExecutor struct {
	generator ReportGenerator
	outputs   OutputStore
	requester string
	archive   bool
	clock     func() time.Time
	logger    *zap.Logger
}

// ReportExecutorOption configures a ReportExecutor
type ReportExecutorOption func(*ReportExecutor)

// WithArchive uploads nightly reports when an archive is configured
func WithArchive(archive bool) ReportExecutorOption {
	return func(e *ReportExecutor) {
		e.archive = archive
	}
}

// WithClock overrides the time used for cleanup
func WithClock(clock func() time.Time) ReportExecutorOption {
	return func(e *ReportExecutor) {
		e.clock = clock
	}
}

// WithLogger sets the executor logger
func WithLogger(logger *zap.Logger) ReportExecutorOption {
	return func(e *ReportExecutor) {
		e.logger = logger
	}
}

// NewReportExecutor creates an executor that generates reports as requester
func NewReportExecutor(generator ReportGenerator, outputs OutputStore, requester string, opts ...ReportExecutorOption) *ReportExecutor {
	e := &ReportExecutor{
		generator: generator,
		outputs:   outputs,
		requester: requester,
		clock:     time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute implements JobExecutor
func (e *ReportExecutor) Execute(ctx context.Context, job *Job) error {
	switch job.Kind {
	case JobKindReport:
		return e.generate(ctx, job)
	case JobKindCleanup:
		removed, err := e.outputs.Cleanup(ctx, e.clock())
		if err != nil {
			return fmt.Errorf("cleanup generated reports: %w", err)
		}
		e.logger.Info("Expired reports removed", zap.Int("count", removed))
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownJobKind, job.Kind)
	}
}

func (e *ReportExecutor) generate(ctx context.Context, job *Job) error {
	path, err := e.outputs.PathFor(e.generator.SuggestedFileName(job.ReportType, report.AllProducts))
	if err != nil {
		return err
	}

	result, err := e.generator.Generate(ctx, reportapp.GenerateRequest{
		Type:          job.ReportType,
		Period:        job.Period,
		OutputPath:    path,
		Requester:     e.requester,
		ProductFilter: report.AllProducts,
		Archive:       e.archive,
	})
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		e.logger.Warn("Nightly report generated with missing section",
			zap.String("job_id", job.ID.String()),
			zap.String("entity", w.Entity),
			zap.String("message", w.Message),
		)
	}
	e.logger.Info("Nightly report generated",
		zap.String("job_id", job.ID.String()),
		zap.String("report_id", result.ReportID),
		zap.String("file", path),
		zap.Int("pages", result.Pages),
	)
	return nil
}
