package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gym/backend/internal/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recordingExecutor fails the first failures calls, then succeeds
type recordingExecutor struct {
	mu       sync.Mutex
	kinds    []JobKind
	calls    atomic.Int32
	failures int32
	block    chan struct{}
}

func (e *recordingExecutor) Execute(ctx context.Context, job *Job) error {
	n := e.calls.Add(1)
	e.mu.Lock()
	e.kinds = append(e.kinds, job.Kind)
	e.mu.Unlock()
	if e.block != nil {
		select {
		case <-e.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if n <= e.failures {
		return errors.New("renderer unavailable")
	}
	return nil
}

func (e *recordingExecutor) recordedKinds() []JobKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]JobKind(nil), e.kinds...)
}

func TestNewReportJob(t *testing.T) {
	job := NewReportJob(report.ReportTypeFinancial, "last-month", 3)

	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.Equal(t, JobKindReport, job.Kind)
	assert.Equal(t, report.ReportTypeFinancial, job.ReportType)
	assert.Equal(t, "last-month", job.Period)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 3, job.MaxRetries)
	assert.Nil(t, job.StartedAt)
}

func TestJob_Lifecycle(t *testing.T) {
	job := NewReportJob(report.ReportTypeProducts, "", 1)
	job.Error = "previous error"

	job.Start()
	assert.Equal(t, JobStatusRunning, job.Status)
	assert.NotNil(t, job.StartedAt)
	assert.Empty(t, job.Error)

	job.Fail("boom")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "boom", job.Error)
	assert.True(t, job.ShouldRetry())

	job.ScheduleRetry()
	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, JobStatusPending, job.Status)

	job.Start()
	job.Fail("boom again")
	assert.False(t, job.ShouldRetry())

	cleanup := NewCleanupJob()
	cleanup.Start()
	cleanup.Fail("disk")
	assert.False(t, cleanup.ShouldRetry())
}

func TestParseNightlyReports(t *testing.T) {
	got, err := ParseNightlyReports([]string{
		"financial:last-month",
		" memberships : Ostatni tydzień ",
		"transactions:2024-01-01:2024-01-31",
		"products",
		"",
	})
	require.NoError(t, err)
	assert.Equal(t, []NightlyReport{
		{Type: report.ReportTypeFinancial, Period: "last-month"},
		{Type: report.ReportTypeMemberships, Period: "Ostatni tydzień"},
		{Type: report.ReportTypeTransactions, Period: "2024-01-01:2024-01-31"},
		{Type: report.ReportTypeProducts, Period: ""},
	}, got)

	_, err = ParseNightlyReports([]string{"sales:last-month"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestScheduler_SubmitRequiresRunning(t *testing.T) {
	s := NewScheduler(SchedulerConfig{}, &recordingExecutor{}, nil)

	assert.ErrorIs(t, s.SubmitJob(NewCleanupJob()), ErrSchedulerNotRunning)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	assert.ErrorIs(t, s.SubmitJob(NewCleanupJob()), ErrSchedulerNotRunning)
	// stopping twice is a no-op
	assert.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_QueueFull(t *testing.T) {
	exec := &recordingExecutor{block: make(chan struct{})}
	s := NewScheduler(SchedulerConfig{MaxConcurrentJobs: 1, QueueSize: 1}, exec, zaptest.NewLogger(t))
	require.NoError(t, s.Start(context.Background()))
	defer func() {
		close(exec.block)
		_ = s.Stop(context.Background())
	}()

	require.NoError(t, s.SubmitJob(NewCleanupJob()))
	require.Eventually(t, func() bool { return exec.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.SubmitJob(NewCleanupJob()))
	assert.ErrorIs(t, s.SubmitJob(NewCleanupJob()), ErrJobQueueFull)
}

func TestScheduler_ScheduleNightly(t *testing.T) {
	exec := &recordingExecutor{}
	s := NewScheduler(SchedulerConfig{MaxConcurrentJobs: 1}, exec, zaptest.NewLogger(t))
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	require.NoError(t, s.ScheduleNightly([]NightlyReport{
		{Type: report.ReportTypeFinancial, Period: "last-month"},
		{Type: report.ReportTypeMemberships, Period: "last-week"},
	}))

	require.Eventually(t, func() bool { return exec.calls.Load() == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []JobKind{JobKindCleanup, JobKindReport, JobKindReport}, exec.recordedKinds())
}

func TestScheduler_RetriesFailedReports(t *testing.T) {
	exec := &recordingExecutor{failures: 2}
	s := NewScheduler(SchedulerConfig{
		MaxConcurrentJobs: 1,
		RetryAttempts:     2,
		RetryDelay:        10 * time.Millisecond,
	}, exec, zaptest.NewLogger(t))
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	job := NewReportJob(report.ReportTypeFinancial, "last-month", 2)
	require.NoError(t, s.SubmitJob(job))

	require.Eventually(t, func() bool { return exec.calls.Load() == 3 }, 2*time.Second, 5*time.Millisecond)
	// no fourth attempt after success
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(3), exec.calls.Load())
}

func TestScheduler_GivesUpAfterMaxRetries(t *testing.T) {
	exec := &recordingExecutor{failures: 100}
	s := NewScheduler(SchedulerConfig{
		MaxConcurrentJobs: 1,
		RetryDelay:        5 * time.Millisecond,
	}, exec, zaptest.NewLogger(t))
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	require.NoError(t, s.SubmitJob(NewReportJob(report.ReportTypeProducts, "", 1)))

	require.Eventually(t, func() bool { return exec.calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), exec.calls.Load())
}

func TestScheduler_StopCancelsRunningJobs(t *testing.T) {
	exec := &recordingExecutor{block: make(chan struct{})}
	s := NewScheduler(SchedulerConfig{MaxConcurrentJobs: 1}, exec, zaptest.NewLogger(t))
	require.NoError(t, s.Start(context.Background()))

	require.NoError(t, s.SubmitJob(NewCleanupJob()))
	require.Eventually(t, func() bool { return exec.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

func TestScheduler_RestartAfterStop(t *testing.T) {
	exec := &recordingExecutor{}
	s := NewScheduler(SchedulerConfig{MaxConcurrentJobs: 1}, exec, zaptest.NewLogger(t))

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	require.NoError(t, s.SubmitJob(NewCleanupJob()))
	require.Eventually(t, func() bool { return exec.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}
