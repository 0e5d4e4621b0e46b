package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gym/backend/internal/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeNightly struct {
	mu    sync.Mutex
	calls [][]NightlyReport
	err   error
}

func (f *fakeNightly) ScheduleNightly(reports []NightlyReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, reports)
	return f.err
}

func (f *fakeNightly) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestParseCronSchedule(t *testing.T) {
	tests := []struct {
		name         string
		cronExpr     string
		expectedHour int
		expectedMin  int
	}{
		{"Default 2am", "0 2 * * *", 2, 0},
		{"3:30am", "30 3 * * *", 3, 30},
		{"Midnight", "0 0 * * *", 0, 0},
		{"11pm", "0 23 * * *", 23, 0},
		{"Empty string defaults", "", 2, 0},
		{"Extra whitespace", "  15   4   *   *   *  ", 4, 15},
		{"Wildcard hour keeps default", "45 * * * *", 2, 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hour, minute, err := ParseCronSchedule(tt.cronExpr)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedHour, hour, "hour mismatch")
			assert.Equal(t, tt.expectedMin, minute, "minute mismatch")
		})
	}
}

func TestParseCronSchedule_Invalid(t *testing.T) {
	for _, expr := range []string{"60 2 * * *", "0 24 * * *", "a 2 * * *", "0 two * * *", "-1 2 * * *", "5"} {
		t.Run(expr, func(t *testing.T) {
			hour, minute, err := ParseCronSchedule(expr)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Equal(t, 2, hour)
			assert.Equal(t, 0, minute)
		})
	}
}

func TestCronTrigger_FiresOncePerDay(t *testing.T) {
	nightly := &fakeNightly{}
	reports := []NightlyReport{{Type: report.ReportTypeFinancial, Period: "last-month"}}
	c := NewCronTrigger(CronTriggerConfig{DailyHour: 2, DailyMinute: 30, Reports: reports}, nightly, zaptest.NewLogger(t))

	now := time.Date(2024, 2, 1, 2, 29, 0, 0, time.UTC)
	c.clock = func() time.Time { return now }

	assert.False(t, c.checkAndTrigger(), "too early")

	now = now.Add(time.Minute)
	assert.True(t, c.checkAndTrigger())
	assert.False(t, c.checkAndTrigger(), "same day")

	now = now.Add(24 * time.Hour)
	assert.True(t, c.checkAndTrigger())

	require.Equal(t, 2, nightly.count())
	assert.Equal(t, reports, nightly.calls[0])
}

func TestCronTrigger_ScheduleFailureStillMarksDay(t *testing.T) {
	nightly := &fakeNightly{err: errors.New("queue full")}
	c := NewCronTrigger(DefaultCronTriggerConfig(), nightly, zaptest.NewLogger(t))
	c.clock = func() time.Time { return time.Date(2024, 2, 1, 2, 0, 0, 0, time.UTC) }

	assert.True(t, c.checkAndTrigger())
	assert.False(t, c.checkAndTrigger())
	assert.Equal(t, 1, nightly.count())
}

func TestCronTrigger_StartStop(t *testing.T) {
	nightly := &fakeNightly{}
	c := NewCronTrigger(CronTriggerConfig{CheckInterval: 5 * time.Millisecond}, nightly, zaptest.NewLogger(t))
	c.clock = func() time.Time { return time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return nightly.count() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Stop(ctx))
	assert.NoError(t, c.Stop(ctx))
}
