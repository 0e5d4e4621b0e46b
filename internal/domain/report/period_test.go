package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var testToday = time.Date(2024, time.March, 31, 14, 25, 0, 0, time.UTC)

func TestResolvePeriod_Presets(t *testing.T) {
	tests := []struct {
		token string
		start time.Time
	}{
		{PeriodLastWeek, date(2024, time.March, 24)},
		{PeriodLastMonth, date(2024, time.February, 29)},
		{PeriodLastQuarter, date(2023, time.December, 31)},
		{PeriodCurrentYear, date(2024, time.January, 1)},
		{PeriodAllTime, date(2000, time.January, 1)},
		{PeriodAsOfToday, date(2024, time.March, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			p := ResolvePeriod(tt.token, testToday)
			assert.Equal(t, tt.start, p.Start)
			assert.Equal(t, date(2024, time.March, 31), p.End)
			assert.False(t, p.Start.After(p.End))
		})
	}
}

func TestResolvePeriod_AllPresetsEndToday(t *testing.T) {
	for _, preset := range PeriodPresets() {
		p := ResolvePeriod(preset.Label, testToday)
		assert.Equal(t, date(2024, time.March, 31), p.End, preset.Label)
		assert.False(t, p.Start.After(p.End), preset.Label)
	}

	p := ResolvePeriod(PeriodAsOfToday, testToday)
	assert.Equal(t, p.Start, p.End)
}

func TestResolvePeriod_Aliases(t *testing.T) {
	for _, preset := range PeriodPresets() {
		t.Run(preset.Alias, func(t *testing.T) {
			assert.Equal(t, ResolvePeriod(preset.Label, testToday), ResolvePeriod(preset.Alias, testToday))
		})
	}
}

func TestResolvePeriod_CustomRange(t *testing.T) {
	p := ResolvePeriod("2024-01-01:2024-01-31", testToday)
	assert.Equal(t, date(2024, time.January, 1), p.Start)
	assert.Equal(t, date(2024, time.January, 31), p.End)
	assert.Equal(t, "2024-01-01:2024-01-31", p.Token)
}

func TestResolvePeriod_FallsBackToLastMonth(t *testing.T) {
	lastMonth := ResolvePeriod(PeriodLastMonth, testToday)

	tests := []struct {
		name  string
		token string
	}{
		{"malformed custom range", "2024-13-01:x"},
		{"missing second date", "2024-01-01:"},
		{"unknown label", "Ostatnie stulecie"},
		{"empty token", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ResolvePeriod(tt.token, testToday)
			assert.Equal(t, lastMonth.Start, p.Start)
			assert.Equal(t, lastMonth.End, p.End)
		})
	}
}

func TestDescribePeriod(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{"preset range", PeriodLastWeek, "Od 24.03.2024 do 31.03.2024"},
		{"as of today", PeriodAsOfToday, "Stan na dzień 31.03.2024"},
		{"custom range", "2024-01-01:2024-01-31", "Od 01.01.2024 do 31.01.2024"},
		{"malformed custom range echoed", "2024-13-01:x", "2024-13-01:x"},
		{"unknown label uses default range", "nieznany", "Od 29.02.2024 do 31.03.2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DescribePeriod(tt.token, testToday))
		})
	}
}

func TestPeriod_Contains(t *testing.T) {
	p := ResolvePeriod("2024-01-01:2024-01-31", testToday)

	assert.True(t, p.Contains(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.Contains(time.Date(2024, time.January, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2023, time.December, 31, 12, 0, 0, 0, time.UTC)))
}

func TestCustomPeriodToken(t *testing.T) {
	start := date(2024, time.January, 1)
	end := date(2024, time.January, 31)

	t.Run("valid pair", func(t *testing.T) {
		token, err := CustomPeriodToken(&start, &end)
		require.NoError(t, err)
		assert.Equal(t, "2024-01-01:2024-01-31", token)
	})

	t.Run("same day", func(t *testing.T) {
		token, err := CustomPeriodToken(&start, &start)
		require.NoError(t, err)
		assert.Equal(t, "2024-01-01:2024-01-01", token)
	})

	t.Run("missing date", func(t *testing.T) {
		_, err := CustomPeriodToken(&start, nil)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, ErrCodeMissingDates, verr.Code)
		assert.Equal(t, "Wybierz daty początkową i końcową", verr.Message)
	})

	t.Run("start after end", func(t *testing.T) {
		_, err := CustomPeriodToken(&end, &start)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, ErrCodeInvalidRange, verr.Code)
	})
}

func TestMinusMonths(t *testing.T) {
	assert.Equal(t, date(2023, time.February, 28), minusMonths(date(2023, time.March, 31), 1))
	assert.Equal(t, date(2023, time.December, 15), minusMonths(date(2024, time.January, 15), 1))
	assert.Equal(t, date(2024, time.April, 30), minusMonths(date(2024, time.May, 31), 1))
}
