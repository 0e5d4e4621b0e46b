package report

import (
	"strings"
	"time"
)

// Period preset labels. These are the values the UI and the API accept.
const (
	PeriodLastWeek    = "Ostatni tydzień"
	PeriodLastMonth   = "Ostatni miesiąc"
	PeriodLastQuarter = "Ostatni kwartał"
	PeriodCurrentYear = "Bieżący rok"
	PeriodAllTime     = "Wszystkie"
	PeriodAsOfToday   = "Bieżący stan"
)

// DefaultPeriod is used when no token or an unknown token is supplied
const DefaultPeriod = PeriodLastMonth

// isoDateLayout is the layout of each half of a custom range token
const isoDateLayout = "2006-01-02"

// periodSeparator joins the two dates of a custom range token
const periodSeparator = ":"

// periodAliases maps ASCII aliases to preset labels for CLI and API callers
var periodAliases = map[string]string{
	"last-week":    PeriodLastWeek,
	"last-month":   PeriodLastMonth,
	"last-quarter": PeriodLastQuarter,
	"current-year": PeriodCurrentYear,
	"all-time":     PeriodAllTime,
	"as-of-today":  PeriodAsOfToday,
}

// epochStart is where the all-time preset begins
var epochStart = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// PeriodPreset describes one selectable preset
type PeriodPreset struct {
	Alias string `json:"alias"`
	Label string `json:"label"`
}

// PeriodPresets returns the presets in display order
func PeriodPresets() []PeriodPreset {
	return []PeriodPreset{
		{Alias: "last-week", Label: PeriodLastWeek},
		{Alias: "last-month", Label: PeriodLastMonth},
		{Alias: "last-quarter", Label: PeriodLastQuarter},
		{Alias: "current-year", Label: PeriodCurrentYear},
		{Alias: "all-time", Label: PeriodAllTime},
		{Alias: "as-of-today", Label: PeriodAsOfToday},
	}
}

// Period is a resolved, inclusive date range. Start and End are calendar
// dates at midnight UTC.
type Period struct {
	Token string    `json:"token"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NormalizePeriodToken maps an alias to its preset label and trims whitespace.
// Anything else is returned unchanged.
func NormalizePeriodToken(token string) string {
	token = strings.TrimSpace(token)
	if label, ok := periodAliases[token]; ok {
		return label
	}
	return token
}

// ResolvePeriod maps a period token to a concrete range anchored at today.
//
// A token containing ":" is first tried as "YYYY-MM-DD:YYYY-MM-DD". If that
// does not parse, resolution continues with the preset labels, so a malformed
// custom range silently ends up as the last-month default.
func ResolvePeriod(token string, today time.Time) Period {
	token = NormalizePeriodToken(token)
	if start, end, ok := parseCustomRange(token); ok {
		return Period{Token: token, Start: start, End: end}
	}

	end := truncateToDate(today)
	var start time.Time
	switch token {
	case PeriodLastWeek:
		start = end.AddDate(0, 0, -7)
	case PeriodLastMonth:
		start = minusMonths(end, 1)
	case PeriodLastQuarter:
		start = minusMonths(end, 3)
	case PeriodCurrentYear:
		start = time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case PeriodAllTime:
		start = epochStart
	case PeriodAsOfToday:
		start = end
	default:
		start = minusMonths(end, 1)
	}
	return Period{Token: token, Start: start, End: end}
}

// DescribePeriod returns the human readable period shown on the report.
// A malformed custom range is echoed back as-is.
func DescribePeriod(token string, today time.Time) string {
	token = NormalizePeriodToken(token)
	if strings.Contains(token, periodSeparator) {
		start, end, ok := parseCustomRange(token)
		if !ok {
			return token
		}
		return rangeDescription(start, end)
	}

	p := ResolvePeriod(token, today)
	if token == PeriodAsOfToday {
		return "Stan na dzień " + p.End.Format(DateLayout)
	}
	return rangeDescription(p.Start, p.End)
}

// Description is shorthand for DescribePeriod with the period's own token
func (p Period) Description(today time.Time) string {
	return DescribePeriod(p.Token, today)
}

// Contains reports whether t falls on a day inside the range
func (p Period) Contains(t time.Time) bool {
	d := truncateToDate(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// CustomPeriodToken validates an explicit pair of dates and encodes it as a
// range token. Both dates are required and start may not be after end.
func CustomPeriodToken(start, end *time.Time) (string, error) {
	if start == nil || end == nil || start.IsZero() || end.IsZero() {
		return "", NewValidationError(ErrCodeMissingDates, "Wybierz daty początkową i końcową", nil)
	}
	s, e := truncateToDate(*start), truncateToDate(*end)
	if s.After(e) {
		return "", NewValidationError(ErrCodeInvalidRange, "Data początkowa nie może być późniejsza niż końcowa", nil)
	}
	return s.Format(isoDateLayout) + periodSeparator + e.Format(isoDateLayout), nil
}

func parseCustomRange(token string) (time.Time, time.Time, bool) {
	if !strings.Contains(token, periodSeparator) {
		return time.Time{}, time.Time{}, false
	}
	parts := strings.Split(token, periodSeparator)
	if len(parts) < 2 {
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse(isoDateLayout, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(isoDateLayout, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func rangeDescription(start, end time.Time) string {
	return "Od " + start.Format(DateLayout) + " do " + end.Format(DateLayout)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// minusMonths subtracts calendar months, clamping to the last day of the
// target month (31 March minus one month is 28 or 29 February).
func minusMonths(t time.Time, months int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()-time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, time.UTC)
}
