package payroll

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// CALENDAR - Month and financial-year arithmetic (UTC, day granularity)
// =============================================================================

// Date normalizes t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func StartOfMonth(year int, month time.Month) time.Time { return NewDate(year, month, 1) }

func EndOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

// DaysInMonth returns the Gregorian day count of the month. Invalid months
// yield 0.
func DaysInMonth(year int, month time.Month) int {
	if month < time.January || month > time.December {
		return 0
	}
	return EndOfMonth(year, month).Day()
}

// Period is an inclusive date range.
type Period struct {
	Start time.Time
	End   time.Time
}

func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// Contains returns true if t falls within [Start, End] at day granularity.
func (p Period) Contains(t time.Time) bool {
	d := Date(t)
	return !d.Before(Date(p.Start)) && !d.After(Date(p.End))
}

func (p Period) String() string {
	return "[" + p.Start.Format("2006-01-02") + ", " + p.End.Format("2006-01-02") + "]"
}

// FinancialYearStart is the first month of the April-March financial year.
const FinancialYearStart = time.April

// FinancialYearFor returns the financial-year label ("2024-2025") that the
// payroll month belongs to.
func FinancialYearFor(year int, month time.Month) string {
	start := year
	if month < FinancialYearStart {
		start--
	}
	return fmt.Sprintf("%d-%d", start, start+1)
}

// ParseFinancialYear returns the starting year of a "2024-2025" label. Labels
// in any other shape, such as "2024-25", are rejected.
func ParseFinancialYear(label string) (int, bool) {
	first, second, ok := strings.Cut(label, "-")
	if !ok || !fourDigits(first) || !fourDigits(second) {
		return 0, false
	}
	start, _ := strconv.Atoi(first)
	end, _ := strconv.Atoi(second)
	if end != start+1 {
		return 0, false
	}
	return start, true
}

func fourDigits(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidPeriod reports whether (year, month) names a real calendar month.
func ValidPeriod(year int, month time.Month) bool {
	return year >= 1 && month >= time.January && month <= time.December
}
