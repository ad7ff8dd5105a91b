package parse

import (
	"strconv"
	"strings"
	"time"
)

// Recognized date-bucket selectors.
const (
	DateTypeCurrent = "current"
	DateTypeDaily   = "daily"
	DateTypeWeekly  = "weekly"
	DateTypeMonthly = "monthly"
)

// Range is an inclusive time interval used as a trip start-time predicate.
type Range struct {
	Start time.Time
	End   time.Time
}

// DateRange converts a date-bucket selector into a start-time predicate.
// It returns ok=false for "current" and for any malformed or missing
// input: the search then runs unscoped instead of failing.
//
//	daily   "2006-01-02"      -> [00:00:00.000, 23:59:59.999] of that day
//	weekly  "2006-01 Week N"  -> days (N-1)*7+1 through N*7 of that month
//	monthly "2006-01"         -> first through last calendar day
//
// Weekly day arithmetic is not clamped: out-of-range day numbers roll into
// the neighboring month via time.Date normalization, matching the
// historical behavior of the search UI.
func DateRange(dateType, dateValue string) (Range, bool) {
	switch dateType {
	case DateTypeDaily:
		day, err := time.Parse("2006-01-02", dateValue)
		if err != nil {
			return Range{}, false
		}
		return dayRange(day.Year(), day.Month(), day.Day(), day.Day()), true

	case DateTypeWeekly:
		month, week, ok := parseWeekValue(dateValue)
		if !ok {
			return Range{}, false
		}
		startDay := (week-1)*7 + 1
		endDay := week * 7
		return dayRange(month.Year(), month.Month(), startDay, endDay), true

	case DateTypeMonthly:
		month, err := time.Parse("2006-01", dateValue)
		if err != nil {
			return Range{}, false
		}
		// Day 0 of the next month is the last day of this one.
		last := time.Date(month.Year(), month.Month()+1, 0, 0, 0, 0, 0, time.UTC)
		return dayRange(month.Year(), month.Month(), 1, last.Day()), true

	default:
		// "current" and anything unrecognized carry no predicate.
		return Range{}, false
	}
}

// parseWeekValue splits a "YYYY-MM Week N" selector.
func parseWeekValue(v string) (time.Time, int, bool) {
	parts := strings.SplitN(v, " Week ", 2)
	if len(parts) != 2 {
		return time.Time{}, 0, false
	}
	month, err := time.Parse("2006-01", strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, 0, false
	}
	week, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, 0, false
	}
	return month, week, true
}

// dayRange builds [startDay 00:00:00.000, endDay 23:59:59.999] within the
// given month. Day numbers outside the month roll over.
func dayRange(year int, month time.Month, startDay, endDay int) Range {
	return Range{
		Start: time.Date(year, month, startDay, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, month, endDay, 23, 59, 59, int(999*time.Millisecond), time.UTC),
	}
}
