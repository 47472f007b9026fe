package util

import "time"

// DaysPerYear is the average length of a calendar year, leap years included.
// Year spans between measure dates are computed with this constant so that
// a span is not distorted by how many leap days it happens to contain.
const DaysPerYear = 365.25

// DateLayout is the calendar-date format used by the public hydrology APIs.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date (YYYY-MM-DD) in UTC.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders t as a calendar date (YYYY-MM-DD).
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// YearsBetween returns the span from start to end in fractional years.
// Negative when end precedes start.
func YearsBetween(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24 / DaysPerYear
}
