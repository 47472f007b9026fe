package repository

import "time"

// Frequency represents the resampling resolution of index computations.
type Frequency string

const (
	FreqMonthly Frequency = "monthly"
	FreqDaily   Frequency = "daily"
)

// IsValidFrequency returns true if f is a supported frequency.
func IsValidFrequency(f Frequency) bool {
	switch f {
	case FreqMonthly, FreqDaily:
		return true
	default:
		return false
	}
}

// DefaultFrequency returns the default frequency.
func DefaultFrequency() Frequency { return FreqMonthly }

// NormalizeFrequency converts raw string to a valid frequency (or default).
func NormalizeFrequency(s string) Frequency {
	if s == "" {
		return DefaultFrequency()
	}
	f := Frequency(s)
	if IsValidFrequency(f) {
		return f
	}
	return DefaultFrequency()
}

// PeriodStart truncates t to the start of its period: the first of the month
// for monthly, midnight for daily. Always in UTC.
func (f Frequency) PeriodStart(t time.Time) time.Time {
	t = t.UTC()
	if f == FreqDaily {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextPeriod returns the start of the period following t's period.
func (f Frequency) NextPeriod(t time.Time) time.Time {
	start := f.PeriodStart(t)
	if f == FreqDaily {
		return start.AddDate(0, 0, 1)
	}
	return start.AddDate(0, 1, 0)
}

// PeriodsPerYear returns the number of periods in one year, used to convert
// history requirements expressed in years.
func (f Frequency) PeriodsPerYear() int {
	if f == FreqDaily {
		return 365
	}
	return 12
}
