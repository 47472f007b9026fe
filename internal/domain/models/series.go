package models

import (
	"sort"
	"time"
)

// Observation is a single (date, value) measurement for a station-indicator
// pair. Dates are calendar dates at midnight UTC.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is an ordered sequence of observations for one station. Pipeline
// stages never mutate a series in place; each stage returns a new one.
type Series []Observation

// Clone returns a copy of the series.
func (s Series) Clone() Series {
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// Sorted returns a copy ordered by ascending date.
func (s Series) Sorted() Series {
	out := s.Clone()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Values returns the value column.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, o := range s {
		out[i] = o.Value
	}
	return out
}

// Start returns the first observation date, or false for an empty series.
func (s Series) Start() (time.Time, bool) {
	if len(s) == 0 {
		return time.Time{}, false
	}
	return s[0].Date, true
}

// End returns the last observation date, or false for an empty series.
func (s Series) End() (time.Time, bool) {
	if len(s) == 0 {
		return time.Time{}, false
	}
	return s[len(s)-1].Date, true
}

// SpanYears returns the series time span in fractional years, 0 if the
// series has fewer than two observations.
func (s Series) SpanYears() float64 {
	if len(s) < 2 {
		return 0
	}
	return s[len(s)-1].Date.Sub(s[0].Date).Hours() / 24 / 365.25
}

// After returns the observations dated at or after cutoff.
func (s Series) After(cutoff time.Time) Series {
	out := make(Series, 0, len(s))
	for _, o := range s {
		if !o.Date.Before(cutoff) {
			out = append(out, o)
		}
	}
	return out
}

// Between returns the observations with from <= date <= to.
func (s Series) Between(from, to time.Time) Series {
	out := make(Series, 0, len(s))
	for _, o := range s {
		if !o.Date.Before(from) && !o.Date.After(to) {
			out = append(out, o)
		}
	}
	return out
}
