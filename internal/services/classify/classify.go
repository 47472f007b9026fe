package classify

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrNoThreshold is returned when a value falls in a gap between thresholds.
var ErrNoThreshold = errors.New("no threshold matches value")

// Threshold is one half-open bucket [Min, Max). A nil bound is unbounded on
// that side.
type Threshold struct {
	Name string
	Min  *float64
	Max  *float64
}

// Contains reports whether v falls inside [Min, Max).
func (t Threshold) Contains(v float64) bool {
	if t.Min != nil && v < *t.Min {
		return false
	}
	if t.Max != nil && v >= *t.Max {
		return false
	}
	return true
}

// Bound returns a pointer to v, for building threshold literals.
func Bound(v float64) *float64 { return &v }

// Scheme is an ordered list of thresholds. Classification walks the list in
// order and the first match wins, so overlapping thresholds resolve to the
// earlier one.
type Scheme struct {
	thresholds []Threshold
}

// NewScheme builds a scheme from thresholds, kept in the given order.
func NewScheme(thresholds ...Threshold) *Scheme {
	return &Scheme{thresholds: append([]Threshold(nil), thresholds...)}
}

// Thresholds returns the thresholds in classification order.
func (s *Scheme) Thresholds() []Threshold {
	return append([]Threshold(nil), s.thresholds...)
}

// Len returns the number of thresholds.
func (s *Scheme) Len() int { return len(s.thresholds) }

// Classify returns the name of the first threshold containing v.
func (s *Scheme) Classify(v float64) (string, error) {
	for _, t := range s.thresholds {
		if t.Contains(v) {
			return t.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %g", ErrNoThreshold, v)
}

// Index returns the position of the first threshold containing v. Positions
// are severity codes: lower positions mean lower values when the scheme is
// ordered ascending.
func (s *Scheme) Index(v float64) (int, error) {
	for i, t := range s.thresholds {
		if t.Contains(v) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %g", ErrNoThreshold, v)
}

// Name returns the threshold name at position i.
func (s *Scheme) Name(i int) (string, error) {
	if i < 0 || i >= len(s.thresholds) {
		return "", fmt.Errorf("threshold index %d out of range", i)
	}
	return s.thresholds[i].Name, nil
}

// Validate checks that an ascending scheme leaves no gaps: each threshold's
// Max must equal the next one's Min. NaN values never classify and are
// rejected up front.
func (s *Scheme) Validate() error {
	if len(s.thresholds) == 0 {
		return errors.New("scheme has no thresholds")
	}
	sorted := append([]Threshold(nil), s.thresholds...)
	sort.SliceStable(sorted, func(i, j int) bool {
		li, lj := math.Inf(-1), math.Inf(-1)
		if sorted[i].Min != nil {
			li = *sorted[i].Min
		}
		if sorted[j].Min != nil {
			lj = *sorted[j].Min
		}
		return li < lj
	})
	for i := 0; i < len(sorted)-1; i++ {
		if sorted[i].Max == nil {
			return fmt.Errorf("threshold %q is unbounded above but not last", sorted[i].Name)
		}
		if sorted[i+1].Min == nil {
			return fmt.Errorf("threshold %q is unbounded below but not first", sorted[i+1].Name)
		}
		if *sorted[i].Max != *sorted[i+1].Min {
			return fmt.Errorf("gap between %q and %q: %g != %g",
				sorted[i].Name, sorted[i+1].Name, *sorted[i].Max, *sorted[i+1].Min)
		}
	}
	return nil
}
