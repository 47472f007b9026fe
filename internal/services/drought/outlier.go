package drought

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
)

// minPointsForIQR is the smallest sample on which quartiles are meaningful.
const minPointsForIQR = 4

// CleanSeries normalizes a raw observation series before index computation:
// sorts by date, drops duplicate dates keeping the first occurrence, takes
// absolute values, then removes IQR outliers. Values outside
// [Q1 - factor*IQR, Q3 + factor*IQR] are dropped. Series with fewer than
// four points skip the IQR step entirely.
func CleanSeries(s models.Series, factor float64) models.Series {
	out := dedupe(s.Sorted())
	for i := range out {
		out[i].Value = math.Abs(out[i].Value)
	}
	if len(out) < minPointsForIQR {
		return out
	}

	vals := out.Values()
	sort.Float64s(vals)
	q1 := stat.Quantile(0.25, stat.Empirical, vals, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, vals, nil)
	iqr := q3 - q1
	lo := q1 - factor*iqr
	hi := q3 + factor*iqr

	kept := make(models.Series, 0, len(out))
	for _, o := range out {
		if o.Value < lo || o.Value > hi {
			continue
		}
		kept = append(kept, o)
	}
	return kept
}

// dedupe removes observations sharing a date with an earlier one. The input
// must be sorted by date; the sort above is stable so "first" means first in
// the original series.
func dedupe(s models.Series) models.Series {
	out := make(models.Series, 0, len(s))
	for _, o := range s {
		if n := len(out); n > 0 && out[n-1].Date.Equal(o.Date) {
			continue
		}
		out = append(out, o)
	}
	return out
}
