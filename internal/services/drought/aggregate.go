package drought

import (
	"fmt"
	"math"
	"time"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
)

// BucketKind selects how level observations are grouped in time.
type BucketKind string

const (
	BucketMonth       BucketKind = "month"         // calendar month with year, "2023-04"
	BucketMonthOfYear BucketKind = "month_of_year" // month across years, "04"
	BucketDayOfYear   BucketKind = "day_of_year"   // day across years, "123"
)

// IsValidBucketKind reports whether s names a supported grouping.
func IsValidBucketKind(s string) bool {
	switch BucketKind(s) {
	case BucketMonth, BucketMonthOfYear, BucketDayOfYear:
		return true
	default:
		return false
	}
}

// Key renders the bucket key for a date.
func (k BucketKind) Key(t time.Time) string {
	switch k {
	case BucketMonthOfYear:
		return fmt.Sprintf("%02d", int(t.Month()))
	case BucketDayOfYear:
		return fmt.Sprintf("%d", t.YearDay())
	default:
		return t.Format("2006-01")
	}
}

// CountLevels aggregates per-station level observations into per-bucket
// counts. A station observed several times in one bucket contributes once,
// at its worst (highest) level. Exact duplicate observations collapse first.
func CountLevels(obs []models.LevelObservation, kind BucketKind) models.LevelCounts {
	type slot struct {
		bucket  string
		station string
	}
	worst := make(map[slot]int)
	for _, o := range obs {
		s := slot{bucket: kind.Key(o.Date), station: o.Station}
		if cur, ok := worst[s]; !ok || o.Level > cur {
			worst[s] = o.Level
		}
	}

	counts := make(models.LevelCounts)
	for s, level := range worst {
		if counts[s.bucket] == nil {
			counts[s.bucket] = make(map[int]int)
		}
		counts[s.bucket][level]++
	}
	return counts
}

// MonthlyMeans averages the standardized index values of the twelve months
// preceding now, keyed by calendar month. NaN index rows and months without
// index points are absent.
func MonthlyMeans(idx models.IndexSeries, now time.Time) map[time.Month]float64 {
	from := now.AddDate(-1, 0, 0)
	sums := make(map[time.Month]float64)
	counts := make(map[time.Month]int)
	for _, p := range idx {
		if p.Period.Before(from) || p.Period.After(now) || math.IsNaN(p.Index) {
			continue
		}
		m := p.Period.Month()
		sums[m] += p.Index
		counts[m]++
	}
	out := make(map[time.Month]float64, len(sums))
	for m, sum := range sums {
		out[m] = sum / float64(counts[m])
	}
	return out
}
