package trend

import (
	"fmt"
	"math"
	"time"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
)

// AverageTrend joins a day-of-year baseline computed from historical data
// onto a present-period table. The output keeps every present row and gains
// a day_of_year column and the historical mean for that day, NaN where the
// history never covers the day.
type AverageTrend struct {
	DayOfYearColumn  string
	MeanValuesColumn string
}

// NewAverageTrend returns an AverageTrend with the standard column names.
func NewAverageTrend() AverageTrend {
	return AverageTrend{DayOfYearColumn: "day_of_year", MeanValuesColumn: "mean_value"}
}

// DayOfYearMeans averages historical values grouped by day of year (1..366).
func (a AverageTrend) DayOfYearMeans(historical *models.Table, dateCol, valueCol string) (map[int]float64, error) {
	dates, err := historical.Column(dateCol)
	if err != nil {
		return nil, err
	}
	values, err := historical.Column(valueCol)
	if err != nil {
		return nil, err
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for i := range dates {
		d, ok := dates[i].(time.Time)
		if !ok {
			return nil, fmt.Errorf("column %s row %d is not a date", dateCol, i)
		}
		v, ok := values[i].(float64)
		if !ok {
			return nil, fmt.Errorf("column %s row %d is not numeric", valueCol, i)
		}
		doy := d.YearDay()
		sums[doy] += v
		counts[doy]++
	}

	means := make(map[int]float64, len(sums))
	for doy, sum := range sums {
		means[doy] = sum / float64(counts[doy])
	}
	return means, nil
}

// Transform computes the day-of-year baseline from historical and left-joins
// it onto present. Fails with models.ErrColumnExists when present already
// carries one of the derived columns.
func (a AverageTrend) Transform(historical, present *models.Table, dateCol, valueCol string) (*models.Table, error) {
	means, err := a.DayOfYearMeans(historical, dateCol, valueCol)
	if err != nil {
		return nil, err
	}

	out := present.Copy()
	dates, err := out.Column(dateCol)
	if err != nil {
		return nil, err
	}

	doys := make([]any, len(dates))
	baseline := make([]any, len(dates))
	for i := range dates {
		d, ok := dates[i].(time.Time)
		if !ok {
			return nil, fmt.Errorf("column %s row %d is not a date", dateCol, i)
		}
		doy := d.YearDay()
		doys[i] = float64(doy)
		if m, ok := means[doy]; ok {
			baseline[i] = m
		} else {
			baseline[i] = math.NaN()
		}
	}

	if err := out.AddColumn(a.DayOfYearColumn, doys); err != nil {
		return nil, err
	}
	if err := out.AddColumn(a.MeanValuesColumn, baseline); err != nil {
		return nil, err
	}
	return out, nil
}
