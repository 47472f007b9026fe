package trend

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPropertiesEnoughData(t *testing.T) {
	p := NewProperties(day(2015, 1, 1), day(2020, 1, 1), 1, 1)

	assert.True(t, p.HasEnoughData())

	end, ok := p.TrendDataEnd()
	require.True(t, ok)
	assert.Equal(t, day(2019, 1, 1), end)

	start, ok := p.TrendDataStart()
	require.True(t, ok)
	assert.Equal(t, day(2015, 1, 1), start)

	assert.Equal(t, 4, p.NbYearsHistory())
}

func TestPropertiesShortWindow(t *testing.T) {
	p := NewProperties(day(2019, 1, 1), day(2020, 1, 1), 5, 3)

	assert.False(t, p.HasEnoughData())

	_, ok := p.TrendDataEnd()
	assert.False(t, ok)
	assert.Equal(t, 0, p.NbYearsHistory())
}

func TestEvaluateReliabilityLabels(t *testing.T) {
	cases := []struct {
		years int
		want  string
	}{
		{0, "Insuffisant"},
		{4, "Mauvais"},
		{7, "Correct"},
		{12, "Bon"},
		{20, "Très bon"},
		{30, "Excellent"},
	}
	scheme := ReliabilityScheme()
	for _, c := range cases {
		label, err := scheme.Classify(float64(c.years))
		require.NoError(t, err)
		assert.Equal(t, c.want, label, "years=%d", c.years)
	}
}

func TestEvaluate(t *testing.T) {
	p := NewProperties(day(2000, 1, 1), day(2020, 1, 1), 5, 3)

	ev, err := Evaluate(p, nil)
	require.NoError(t, err)

	assert.True(t, ev.HasEnoughData)
	assert.Equal(t, day(2015, 1, 1), ev.TrendDataEnd)
	assert.Equal(t, 15, ev.NbYearsHistory)
	assert.Equal(t, "Très bon", ev.Reliability)
}

func table(t *testing.T, rows ...models.Observation) *models.Table {
	t.Helper()
	tb := models.NewTable("date", "value")
	for _, r := range rows {
		require.NoError(t, tb.AppendRow(r.Date, r.Value))
	}
	return tb
}

func TestDayOfYearMeans(t *testing.T) {
	historical := table(t,
		models.Observation{Date: day(2020, 1, 1), Value: 1},
		models.Observation{Date: day(2021, 1, 1), Value: 2},
		models.Observation{Date: day(2020, 1, 2), Value: 3},
		models.Observation{Date: day(2021, 1, 4), Value: 6},
	)

	means, err := NewAverageTrend().DayOfYearMeans(historical, "date", "value")
	require.NoError(t, err)

	assert.InDelta(t, 1.5, means[1], 1e-9)
	assert.InDelta(t, 3.0, means[2], 1e-9)
	assert.InDelta(t, 6.0, means[4], 1e-9)
	assert.NotContains(t, means, 3)
}

func TestTransformJoinsBaseline(t *testing.T) {
	historical := table(t,
		models.Observation{Date: day(2020, 1, 1), Value: 1},
		models.Observation{Date: day(2021, 1, 1), Value: 2},
		models.Observation{Date: day(2020, 1, 2), Value: 3},
	)
	present := table(t,
		models.Observation{Date: day(2023, 1, 1), Value: 10},
		models.Observation{Date: day(2023, 1, 3), Value: 11},
	)

	out, err := NewAverageTrend().Transform(historical, present, "date", "value")
	require.NoError(t, err)

	// Present rows are preserved, with baseline joined by day of year.
	assert.Equal(t, 2, out.NumRows())
	assert.True(t, out.HasColumn("day_of_year"))
	assert.True(t, out.HasColumn("mean_value"))

	m, err := out.Value(0, "mean_value")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, m.(float64), 1e-9)

	// Day 3 never appears in history.
	m, err = out.Value(1, "mean_value")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(m.(float64)))

	// Input table is untouched.
	assert.False(t, present.HasColumn("mean_value"))
}

func TestTransformEmptyHistory(t *testing.T) {
	historical := models.NewTable("date", "value")
	present := table(t,
		models.Observation{Date: day(2023, 1, 1), Value: 10},
		models.Observation{Date: day(2023, 1, 2), Value: 11},
	)

	out, err := NewAverageTrend().Transform(historical, present, "date", "value")
	require.NoError(t, err)

	// Every present row survives; every baseline value is NaN.
	require.Equal(t, 2, out.NumRows())
	for i := 0; i < out.NumRows(); i++ {
		v, err := out.Value(i, "value")
		require.NoError(t, err)
		assert.Equal(t, 10+float64(i), v.(float64))

		m, err := out.Value(i, "mean_value")
		require.NoError(t, err)
		assert.True(t, math.IsNaN(m.(float64)))
	}
}

func TestTransformColumnCollision(t *testing.T) {
	historical := table(t,
		models.Observation{Date: day(2020, 1, 1), Value: 1},
	)
	present := models.NewTable("date", "value", "mean_value")
	require.NoError(t, present.AppendRow(day(2023, 1, 1), 10.0, 0.0))

	_, err := NewAverageTrend().Transform(historical, present, "date", "value")
	assert.ErrorIs(t, err, models.ErrColumnExists)
}
