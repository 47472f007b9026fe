package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
)

func dailyHistory(start time.Time, days int) models.Series {
	s := make(models.Series, days)
	for i := range s {
		s[i] = models.Observation{Date: start.AddDate(0, 0, i), Value: 5 + float64(i%10)}
	}
	return s
}

func TestChronicleShortHistoryReturnsEvaluationOnly(t *testing.T) {
	store := newFakeStore()
	store.series[storeKey(models.IndicatorGroundwater, "s1")] = models.Series{
		{Date: day(2022, 1, 1), Value: 1},
		{Date: day(2023, 1, 1), Value: 2},
	}
	svc := NewChronicleService(store, testLogger(t), clockwork.NewFakeClockAt(day(2023, 6, 1)), TrendConfig{YearsNotInTrend: 5, MinTrendLengthYear: 3})

	res, err := svc.Chronicle(context.Background(), models.IndicatorGroundwater, "s1")
	require.NoError(t, err)

	assert.False(t, res.Evaluation.HasEnoughData)
	assert.Equal(t, "Insuffisant", res.Evaluation.Reliability)
	assert.Empty(t, res.Rows)
}

func TestChronicleJoinsBaseline(t *testing.T) {
	store := newFakeStore()
	// 12 years of daily data: 5 held out, 7 of history.
	store.series[storeKey(models.IndicatorGroundwater, "s1")] = dailyHistory(day(2010, 1, 1), 12*365)
	svc := NewChronicleService(store, testLogger(t), clockwork.NewFakeClockAt(day(2023, 6, 1)), TrendConfig{YearsNotInTrend: 5, MinTrendLengthYear: 3})

	res, err := svc.Chronicle(context.Background(), models.IndicatorGroundwater, "s1")
	require.NoError(t, err)

	assert.True(t, res.Evaluation.HasEnoughData)
	assert.Equal(t, "Correct", res.Evaluation.Reliability)
	require.NotEmpty(t, res.Rows)

	row := res.Rows[0]
	assert.Contains(t, row, "date")
	assert.Contains(t, row, "value")
	assert.Contains(t, row, "day_of_year")
	assert.Contains(t, row, "mean_value")
}

func TestChronicleNoObservations(t *testing.T) {
	store := newFakeStore()
	svc := NewChronicleService(store, testLogger(t), clockwork.NewFakeClockAt(day(2023, 6, 1)), TrendConfig{YearsNotInTrend: 5, MinTrendLengthYear: 3})

	_, err := svc.Chronicle(context.Background(), models.IndicatorGroundwater, "missing")
	assert.Error(t, err)
}

func TestChronicleLoadsUpToClockNow(t *testing.T) {
	store := newFakeStore()
	store.series[storeKey(models.IndicatorGroundwater, "s1")] = models.Series{
		{Date: day(2022, 1, 1), Value: 1},
		{Date: day(2023, 1, 1), Value: 2},
	}
	now := day(2023, 6, 1)
	svc := NewChronicleService(store, testLogger(t), clockwork.NewFakeClockAt(now), TrendConfig{YearsNotInTrend: 5, MinTrendLengthYear: 3})

	_, err := svc.Chronicle(context.Background(), models.IndicatorGroundwater, "s1")
	require.NoError(t, err)
	assert.Equal(t, now, store.lastLoadTo)
}
