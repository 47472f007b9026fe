package drought

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
)

func TestBucketKeys(t *testing.T) {
	d := day(2023, 4, 15)
	assert.Equal(t, "2023-04", BucketMonth.Key(d))
	assert.Equal(t, "04", BucketMonthOfYear.Key(d))
	assert.Equal(t, "105", BucketDayOfYear.Key(d))
}

func TestCountLevelsWorstLevelWinsPerBucket(t *testing.T) {
	obs := []models.LevelObservation{
		{Station: "s1", Date: day(2023, 4, 2), Level: 1},
		{Station: "s1", Date: day(2023, 4, 20), Level: 3},
		{Station: "s2", Date: day(2023, 4, 5), Level: 2},
		{Station: "s2", Date: day(2023, 5, 5), Level: 0},
	}

	counts := CountLevels(obs, BucketMonth)

	assert.Equal(t, models.LevelCounts{
		"2023-04": {3: 1, 2: 1},
		"2023-05": {0: 1},
	}, counts)
}

func TestCountLevelsDuplicatesCollapse(t *testing.T) {
	obs := []models.LevelObservation{
		{Station: "s1", Date: day(2023, 4, 2), Level: 2},
		{Station: "s1", Date: day(2023, 4, 2), Level: 2},
	}

	counts := CountLevels(obs, BucketMonth)

	assert.Equal(t, 1, counts["2023-04"][2])
}

func TestCountLevelsMonthOfYearSpansYears(t *testing.T) {
	obs := []models.LevelObservation{
		{Station: "s1", Date: day(2022, 4, 10), Level: 1},
		{Station: "s2", Date: day(2023, 4, 10), Level: 1},
	}

	counts := CountLevels(obs, BucketMonthOfYear)

	assert.Equal(t, 2, counts["04"][1])
}

func TestMonthlyMeansTrailingYear(t *testing.T) {
	now := day(2023, 6, 30)
	idx := models.IndexSeries{
		{Period: day(2023, 5, 1), Index: -2.0},
		{Period: day(2023, 5, 15), Index: -1.0},
		{Period: day(2023, 6, 1), Index: 0.5},
		{Period: day(2021, 5, 1), Index: 3.0},        // older than a year, ignored
		{Period: day(2023, 4, 1), Index: math.NaN()}, // warmup row, skipped
	}

	means := MonthlyMeans(idx, now)

	assert.InDelta(t, -1.5, means[time.May], 1e-9)
	assert.InDelta(t, 0.5, means[time.June], 1e-9)
	assert.NotContains(t, means, time.April)
	assert.NotContains(t, means, time.January)
}
