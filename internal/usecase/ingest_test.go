package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
	drepo "github.com/wafa-bouzouita/water-tracker/internal/domain/repository"
)

// fakeSource serves canned observations and records the requested range.
type fakeSource struct {
	data     models.Series
	stations []models.Station
	lastFrom time.Time
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchSeries(_ context.Context, _ models.Indicator, _ string, from, to time.Time) (models.Series, error) {
	f.lastFrom = from
	return f.data.Between(from, to), nil
}

func (f *fakeSource) ListStations(_ context.Context, _ models.Indicator, _ string) ([]models.Station, error) {
	return f.stations, nil
}

func newTestIngester(src *fakeSource, store *fakeStore, m *fakeMetrics, t *testing.T) *Ingester {
	sources := map[models.Indicator]drepo.SeriesSource{models.IndicatorGroundwater: src}
	stations := map[models.Indicator]drepo.StationSource{models.IndicatorGroundwater: src}
	return NewIngester(sources, stations, store, m, testLogger(t), []string{"34"}, day(1970, 1, 1))
}

func TestProcessIngestsFromScratch(t *testing.T) {
	src := &fakeSource{data: models.Series{
		{Date: day(2023, 1, 1), Value: 1},
		{Date: day(2023, 1, 2), Value: 2},
	}}
	store := newFakeStore()
	m := newFakeMetrics()
	ing := newTestIngester(src, store, m, t)

	require.NoError(t, ing.Process(context.Background(), models.IndicatorGroundwater, "BSS001"))

	assert.Len(t, store.series[storeKey(models.IndicatorGroundwater, "BSS001")], 2)
	assert.Equal(t, day(1970, 1, 1), src.lastFrom)
	assert.Equal(t, 1, m.ingested)
}

func TestProcessResumesAfterLastDate(t *testing.T) {
	src := &fakeSource{data: models.Series{
		{Date: day(2023, 1, 31), Value: 1},
		{Date: day(2023, 2, 10), Value: 2},
	}}
	store := newFakeStore()
	store.series[storeKey(models.IndicatorGroundwater, "BSS001")] = models.Series{
		{Date: day(2023, 1, 31), Value: 1},
	}
	m := newFakeMetrics()
	ing := newTestIngester(src, store, m, t)

	require.NoError(t, ing.Process(context.Background(), models.IndicatorGroundwater, "BSS001"))

	// Resumes the day after the last stored observation.
	assert.Equal(t, day(2023, 2, 1), src.lastFrom)
	got := store.series[storeKey(models.IndicatorGroundwater, "BSS001")]
	require.Len(t, got, 2)
	assert.Equal(t, day(2023, 2, 10), got[1].Date)
}

func TestProcessNothingNewIsNoop(t *testing.T) {
	src := &fakeSource{}
	store := newFakeStore()
	m := newFakeMetrics()
	ing := newTestIngester(src, store, m, t)

	require.NoError(t, ing.Process(context.Background(), models.IndicatorGroundwater, "BSS001"))
	assert.Zero(t, m.ingested)
}

func TestRunProcessesListedStationsInline(t *testing.T) {
	src := &fakeSource{
		data: models.Series{{Date: day(2023, 1, 1), Value: 1}},
		stations: []models.Station{
			{ID: "BSS001"},
			{ID: "BSS002"},
		},
	}
	store := newFakeStore()
	m := newFakeMetrics()
	ing := newTestIngester(src, store, m, t)

	require.NoError(t, ing.Run(context.Background(), models.IndicatorGroundwater))

	assert.Len(t, store.series[storeKey(models.IndicatorGroundwater, "BSS001")], 1)
	assert.Len(t, store.series[storeKey(models.IndicatorGroundwater, "BSS002")], 1)
	assert.Equal(t, 2, m.ingested)
}

func TestRunUnknownIndicator(t *testing.T) {
	ing := newTestIngester(&fakeSource{}, newFakeStore(), newFakeMetrics(), t)
	err := ing.Run(context.Background(), models.IndicatorRainfall)
	assert.Error(t, err)
}
