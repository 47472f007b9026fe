package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
	drepo "github.com/wafa-bouzouita/water-tracker/internal/domain/repository"
	internalrepo "github.com/wafa-bouzouita/water-tracker/internal/repository"
	"github.com/wafa-bouzouita/water-tracker/internal/services/drought"
	pkgcache "github.com/wafa-bouzouita/water-tracker/pkg/cache"
	"github.com/wafa-bouzouita/water-tracker/pkg/logger"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return l
}

// fakeStore is an in-memory SeriesStore.
type fakeStore struct {
	series     map[string]models.Series
	index      map[string]models.IndexSeries
	loadCalls  int
	lastLoadTo time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		series: make(map[string]models.Series),
		index:  make(map[string]models.IndexSeries),
	}
}

func storeKey(ind models.Indicator, station string) string {
	return string(ind) + "/" + station
}

func (f *fakeStore) Init(context.Context) error { return nil }

func (f *fakeStore) SaveSeries(_ context.Context, ind models.Indicator, station string, s models.Series) error {
	f.series[storeKey(ind, station)] = append(f.series[storeKey(ind, station)], s...)
	return nil
}

func (f *fakeStore) LoadSeries(_ context.Context, ind models.Indicator, station string, _, to time.Time) (models.Series, error) {
	f.loadCalls++
	f.lastLoadTo = to
	return f.series[storeKey(ind, station)], nil
}

func (f *fakeStore) LastDate(_ context.Context, ind models.Indicator, station string) (time.Time, bool, error) {
	s := f.series[storeKey(ind, station)]
	if len(s) == 0 {
		return time.Time{}, false, nil
	}
	return s[len(s)-1].Date, true, nil
}

func (f *fakeStore) StationIDs(_ context.Context, ind models.Indicator) ([]string, error) {
	var ids []string
	prefix := string(ind) + "/"
	for k := range f.index {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			ids = append(ids, k[len(prefix):])
		}
	}
	return ids, nil
}

func (f *fakeStore) SaveIndexPoints(_ context.Context, ind models.Indicator, station string, pts models.IndexSeries) error {
	f.index[storeKey(ind, station)] = pts
	return nil
}

func (f *fakeStore) LoadIndexPoints(_ context.Context, ind models.Indicator, station string, _, _ time.Time) (models.IndexSeries, error) {
	return f.index[storeKey(ind, station)], nil
}

func (f *fakeStore) Health(context.Context) error { return nil }
func (f *fakeStore) Close() error                 { return nil }

// fakeMetrics records metric calls.
type fakeMetrics struct {
	gated    int
	errors   map[string]int
	ingested int
}

func newFakeMetrics() *fakeMetrics { return &fakeMetrics{errors: make(map[string]int)} }

func (m *fakeMetrics) RecordSeriesIngested(string, string)     { m.ingested++ }
func (m *fakeMetrics) RecordError(kind string)                 { m.errors[kind]++ }
func (m *fakeMetrics) RecordLastIndex(string, string, float64) {}
func (m *fakeMetrics) RecordLatency(string, float64)           {}
func (m *fakeMetrics) RecordStationGated(string)               { m.gated++ }

var _ drepo.Metrics = (*fakeMetrics)(nil)

func monthlyHistory(start time.Time, months int) models.Series {
	s := make(models.Series, months)
	for i := range s {
		s[i] = models.Observation{Date: start.AddDate(0, i, 0), Value: 10 + float64(i%13)}
	}
	return s
}

func newService(store *fakeStore, m *fakeMetrics, clock clockwork.Clock, t *testing.T) *DroughtService {
	cache := internalrepo.NewCachedSeries(pkgcache.NewMemoryCache())
	return NewDroughtService(store, cache, m, testLogger(t), clock, DroughtConfig{
		Frequency:       drepo.FreqMonthly,
		Scale:           3,
		MinHistoryYears: 15,
		OutlierFactor:   2.0,
		MinFitPeriods:   30,
		ResultTTL:       time.Hour,
	})
}

func TestComputeStationFullPipeline(t *testing.T) {
	store := newFakeStore()
	store.series[storeKey(models.IndicatorGroundwater, "BSS001")] = monthlyHistory(day(2000, 1, 1), 20*12)
	m := newFakeMetrics()
	clock := clockwork.NewFakeClockAt(day(2023, 6, 1))
	svc := newService(store, m, clock, t)

	idx, err := svc.ComputeStation(context.Background(), models.IndicatorGroundwater, "BSS001")
	require.NoError(t, err)
	assert.NotEmpty(t, idx)
	assert.NotEmpty(t, store.index[storeKey(models.IndicatorGroundwater, "BSS001")])
	assert.Zero(t, m.gated)
}

func TestComputeStationGatesShortHistory(t *testing.T) {
	store := newFakeStore()
	store.series[storeKey(models.IndicatorGroundwater, "BSS002")] = monthlyHistory(day(2018, 1, 1), 5*12)
	m := newFakeMetrics()
	svc := newService(store, m, clockwork.NewFakeClockAt(day(2023, 6, 1)), t)

	_, err := svc.ComputeStation(context.Background(), models.IndicatorGroundwater, "BSS002")
	assert.ErrorIs(t, err, drought.ErrInsufficientHistory)
	assert.Equal(t, 1, m.gated)
}

func TestCountsAggregatesAndCaches(t *testing.T) {
	store := newFakeStore()
	store.index[storeKey(models.IndicatorGroundwater, "s1")] = models.IndexSeries{
		{Period: day(2023, 4, 1), Index: -2.0}, // Très bas
		{Period: day(2023, 5, 1), Index: 0.0},  // Autour de la normale
	}
	store.index[storeKey(models.IndicatorGroundwater, "s2")] = models.IndexSeries{
		{Period: day(2023, 4, 1), Index: 1.5}, // Très haut
	}
	m := newFakeMetrics()
	svc := newService(store, m, clockwork.NewFakeClockAt(day(2023, 6, 1)), t)

	counts, err := svc.Counts(context.Background(), models.IndicatorGroundwater,
		drought.BucketMonth, day(2023, 1, 1), day(2023, 12, 31))
	require.NoError(t, err)

	assert.Equal(t, 1, counts["2023-04"][0])
	assert.Equal(t, 1, counts["2023-04"][6])
	assert.Equal(t, 1, counts["2023-05"][3])

	// Second call is served from cache: no further station loads.
	again, err := svc.Counts(context.Background(), models.IndicatorGroundwater,
		drought.BucketMonth, day(2023, 1, 1), day(2023, 12, 31))
	require.NoError(t, err)
	assert.Equal(t, counts, again)
}

func TestMonthlyAveragesUsesIndexValues(t *testing.T) {
	store := newFakeStore()
	// Raw observations around 50; the means endpoint must report the
	// standardized index, not these.
	store.series[storeKey(models.IndicatorRainfall, "s1")] = models.Series{
		{Date: day(2023, 3, 1), Value: 48},
		{Date: day(2023, 3, 15), Value: 52},
	}
	store.index[storeKey(models.IndicatorRainfall, "s1")] = models.IndexSeries{
		{Period: day(2023, 3, 1), Index: -2.0},
		{Period: day(2023, 3, 15), Index: -1.0},
		{Period: day(2020, 3, 15), Index: 3.0},
		{Period: day(2023, 2, 1), Index: math.NaN()},
	}
	m := newFakeMetrics()
	svc := newService(store, m, clockwork.NewFakeClockAt(day(2023, 6, 1)), t)

	means, err := svc.MonthlyAverages(context.Background(), models.IndicatorRainfall, "s1")
	require.NoError(t, err)
	assert.InDelta(t, -1.5, means[time.March], 1e-9)
	assert.Len(t, means, 1)
}

func TestLevelsOrder(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, newFakeMetrics(), clockwork.NewFakeClockAt(day(2023, 6, 1)), t)

	levels := svc.Levels()
	require.Len(t, levels, 7)
	assert.Equal(t, "Très bas", levels[0])
	assert.Equal(t, "Très haut", levels[6])
}
