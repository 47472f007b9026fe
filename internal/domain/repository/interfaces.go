package repository

import (
	"context"
	"time"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
)

// SeriesSource pulls raw observation series from an external provider.
type SeriesSource interface {
	Name() string
	FetchSeries(ctx context.Context, indicator models.Indicator, stationID string, from, to time.Time) (models.Series, error)
}

// StationSource lists the stations a provider exposes for a department.
type StationSource interface {
	ListStations(ctx context.Context, indicator models.Indicator, department string) ([]models.Station, error)
}

// SeriesStore persists observation series and computed index series.
type SeriesStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	SaveSeries(ctx context.Context, indicator models.Indicator, stationID string, s models.Series) error
	LoadSeries(ctx context.Context, indicator models.Indicator, stationID string, from, to time.Time) (models.Series, error)
	LastDate(ctx context.Context, indicator models.Indicator, stationID string) (time.Time, bool, error)
	StationIDs(ctx context.Context, indicator models.Indicator) ([]string, error)
	SaveIndexPoints(ctx context.Context, indicator models.Indicator, stationID string, pts models.IndexSeries) error
	LoadIndexPoints(ctx context.Context, indicator models.Indicator, stationID string, from, to time.Time) (models.IndexSeries, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// SeriesCache keeps hot per-station series and computed results close to the
// request path.
type SeriesCache interface {
	LoadSeries(ctx context.Context, key string) (models.Series, bool)
	SaveSeries(ctx context.Context, key string, s models.Series, ttl time.Duration) error
	LoadCounts(ctx context.Context, key string) (models.LevelCounts, bool)
	SaveCounts(ctx context.Context, key string, c models.LevelCounts, ttl time.Duration) error
	InvalidateCounts(ctx context.Context) error
}

// Metrics is the observability surface of the ingest and compute paths.
type Metrics interface {
	RecordSeriesIngested(source, indicator string)
	RecordError(kind string)
	RecordLastIndex(indicator, station string, value float64)
	RecordLatency(op string, seconds float64)
	RecordStationGated(indicator string)
}
