package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
	drepo "github.com/wafa-bouzouita/water-tracker/internal/domain/repository"
	"github.com/wafa-bouzouita/water-tracker/pkg/clickhouse"
)

const (
	observationsTable = "water_tracker.observations"
	indexPointsTable  = "water_tracker.index_points"
)

// schemaStatements create the database and tables (idempotent).
var schemaStatements = []string{
	`CREATE DATABASE IF NOT EXISTS water_tracker`,
	`CREATE TABLE IF NOT EXISTS ` + observationsTable + ` (
		indicator  LowCardinality(String),
		station_id String,
		date       Date,
		value      Float64
	) ENGINE = ReplacingMergeTree
	ORDER BY (indicator, station_id, date)`,
	`CREATE TABLE IF NOT EXISTS ` + indexPointsTable + ` (
		indicator  LowCardinality(String),
		station_id String,
		period      Date,
		aggregate   Nullable(Float64),
		index_value Nullable(Float64)
	) ENGINE = ReplacingMergeTree
	ORDER BY (indicator, station_id, period)`,
}

// CHSeriesStore implements SeriesStore on ClickHouse.
type CHSeriesStore struct {
	client *clickhouse.Client
	db     *sql.DB
}

// NewCHSeriesStore creates a ClickHouse-backed series store.
func NewCHSeriesStore(client *clickhouse.Client) drepo.SeriesStore {
	return &CHSeriesStore{client: client, db: client.DB()}
}

func (s *CHSeriesStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, schemaStatements)
}

func (s *CHSeriesStore) SaveSeries(ctx context.Context, indicator models.Indicator, stationID string, series models.Series) error {
	if len(series) == 0 {
		return nil
	}
	// Chunked multi-row VALUES insert to reduce round-trips.
	const chunkSize = 2000
	for start := 0; start < len(series); start += chunkSize {
		end := start + chunkSize
		if end > len(series) {
			end = len(series)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*4)
		for _, o := range series[start:end] {
			values = append(values, "(?, ?, ?, ?)")
			args = append(args, string(indicator), stationID, o.Date, o.Value)
		}
		q := fmt.Sprintf("INSERT INTO %s (indicator, station_id, date, value) VALUES %s",
			observationsTable, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("save series %s/%s: %w", indicator, stationID, err)
		}
	}
	return nil
}

func (s *CHSeriesStore) LoadSeries(ctx context.Context, indicator models.Indicator, stationID string, from, to time.Time) (models.Series, error) {
	q := fmt.Sprintf(`SELECT date, value FROM %s FINAL
		WHERE indicator = ? AND station_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`, observationsTable)
	rows, err := s.db.QueryContext(ctx, q, string(indicator), stationID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load series %s/%s: %w", indicator, stationID, err)
	}
	defer rows.Close()

	var out models.Series
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.Date, &o.Value); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *CHSeriesStore) LastDate(ctx context.Context, indicator models.Indicator, stationID string) (time.Time, bool, error) {
	q := fmt.Sprintf("SELECT max(date) FROM %s WHERE indicator = ? AND station_id = ?", observationsTable)
	var last time.Time
	err := s.db.QueryRowContext(ctx, q, string(indicator), stationID).Scan(&last)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last date %s/%s: %w", indicator, stationID, err)
	}
	// max() over an empty set yields the epoch zero date.
	if last.Year() <= 1970 {
		return time.Time{}, false, nil
	}
	return last, true, nil
}

func (s *CHSeriesStore) StationIDs(ctx context.Context, indicator models.Indicator) ([]string, error) {
	q := fmt.Sprintf("SELECT DISTINCT station_id FROM %s WHERE indicator = ? ORDER BY station_id", observationsTable)
	rows, err := s.db.QueryContext(ctx, q, string(indicator))
	if err != nil {
		return nil, fmt.Errorf("station ids %s: %w", indicator, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *CHSeriesStore) SaveIndexPoints(ctx context.Context, indicator models.Indicator, stationID string, pts models.IndexSeries) error {
	if len(pts) == 0 {
		return nil
	}
	values := make([]string, 0, len(pts))
	args := make([]interface{}, 0, len(pts)*5)
	for _, p := range pts {
		values = append(values, "(?, ?, ?, ?, ?)")
		args = append(args, string(indicator), stationID, p.Period, nullable(p.Aggregate), nullable(p.Index))
	}
	q := fmt.Sprintf("INSERT INTO %s (indicator, station_id, period, aggregate, index_value) VALUES %s",
		indexPointsTable, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("save index points %s/%s: %w", indicator, stationID, err)
	}
	return nil
}

func (s *CHSeriesStore) LoadIndexPoints(ctx context.Context, indicator models.Indicator, stationID string, from, to time.Time) (models.IndexSeries, error) {
	q := fmt.Sprintf(`SELECT period, aggregate, index_value FROM %s FINAL
		WHERE indicator = ? AND station_id = ? AND period >= ? AND period <= ?
		ORDER BY period ASC`, indexPointsTable)
	rows, err := s.db.QueryContext(ctx, q, string(indicator), stationID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load index points %s/%s: %w", indicator, stationID, err)
	}
	defer rows.Close()

	var out models.IndexSeries
	for rows.Next() {
		var p models.IndexPoint
		var agg, idx sql.NullFloat64
		if err := rows.Scan(&p.Period, &agg, &idx); err != nil {
			return nil, err
		}
		p.Aggregate = fromNullable(agg)
		p.Index = fromNullable(idx)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *CHSeriesStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *CHSeriesStore) Close() error {
	return nil // pool managed by pkg/clickhouse
}

// NaN aggregates are stored as NULL: ClickHouse Nullable(Float64) keeps the
// missing-window semantics queryable.
func nullable(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
