package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
	drepo "github.com/wafa-bouzouita/water-tracker/internal/domain/repository"
	mid "github.com/wafa-bouzouita/water-tracker/internal/middleware"
	"github.com/wafa-bouzouita/water-tracker/pkg/logger"
)

// Ingester pulls station observations from the configured sources into the
// store, incrementally from the last stored date. It implements the station
// pipeline's processor.
type Ingester struct {
	sources  map[models.Indicator]drepo.SeriesSource
	stations map[models.Indicator]drepo.StationSource
	store    drepo.SeriesStore
	metrics  drepo.Metrics
	log      *logger.Logger

	departments []string
	startDate   time.Time

	pipe *mid.StationPipeline
}

// NewIngester creates an ingester. Sources and station sources are keyed by
// the indicator they serve.
func NewIngester(
	sources map[models.Indicator]drepo.SeriesSource,
	stations map[models.Indicator]drepo.StationSource,
	store drepo.SeriesStore,
	metrics drepo.Metrics,
	log *logger.Logger,
	departments []string,
	startDate time.Time,
) *Ingester {
	return &Ingester{
		sources:     sources,
		stations:    stations,
		store:       store,
		metrics:     metrics,
		log:         log,
		departments: departments,
		startDate:   startDate,
	}
}

// SetPipeline attaches the worker pipeline. Without one, Run processes
// stations inline.
func (i *Ingester) SetPipeline(p *mid.StationPipeline) { i.pipe = p }

// Run ingests every station of every configured department for an indicator.
func (i *Ingester) Run(ctx context.Context, indicator models.Indicator) error {
	src, ok := i.stations[indicator]
	if !ok {
		return fmt.Errorf("no station source for indicator %s", indicator)
	}

	total := 0
	for _, dept := range i.departments {
		stations, err := src.ListStations(ctx, indicator, dept)
		if err != nil {
			i.metrics.RecordError("list_stations")
			i.log.Error("ingest: list stations failed",
				logger.String("department", dept),
				logger.Error(err))
			continue
		}
		for _, st := range stations {
			total++
			if i.pipe != nil {
				if err := i.pipe.Submit(ctx, indicator, st.ID); err != nil {
					i.log.Warn("ingest: submit failed",
						logger.String("station", st.ID),
						logger.Error(err))
				}
				continue
			}
			if err := i.Process(ctx, indicator, st.ID); err != nil {
				i.log.Error("ingest: station failed",
					logger.String("station", st.ID),
					logger.Error(err))
			}
		}
	}

	i.log.Info("ingest: run dispatched",
		logger.String("indicator", string(indicator)),
		logger.Int("stations", total))
	return nil
}

// Process ingests one station, resuming after the last stored observation.
func (i *Ingester) Process(ctx context.Context, indicator models.Indicator, stationID string) error {
	src, ok := i.sources[indicator]
	if !ok {
		return fmt.Errorf("no series source for indicator %s", indicator)
	}

	start := time.Now()
	from := i.startDate
	if last, ok, err := i.store.LastDate(ctx, indicator, stationID); err != nil {
		return fmt.Errorf("last date: %w", err)
	} else if ok {
		from = last.AddDate(0, 0, 1)
	}
	to := time.Now().UTC()
	if !from.Before(to) {
		return nil
	}

	series, err := src.FetchSeries(ctx, indicator, stationID, from, to)
	if err != nil {
		i.metrics.RecordError("fetch_series")
		return fmt.Errorf("fetch %s: %w", stationID, err)
	}
	if len(series) == 0 {
		return nil
	}

	if err := i.store.SaveSeries(ctx, indicator, stationID, series); err != nil {
		i.metrics.RecordError("save_series")
		return fmt.Errorf("save %s: %w", stationID, err)
	}

	i.metrics.RecordSeriesIngested(src.Name(), string(indicator))
	i.metrics.RecordLatency("ingest_station", time.Since(start).Seconds())
	i.log.Debug("ingest: station stored",
		logger.String("station", stationID),
		logger.Int("points", len(series)))
	return nil
}
