package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
	drepo "github.com/wafa-bouzouita/water-tracker/internal/domain/repository"
	"github.com/wafa-bouzouita/water-tracker/internal/services/classify"
	"github.com/wafa-bouzouita/water-tracker/internal/services/drought"
	"github.com/wafa-bouzouita/water-tracker/pkg/logger"
)

// DroughtConfig carries the computation parameters.
type DroughtConfig struct {
	Frequency       drepo.Frequency
	Scale           int
	MinHistoryYears int
	OutlierFactor   float64
	MinFitPeriods   int
	ResultTTL       time.Duration
}

// DroughtService computes standardized indexes and aggregates dryness levels
// over stations.
type DroughtService struct {
	store   drepo.SeriesStore
	cache   drepo.SeriesCache
	metrics drepo.Metrics
	log     *logger.Logger
	clock   clockwork.Clock
	cfg     DroughtConfig
	scheme  *classify.Scheme
}

// NewDroughtService creates the drought computation service.
func NewDroughtService(
	store drepo.SeriesStore,
	cache drepo.SeriesCache,
	metrics drepo.Metrics,
	log *logger.Logger,
	clock clockwork.Clock,
	cfg DroughtConfig,
) *DroughtService {
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = time.Hour
	}
	return &DroughtService{
		store:   store,
		cache:   cache,
		metrics: metrics,
		log:     log,
		clock:   clock,
		cfg:     cfg,
		scheme:  drought.DrynessScheme(),
	}
}

// ComputeStation runs the full pipeline for one station: load, history gate,
// outlier cleaning, standardized index, persistence. Stations whose record is
// shorter than MinHistoryYears are gated out.
func (s *DroughtService) ComputeStation(ctx context.Context, indicator models.Indicator, stationID string) (models.IndexSeries, error) {
	start := s.clock.Now()

	series, err := s.loadSeries(ctx, indicator, stationID)
	if err != nil {
		return nil, err
	}

	if span := series.SpanYears(); span < float64(s.cfg.MinHistoryYears) {
		s.metrics.RecordStationGated(string(indicator))
		return nil, fmt.Errorf("station %s: %.1f years of history, need %d: %w",
			stationID, span, s.cfg.MinHistoryYears, drought.ErrInsufficientHistory)
	}

	cleaned := drought.CleanSeries(series, s.cfg.OutlierFactor)
	idx, err := drought.ComputeIndex(cleaned, drought.Options{
		Frequency:     s.cfg.Frequency,
		Scale:         s.cfg.Scale,
		MinFitPeriods: s.cfg.MinFitPeriods,
	})
	if err != nil {
		s.metrics.RecordError("compute_index")
		return nil, fmt.Errorf("station %s: %w", stationID, err)
	}

	if err := s.store.SaveIndexPoints(ctx, indicator, stationID, idx); err != nil {
		s.metrics.RecordError("save_index")
		return nil, fmt.Errorf("save index %s: %w", stationID, err)
	}
	if err := s.cache.InvalidateCounts(ctx); err != nil {
		s.log.Warn("compute station: counts invalidation failed", logger.Error(err))
	}

	for j := len(idx) - 1; j >= 0; j-- {
		if !math.IsNaN(idx[j].Index) {
			s.metrics.RecordLastIndex(indicator.StandardizedIndexName(), stationID, idx[j].Index)
			break
		}
	}
	s.metrics.RecordLatency("compute_station", s.clock.Since(start).Seconds())
	return idx, nil
}

// StationIndex returns the stored index series of a station, computing it
// when nothing is stored yet.
func (s *DroughtService) StationIndex(ctx context.Context, indicator models.Indicator, stationID string) (models.IndexSeries, error) {
	idx, err := s.store.LoadIndexPoints(ctx, indicator, stationID, time.Time{}, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if len(idx) > 0 {
		return idx, nil
	}
	return s.ComputeStation(ctx, indicator, stationID)
}

// Counts aggregates stored index points of every station into per-bucket
// station counts by dryness level. Results are cached for ResultTTL.
func (s *DroughtService) Counts(ctx context.Context, indicator models.Indicator, kind drought.BucketKind, from, to time.Time) (models.LevelCounts, error) {
	key := fmt.Sprintf("%s:%s:%s:%s", indicator, kind, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if cached, ok := s.cache.LoadCounts(ctx, key); ok {
		return cached, nil
	}

	ids, err := s.store.StationIDs(ctx, indicator)
	if err != nil {
		return nil, fmt.Errorf("counts: %w", err)
	}

	var obs []models.LevelObservation
	for _, id := range ids {
		idx, err := s.store.LoadIndexPoints(ctx, indicator, id, from, to)
		if err != nil {
			s.metrics.RecordError("load_index")
			s.log.Warn("counts: load index failed",
				logger.String("station", id),
				logger.Error(err))
			continue
		}
		for _, p := range idx {
			if math.IsNaN(p.Index) {
				continue
			}
			level, err := s.scheme.Index(p.Index)
			if err != nil {
				s.metrics.RecordError("classify")
				continue
			}
			obs = append(obs, models.LevelObservation{Station: id, Date: p.Period, Level: level})
		}
	}

	counts := drought.CountLevels(obs, kind)
	if err := s.cache.SaveCounts(ctx, key, counts, s.cfg.ResultTTL); err != nil {
		s.log.Warn("counts: cache save failed", logger.Error(err))
	}
	return counts, nil
}

// Levels returns the dryness level names in scheme order, for clients
// rendering level codes.
func (s *DroughtService) Levels() []string {
	ths := s.scheme.Thresholds()
	names := make([]string, len(ths))
	for i, t := range ths {
		names[i] = t.Name
	}
	return names
}

// StationIDsFor lists the stations with stored observations for an indicator.
func (s *DroughtService) StationIDsFor(ctx context.Context, indicator models.Indicator) ([]string, error) {
	return s.store.StationIDs(ctx, indicator)
}

// MonthlyAverages returns the per-month mean standardized index of the
// trailing year for one station.
func (s *DroughtService) MonthlyAverages(ctx context.Context, indicator models.Indicator, stationID string) (map[time.Month]float64, error) {
	idx, err := s.StationIndex(ctx, indicator, stationID)
	if err != nil {
		return nil, err
	}
	return drought.MonthlyMeans(idx, s.clock.Now().UTC()), nil
}

func (s *DroughtService) loadSeries(ctx context.Context, indicator models.Indicator, stationID string) (models.Series, error) {
	key := fmt.Sprintf("%s:%s", indicator, stationID)
	if cached, ok := s.cache.LoadSeries(ctx, key); ok {
		return cached, nil
	}
	series, err := s.store.LoadSeries(ctx, indicator, stationID, time.Time{}, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("load series %s: %w", stationID, err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("station %s: no observations: %w", stationID, drought.ErrInsufficientHistory)
	}
	if err := s.cache.SaveSeries(ctx, key, series, s.cfg.ResultTTL); err != nil {
		s.log.Warn("load series: cache save failed", logger.Error(err))
	}
	return series, nil
}
