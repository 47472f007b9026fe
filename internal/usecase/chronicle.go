package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
	drepo "github.com/wafa-bouzouita/water-tracker/internal/domain/repository"
	"github.com/wafa-bouzouita/water-tracker/internal/services/trend"
	"github.com/wafa-bouzouita/water-tracker/pkg/logger"
)

// TrendConfig carries the chronicle parameters.
type TrendConfig struct {
	YearsNotInTrend    int
	MinTrendLengthYear int
}

// ChronicleResult is the trend comparison for one station: the reliability
// evaluation plus, when there is enough history, the present period joined
// with its day-of-year historical baseline.
type ChronicleResult struct {
	Station    string           `json:"station"`
	Indicator  models.Indicator `json:"indicator"`
	Evaluation trend.Evaluation `json:"evaluation"`
	Rows       []map[string]any `json:"rows,omitempty"`
}

// ChronicleService compares a station's recent observations against its
// historical day-of-year baseline.
type ChronicleService struct {
	store drepo.SeriesStore
	log   *logger.Logger
	clock clockwork.Clock
	cfg   TrendConfig
}

// NewChronicleService creates the chronicle service.
func NewChronicleService(store drepo.SeriesStore, log *logger.Logger, clock clockwork.Clock, cfg TrendConfig) *ChronicleService {
	return &ChronicleService{store: store, log: log, clock: clock, cfg: cfg}
}

// Chronicle builds the trend comparison for one station. Stations without
// enough history get an evaluation and no rows.
func (s *ChronicleService) Chronicle(ctx context.Context, indicator models.Indicator, stationID string) (*ChronicleResult, error) {
	series, err := s.store.LoadSeries(ctx, indicator, stationID, time.Time{}, s.clock.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("chronicle %s: %w", stationID, err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("chronicle %s: no observations", stationID)
	}

	series = series.Sorted()
	start, _ := series.Start()
	end, _ := series.End()

	props := trend.NewProperties(start, end, s.cfg.YearsNotInTrend, s.cfg.MinTrendLengthYear)
	ev, err := trend.Evaluate(props, nil)
	if err != nil {
		return nil, fmt.Errorf("chronicle %s: %w", stationID, err)
	}

	result := &ChronicleResult{Station: stationID, Indicator: indicator, Evaluation: ev}
	if !ev.HasEnoughData {
		s.log.Debug("chronicle: not enough history",
			logger.String("station", stationID),
			logger.Int("years", ev.NbYearsHistory))
		return result, nil
	}

	cutoff, _ := props.TrendDataEnd()
	historical := toTable(series.Between(start, cutoff))
	present := toTable(series.After(cutoff))

	joined, err := trend.NewAverageTrend().Transform(historical, present, "date", "value")
	if err != nil {
		return nil, fmt.Errorf("chronicle %s: %w", stationID, err)
	}
	result.Rows = joined.Records()
	return result, nil
}

func toTable(s models.Series) *models.Table {
	t := models.NewTable("date", "value")
	for _, o := range s {
		// two columns, always matches
		_ = t.AppendRow(o.Date, o.Value)
	}
	return t
}
