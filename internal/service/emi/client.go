package emi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
	"github.com/wafa-bouzouita/water-tracker/internal/service/cache"
	"github.com/wafa-bouzouita/water-tracker/internal/service/ratelimit"
	phttp "github.com/wafa-bouzouita/water-tracker/pkg/http"
	"github.com/wafa-bouzouita/water-tracker/pkg/logger"
	"github.com/wafa-bouzouita/water-tracker/pkg/util"
)

const rateKey = "emi"

// Config holds EMI API settings.
type Config struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	MaxRPS   float64
	CacheTTL time.Duration
}

// Client pulls rainfall and groundwater observations from the EMI API. It
// implements SeriesSource and StationSource.
type Client struct {
	cfg      Config
	http     *phttp.Client
	limiter  *ratelimit.Limiter
	log      *logger.Logger
	stations cache.BytesCache
}

// New creates an EMI client.
func New(cfg Config, limiter *ratelimit.Limiter, log *logger.Logger) *Client {
	if cfg.MaxRPS <= 0 {
		cfg.MaxRPS = 2
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	return &Client{
		cfg:     cfg,
		http:    phttp.NewClient(phttp.WithTimeout(cfg.Timeout)),
		limiter: limiter,
		log:     log,
	}
}

// SetStationCache attaches a cache for station listings.
func (c *Client) SetStationCache(bc cache.BytesCache) { c.stations = bc }

// Name identifies the source in logs and metrics.
func (c *Client) Name() string { return "emi" }

// dataType maps an indicator to the EMI data type parameter.
func dataType(ind models.Indicator) string {
	switch ind {
	case models.IndicatorRainfall:
		return "rain_level"
	case models.IndicatorGroundwaterDeep:
		return "deep_water_level"
	default:
		return "water_level"
	}
}

type dataPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type dataResponse struct {
	Data []dataPoint `json:"data"`
}

type placeRecord struct {
	ID         string   `json:"id"`
	BSSCode    string   `json:"bss_code"`
	Name       string   `json:"name"`
	Department string   `json:"department"`
	City       string   `json:"city"`
	DataTypes  []string `json:"data_types"`
	FirstDate  string   `json:"first_date"`
	LastDate   string   `json:"last_date"`
}

type placesResponse struct {
	Data []placeRecord `json:"data"`
}

// FetchSeries pulls one station's observations for an indicator.
func (c *Client) FetchSeries(ctx context.Context, indicator models.Indicator, stationID string, from, to time.Time) (models.Series, error) {
	var resp dataResponse
	err := c.get(ctx, fmt.Sprintf("%s/data", c.cfg.BaseURL), map[string][]string{
		"station_id": {stationID},
		"data_type":  {dataType(indicator)},
		"from":       {util.FormatDate(from)},
		"to":         {util.FormatDate(to)},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("emi data %s: %w", stationID, err)
	}

	out := make(models.Series, 0, len(resp.Data))
	for _, p := range resp.Data {
		d, ok := util.ParseDate(p.Date)
		if !ok {
			c.log.Warn("emi: skip unparseable date",
				logger.String("station", stationID),
				logger.String("date", p.Date))
			continue
		}
		out = append(out, models.Observation{Date: d, Value: p.Value})
	}

	c.log.Debug("emi: fetched series",
		logger.String("station", stationID),
		logger.String("type", dataType(indicator)),
		logger.Int("points", len(out)))
	return out.Sorted(), nil
}

// ListStations lists the stations of a department serving an indicator,
// caching the listing for CacheTTL.
func (c *Client) ListStations(ctx context.Context, indicator models.Indicator, department string) ([]models.Station, error) {
	cacheKey := fmt.Sprintf("emi:stations:%s:%s", department, dataType(indicator))
	if c.stations != nil {
		if b, ok, err := c.stations.GetBytes(cacheKey); err == nil && ok {
			var cached []models.Station
			if json.Unmarshal(b, &cached) == nil {
				return cached, nil
			}
		}
	}

	var resp placesResponse
	err := c.get(ctx, fmt.Sprintf("%s/places", c.cfg.BaseURL), map[string][]string{
		"department": {department},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("emi places dept %s: %w", department, err)
	}

	want := dataType(indicator)
	var out []models.Station
	for _, p := range resp.Data {
		serves := false
		for _, dt := range p.DataTypes {
			if dt == want {
				serves = true
				break
			}
		}
		if !serves {
			continue
		}
		st := models.Station{
			ID:         p.ID,
			BSSCode:    p.BSSCode,
			Name:       p.Name,
			Department: p.Department,
			City:       p.City,
			Indicators: []models.Indicator{indicator},
		}
		if d, ok := util.ParseDate(p.FirstDate); ok {
			st.MeasureStart = d
		}
		if d, ok := util.ParseDate(p.LastDate); ok {
			st.MeasureEnd = d
		}
		out = append(out, st)
	}

	if c.stations != nil {
		if b, err := json.Marshal(out); err == nil {
			_ = c.stations.SetBytes(cacheKey, b, c.cfg.CacheTTL)
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, u string, params map[string][]string, dest any) error {
	if err := c.waitForToken(ctx); err != nil {
		return err
	}
	return c.http.SendAndParse(ctx, &phttp.RequestOptions{
		Method:      phttp.MethodGet,
		URL:         u,
		QueryParams: params,
		Headers: map[string]string{
			"Authorization": "Bearer " + c.cfg.APIKey,
		},
	}, dest)
}

func (c *Client) waitForToken(ctx context.Context) error {
	for !c.limiter.Allow(rateKey, c.cfg.MaxRPS, c.cfg.MaxRPS) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return nil
}
