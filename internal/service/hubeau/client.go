package hubeau

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

const (
	// maxPages caps pagination so a bad next link cannot loop forever.
	maxPages = 200

	rateKey = "hubeau"
)

// Config holds Hub'Eau API settings.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	PageSize   int
	MaxRPS     float64
	CacheTTL   time.Duration
	RetryMax   int
	RetryDelay time.Duration
	UserAgent  string
}

// Client pulls groundwater observations from the Hub'Eau niveaux_nappes API.
// It implements SeriesSource and StationSource.
type Client struct {
	cfg      Config
	http     *phttp.Client
	limiter  *ratelimit.Limiter
	log      *logger.Logger
	stations cache.BytesCache
}

// New creates a Hub'Eau client.
func New(cfg Config, limiter *ratelimit.Limiter, log *logger.Logger) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 5000
	}
	if cfg.MaxRPS <= 0 {
		cfg.MaxRPS = 5
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
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
func (c *Client) Name() string { return "hubeau" }

type pagedResponse[T any] struct {
	Count int    `json:"count"`
	Next  string `json:"next"`
	Data  []T    `json:"data"`
}

type chronique struct {
	CodeBSS    string  `json:"code_bss"`
	DateMesure string  `json:"date_mesure"`
	Niveau     float64 `json:"niveau_nappe_eau"`
}

type stationRecord struct {
	CodeBSS         string `json:"code_bss"`
	Libelle         string `json:"libelle_pe"`
	CodeDepartement string `json:"code_departement"`
	NomCommune      string `json:"nom_commune"`
	DateDebutMesure string `json:"date_debut_mesure"`
	DateFinMesure   string `json:"date_fin_mesure"`
}

// FetchSeries pulls the piezometric chronicle of one station between from
// and to, following pagination until the API stops handing out next links.
func (c *Client) FetchSeries(ctx context.Context, indicator models.Indicator, stationID string, from, to time.Time) (models.Series, error) {
	if indicator == models.IndicatorRainfall {
		return nil, fmt.Errorf("hubeau: indicator %s not served", indicator)
	}

	u := fmt.Sprintf("%s/niveaux_nappes/chroniques", c.cfg.BaseURL)
	params := map[string][]string{
		"code_bss":          {stationID},
		"date_debut_mesure": {util.FormatDate(from)},
		"date_fin_mesure":   {util.FormatDate(to)},
		"size":              {fmt.Sprintf("%d", c.cfg.PageSize)},
		"sort":              {"asc"},
		"fields":            {"code_bss,date_mesure,niveau_nappe_eau"},
	}

	var out models.Series
	next := ""
	for page := 0; page < maxPages; page++ {
		var resp pagedResponse[chronique]
		if err := c.get(ctx, u, params, next, &resp); err != nil {
			return nil, fmt.Errorf("hubeau chroniques %s: %w", stationID, err)
		}
		for _, r := range resp.Data {
			d, ok := util.ParseDate(r.DateMesure)
			if !ok {
				c.log.Warn("hubeau: skip unparseable date",
					logger.String("station", stationID),
					logger.String("date", r.DateMesure))
				continue
			}
			out = append(out, models.Observation{Date: d, Value: r.Niveau})
		}
		if resp.Next == "" {
			break
		}
		next = resp.Next
	}

	c.log.Debug("hubeau: fetched series",
		logger.String("station", stationID),
		logger.Int("points", len(out)))
	return out.Sorted(), nil
}

// ListStations lists the piezometric stations of a department, caching the
// listing for CacheTTL.
func (c *Client) ListStations(ctx context.Context, indicator models.Indicator, department string) ([]models.Station, error) {
	cacheKey := "hubeau:stations:" + department
	if c.stations != nil {
		if b, ok, err := c.stations.GetBytes(cacheKey); err == nil && ok {
			var cached []models.Station
			if json.Unmarshal(b, &cached) == nil {
				return cached, nil
			}
		}
	}

	u := fmt.Sprintf("%s/niveaux_nappes/stations", c.cfg.BaseURL)
	params := map[string][]string{
		"code_departement": {department},
		"size":             {fmt.Sprintf("%d", c.cfg.PageSize)},
	}

	var out []models.Station
	next := ""
	for page := 0; page < maxPages; page++ {
		var resp pagedResponse[stationRecord]
		if err := c.get(ctx, u, params, next, &resp); err != nil {
			return nil, fmt.Errorf("hubeau stations dept %s: %w", department, err)
		}
		for _, r := range resp.Data {
			st := models.Station{
				ID:         r.CodeBSS,
				BSSCode:    r.CodeBSS,
				Name:       r.Libelle,
				Department: r.CodeDepartement,
				City:       r.NomCommune,
				Indicators: []models.Indicator{indicator},
			}
			if d, ok := util.ParseDate(r.DateDebutMesure); ok {
				st.MeasureStart = d
			}
			if d, ok := util.ParseDate(r.DateFinMesure); ok {
				st.MeasureEnd = d
			}
			out = append(out, st)
		}
		if resp.Next == "" {
			break
		}
		next = resp.Next
	}

	if c.stations != nil {
		if b, err := json.Marshal(out); err == nil {
			_ = c.stations.SetBytes(cacheKey, b, c.cfg.CacheTTL)
		}
	}
	return out, nil
}

// get performs one rate-limited request with retries. When the API returned a
// next link, the link replaces the base URL and query params.
func (c *Client) get(ctx context.Context, u string, params map[string][]string, next string, dest any) error {
	opts := &phttp.RequestOptions{
		Method:      phttp.MethodGet,
		URL:         u,
		QueryParams: params,
		Headers:     map[string]string{"User-Agent": c.cfg.UserAgent},
	}
	if next != "" {
		opts.URL = next
		opts.QueryParams = nil
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryMax; attempt++ {
		if err := c.waitForToken(ctx); err != nil {
			return err
		}
		if err := c.http.SendAndParse(ctx, opts, dest); err != nil {
			lastErr = err
			c.log.Warn("hubeau: request failed",
				logger.Int("attempt", attempt+1),
				logger.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
			continue
		}
		return nil
	}
	return lastErr
}

func (c *Client) waitForToken(ctx context.Context) error {
	for !c.limiter.Allow(rateKey, c.cfg.MaxRPS, c.cfg.MaxRPS) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}
