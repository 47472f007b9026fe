package di

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
	drepo "github.com/wafa-bouzouita/water-tracker/internal/domain/repository"
	"github.com/wafa-bouzouita/water-tracker/internal/handler/api"
	mid "github.com/wafa-bouzouita/water-tracker/internal/middleware"
	internalrepo "github.com/wafa-bouzouita/water-tracker/internal/repository"
	icache "github.com/wafa-bouzouita/water-tracker/internal/service/cache"
	"github.com/wafa-bouzouita/water-tracker/internal/service/emi"
	"github.com/wafa-bouzouita/water-tracker/internal/service/hubeau"
	"github.com/wafa-bouzouita/water-tracker/internal/service/ratelimit"
	"github.com/wafa-bouzouita/water-tracker/internal/usecase"
	pkgcache "github.com/wafa-bouzouita/water-tracker/pkg/cache"
	pkgch "github.com/wafa-bouzouita/water-tracker/pkg/clickhouse"
	"github.com/wafa-bouzouita/water-tracker/pkg/config"
	"github.com/wafa-bouzouita/water-tracker/pkg/logger"
	"github.com/wafa-bouzouita/water-tracker/pkg/metrics"
	"github.com/wafa-bouzouita/water-tracker/pkg/queue"
	"github.com/wafa-bouzouita/water-tracker/pkg/server"
	"github.com/wafa-bouzouita/water-tracker/pkg/util"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" || cfg.Environment == "test" {
		level = "debug"
		format = "console"
	}
	return logger.New(&logger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideClock provides the wall clock.
func ProvideClock() clockwork.Clock {
	return clockwork.NewRealClock()
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideSeriesStore creates the ClickHouse series store and its schema.
func ProvideSeriesStore(chClient *pkgch.Client) (drepo.SeriesStore, error) {
	store := internalrepo.NewCHSeriesStore(chClient)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("series store schema: %w", err)
	}
	return store, nil
}

// ProvideCacheService builds the result cache: layered memory+redis when
// Redis is enabled, in-process otherwise.
func ProvideCacheService(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(rc), nil
}

// ProvideSeriesCache adapts the cache service to the domain cache.
func ProvideSeriesCache(svc pkgcache.Service) drepo.SeriesCache {
	return internalrepo.NewCachedSeries(svc)
}

// ProvideRedisClient creates the redis connection used by the job queue.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideLimiter creates the shared outbound rate limiter.
func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideStationListCache creates the cache for station listings: redis
// backed when Redis is enabled, in-process otherwise.
func ProvideStationListCache(cfg *config.Config) icache.BytesCache {
	if cfg.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideHubeauClient creates the Hub'Eau connector.
func ProvideHubeauClient(cfg *config.Config, limiter *ratelimit.Limiter, log *logger.Logger, listings icache.BytesCache) *hubeau.Client {
	c := hubeau.New(hubeau.Config{
		BaseURL:    cfg.Hubeau.BaseURL,
		Timeout:    cfg.Hubeau.Timeout,
		PageSize:   cfg.Hubeau.PageSize,
		MaxRPS:     cfg.Hubeau.MaxRPS,
		CacheTTL:   cfg.Hubeau.CacheTTL,
		RetryMax:   cfg.Hubeau.RetryMax,
		RetryDelay: cfg.Hubeau.RetryDelay,
		UserAgent:  cfg.Hubeau.UserAgent,
	}, limiter, log)
	c.SetStationCache(listings)
	return c
}

// ProvideEMIClient creates the EMI connector.
func ProvideEMIClient(cfg *config.Config, limiter *ratelimit.Limiter, log *logger.Logger, listings icache.BytesCache) *emi.Client {
	c := emi.New(emi.Config{
		BaseURL:  cfg.EMI.BaseURL,
		APIKey:   cfg.EMI.APIKey,
		Timeout:  cfg.EMI.Timeout,
		MaxRPS:   cfg.EMI.MaxRPS,
		CacheTTL: cfg.EMI.CacheTTL,
	}, limiter, log)
	c.SetStationCache(listings)
	return c
}

// ProvideSeriesSources maps indicators to the connector serving them:
// rainfall comes from EMI, groundwater levels from Hub'Eau, deep groundwater
// from EMI.
func ProvideSeriesSources(hb *hubeau.Client, em *emi.Client) map[models.Indicator]drepo.SeriesSource {
	return map[models.Indicator]drepo.SeriesSource{
		models.IndicatorRainfall:        em,
		models.IndicatorGroundwater:     hb,
		models.IndicatorGroundwaterDeep: em,
	}
}

// ProvideStationSources maps indicators to their station listing source.
func ProvideStationSources(hb *hubeau.Client, em *emi.Client) map[models.Indicator]drepo.StationSource {
	return map[models.Indicator]drepo.StationSource{
		models.IndicatorRainfall:        em,
		models.IndicatorGroundwater:     hb,
		models.IndicatorGroundwaterDeep: em,
	}
}

// ProvideIngester creates the ingest use case with its worker pipeline.
func ProvideIngester(
	sources map[models.Indicator]drepo.SeriesSource,
	stations map[models.Indicator]drepo.StationSource,
	store drepo.SeriesStore,
	m drepo.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) (*usecase.Ingester, error) {
	start, ok := util.ParseDate(cfg.Ingest.StartDate)
	if !ok {
		return nil, fmt.Errorf("invalid ingest start date %q", cfg.Ingest.StartDate)
	}
	return usecase.NewIngester(sources, stations, store, m, log, cfg.Hubeau.Departments, start), nil
}

// ProvideStationPipeline creates the bounded station worker pool and attaches
// it to the ingester.
func ProvideStationPipeline(ing *usecase.Ingester, m drepo.Metrics, cfg *config.Config) *mid.StationPipeline {
	pipe := mid.NewStationPipeline(ing, m,
		mid.WithWorkers(cfg.Ingest.Workers),
		mid.WithQueueSize(10000),
		mid.WithBlacklist(cfg.Ingest.BlacklistStations),
	)
	ing.SetPipeline(pipe)
	return pipe
}

// ProvideDroughtService creates the drought computation service.
func ProvideDroughtService(
	store drepo.SeriesStore,
	sc drepo.SeriesCache,
	m drepo.Metrics,
	log *logger.Logger,
	clock clockwork.Clock,
	cfg *config.Config,
) *usecase.DroughtService {
	return usecase.NewDroughtService(store, sc, m, log, clock, usecase.DroughtConfig{
		Frequency:       drepo.NormalizeFrequency(cfg.Drought.Frequency),
		Scale:           cfg.Drought.Scale,
		MinHistoryYears: cfg.Drought.MinHistoryYears,
		OutlierFactor:   cfg.Drought.OutlierFactor,
		MinFitPeriods:   cfg.Drought.MinFitPeriods,
		ResultTTL:       cfg.Drought.ResultTTL,
	})
}

// ProvideChronicleService creates the trend chronicle service.
func ProvideChronicleService(store drepo.SeriesStore, log *logger.Logger, clock clockwork.Clock, cfg *config.Config) *usecase.ChronicleService {
	return usecase.NewChronicleService(store, log, clock, usecase.TrendConfig{
		YearsNotInTrend:    cfg.Trend.YearsNotInTrend,
		MinTrendLengthYear: cfg.Trend.MinTrendLengthYear,
	})
}

// ProvideRedisQueue creates the job queue and registers its jobs. With Redis
// enabled, error logs are aggregated and flushed onto the queue as well.
func ProvideRedisQueue(
	log *logger.Logger,
	client *redis.Client,
	droughts *usecase.DroughtService,
	m drepo.Metrics,
	cfg *config.Config,
) *queue.RedisQueue {
	q := queue.NewRedisQueue(log, &queue.QueueConfig{
		Workers:    cfg.Ingest.Workers,
		RetryLimit: 3,
		RetryDelay: 30 * time.Second,
	}, client, queue.ModeProducerConsumer)
	q.RegisterJob(usecase.NewRecomputeJob(droughts, log))
	q.RegisterJob(usecase.NewErrorReportJob(m, log))

	if cfg.Redis.Enabled {
		log.AddCollector(&logger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          usecase.ErrorReportMessageType,
			Publisher:      q,
		})
	}
	return q
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(
	log *logger.Logger,
	droughts *usecase.DroughtService,
	chronicle *usecase.ChronicleService,
	ing *usecase.Ingester,
	q *queue.RedisQueue,
) *api.DroughtEchoHandler {
	return api.NewDroughtEchoHandler(log, droughts, chronicle, ing, q)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	handler *api.DroughtEchoHandler,
	pipe *mid.StationPipeline,
	q *queue.RedisQueue,
	chClient *pkgch.Client,
	store drepo.SeriesStore,
) *server.App {
	return server.New(cfg, log, handler, pipe, q, chClient, store)
}
