package repository

import (
	"context"
	"time"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
	drepo "github.com/wafa-bouzouita/water-tracker/internal/domain/repository"
	"github.com/wafa-bouzouita/water-tracker/pkg/cache"
)

const (
	seriesKeyPrefix = "series"
	countsKeyPrefix = "counts"
)

// CachedSeries implements SeriesCache on a cache Service backend. Cache
// failures degrade to misses.
type CachedSeries struct {
	backend cache.Service
}

// NewCachedSeries creates a series cache over a cache service.
func NewCachedSeries(backend cache.Service) drepo.SeriesCache {
	return &CachedSeries{backend: backend}
}

func (c *CachedSeries) LoadSeries(ctx context.Context, key string) (models.Series, bool) {
	var s models.Series
	if err := c.backend.Get(ctx, cache.GenerateKey(seriesKeyPrefix, key), &s); err != nil {
		// backend trouble reads as a miss, same as ErrCacheMiss
		return nil, false
	}
	return s, true
}

func (c *CachedSeries) SaveSeries(ctx context.Context, key string, s models.Series, ttl time.Duration) error {
	return c.backend.Set(ctx, cache.GenerateKey(seriesKeyPrefix, key), s, ttl)
}

func (c *CachedSeries) LoadCounts(ctx context.Context, key string) (models.LevelCounts, bool) {
	var lc models.LevelCounts
	if err := c.backend.Get(ctx, cache.GenerateKey(countsKeyPrefix, key), &lc); err != nil {
		return nil, false
	}
	return lc, true
}

func (c *CachedSeries) SaveCounts(ctx context.Context, key string, lc models.LevelCounts, ttl time.Duration) error {
	return c.backend.Set(ctx, cache.GenerateKey(countsKeyPrefix, key), lc, ttl)
}

// InvalidateCounts drops every cached level-count aggregate. Called after a
// station's index is recomputed so stale aggregates don't outlive their TTL.
func (c *CachedSeries) InvalidateCounts(ctx context.Context) error {
	return c.backend.DeleteByPattern(ctx, cache.BuildPattern(countsKeyPrefix))
}
