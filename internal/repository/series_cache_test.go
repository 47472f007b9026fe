package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
	"github.com/wafa-bouzouita/water-tracker/pkg/cache"
)

func TestCachedSeriesRoundtrip(t *testing.T) {
	backend := cache.NewMemoryCache()
	defer backend.Close()
	c := NewCachedSeries(backend)
	ctx := context.Background()

	_, ok := c.LoadSeries(ctx, "groundwater:s1")
	assert.False(t, ok)

	s := models.Series{
		{Date: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), Value: 7.5},
	}
	require.NoError(t, c.SaveSeries(ctx, "groundwater:s1", s, time.Minute))

	got, ok := c.LoadSeries(ctx, "groundwater:s1")
	require.True(t, ok)
	assert.Equal(t, s, got)
}

func TestCachedSeriesInvalidateCounts(t *testing.T) {
	backend := cache.NewMemoryCache()
	defer backend.Close()
	c := NewCachedSeries(backend)
	ctx := context.Background()

	lc := models.LevelCounts{"2023-04": {2: 3}}
	require.NoError(t, c.SaveCounts(ctx, "groundwater:month", lc, time.Minute))

	got, ok := c.LoadCounts(ctx, "groundwater:month")
	require.True(t, ok)
	assert.Equal(t, lc, got)

	require.NoError(t, c.InvalidateCounts(ctx))

	_, ok = c.LoadCounts(ctx, "groundwater:month")
	assert.False(t, ok)
}
