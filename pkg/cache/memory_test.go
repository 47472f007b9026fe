package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheTypedRoundtrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	type point struct {
		X, Y float64
	}
	require.NoError(t, mc.Set(ctx, "p", point{X: 1, Y: 2}, time.Minute))

	var got point
	require.NoError(t, mc.Get(ctx, "p", &got))
	assert.Equal(t, point{X: 1, Y: 2}, got)

	// Reading under the wrong type is a miss, not a panic.
	var s string
	assert.ErrorIs(t, mc.Get(ctx, "p", &s), ErrCacheMiss)
}

func TestMemoryCacheMissAndDelete(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	var v string
	assert.ErrorIs(t, mc.Get(ctx, "absent", &v), ErrCacheMiss)

	require.NoError(t, mc.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, mc.Delete(ctx, "k"))
	assert.ErrorIs(t, mc.Get(ctx, "k", &v), ErrCacheMiss)
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "counts:a", "1", time.Minute))
	require.NoError(t, mc.Set(ctx, "counts:b", "2", time.Minute))
	require.NoError(t, mc.DeleteByPattern(ctx, BuildPattern("counts")))

	var v string
	assert.ErrorIs(t, mc.Get(ctx, "counts:a", &v), ErrCacheMiss)
	assert.ErrorIs(t, mc.Get(ctx, "counts:b", &v), ErrCacheMiss)
}
