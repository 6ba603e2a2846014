package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sin9ular37/Address-MatchMaster/app/models"
)

func TestMemoryCacheService(t *testing.T) {
	cache, err := NewMemoryCacheService(10)
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()

	_, found, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	result := models.MatchResult{
		AddressID: "A1",
		POIID:     "P1",
		Score:     0.92,
		Reason:    models.ReasonMatched,
	}
	require.NoError(t, cache.Set(ctx, "黑龙江省哈尔滨市南岗区宣化街477号", &result))

	cached, found, err := cache.Get(ctx, "黑龙江省哈尔滨市南岗区宣化街477号")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, result, *cached)

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalHits)
	assert.Equal(t, int64(1), stats.TotalMiss)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
}

func TestMemoryCacheService_Eviction(t *testing.T) {
	cache, err := NewMemoryCacheService(2)
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	for _, key := range []string{"k1", "k2", "k3"} {
		require.NoError(t, cache.Set(ctx, key, &models.MatchResult{AddressID: key}))
	}

	// 容量 2，最早写入的被逐出
	_, found, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = cache.Get(ctx, "k3")
	require.NoError(t, err)
	assert.True(t, found)
}
