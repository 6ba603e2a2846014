package services

import (
	"context"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Sin9ular37/Address-MatchMaster/app/models"
)

// MemoryCacheService 进程内 LRU 缓存，默认后端
type MemoryCacheService struct {
	cache *lru.Cache[string, models.MatchResult]

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryCacheService 创建内存缓存
func NewMemoryCacheService(size int) (*MemoryCacheService, error) {
	cache, err := lru.New[string, models.MatchResult](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCacheService{cache: cache}, nil
}

func (m *MemoryCacheService) Get(_ context.Context, key string) (*models.MatchResult, bool, error) {
	result, ok := m.cache.Get(key)
	if !ok {
		m.misses.Add(1)
		return nil, false, nil
	}
	m.hits.Add(1)
	return &result, true, nil
}

func (m *MemoryCacheService) Set(_ context.Context, key string, result *models.MatchResult) error {
	m.cache.Add(key, *result)
	return nil
}

func (m *MemoryCacheService) Stats(context.Context) (*CacheStats, error) {
	hits, misses := m.hits.Load(), m.misses.Load()
	stats := &CacheStats{TotalHits: hits, TotalMiss: misses}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats, nil
}

func (m *MemoryCacheService) Close() error {
	m.cache.Purge()
	return nil
}
