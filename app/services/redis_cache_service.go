package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Sin9ular37/Address-MatchMaster/app/models"
)

// RedisCacheService 多实例部署共享的 Redis 缓存后端
type RedisCacheService struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisCacheService 连接 Redis 并返回缓存服务
func NewRedisCacheService(redisURL string, logger *zap.Logger) (*RedisCacheService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisCacheService{
		client: client,
		logger: logger,
		prefix: "matchmaster:",
		ttl:    24 * time.Hour,
	}, nil
}

func (r *RedisCacheService) Get(ctx context.Context, key string) (*models.MatchResult, bool, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if err == redis.Nil {
		r.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var result models.MatchResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		r.logger.Warn("corrupt cache entry", zap.String("key", key), zap.Error(err))
		return nil, false, nil
	}
	r.hits.Add(1)
	return &result, true, nil
}

func (r *RedisCacheService) Set(ctx context.Context, key string, result *models.MatchResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	return r.client.Set(ctx, r.prefix+key, data, r.ttl).Err()
}

func (r *RedisCacheService) Stats(context.Context) (*CacheStats, error) {
	hits, misses := r.hits.Load(), r.misses.Load()
	stats := &CacheStats{TotalHits: hits, TotalMiss: misses}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats, nil
}

func (r *RedisCacheService) Close() error { return r.client.Close() }
