// Package services API 服务层：匹配结果缓存。
// 批处理引擎本身不需要缓存；缓存服务在线查询接口的重复地址。
package services

import (
	"context"

	"github.com/Sin9ular37/Address-MatchMaster/app/models"
)

// CacheStats 缓存统计
type CacheStats struct {
	HitRate   float64 `json:"hit_rate"`
	TotalHits int64   `json:"total_hits"`
	TotalMiss int64   `json:"total_miss"`
}

// MatchCache 匹配结果缓存契约。key 为归一化文本指纹。
type MatchCache interface {
	Get(ctx context.Context, key string) (*models.MatchResult, bool, error)
	Set(ctx context.Context, key string, result *models.MatchResult) error
	Stats(ctx context.Context) (*CacheStats, error)
	Close() error
}
