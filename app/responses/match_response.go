// Package responses API 响应结构定义
package responses

import "github.com/Sin9ular37/Address-MatchMaster/app/models"

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MatchResponse 单条匹配响应
type MatchResponse struct {
	Result           models.MatchResult `json:"result"`
	ProcessingTimeMs int64              `json:"processing_time_ms"`
	CacheHit         bool               `json:"cache_hit"`
}

// BatchMatchResponse 批量匹配响应
type BatchMatchResponse struct {
	Results          []models.MatchResult `json:"results"`
	Total            int                  `json:"total"`
	Matched          int                  `json:"matched"`
	ProcessingTimeMs int64                `json:"processing_time_ms"`
}

// HealthCheckResponse 健康检查响应
type HealthCheckResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime"`
	IndexSize int    `json:"index_size"`
}

// StatsResponse 运行统计响应
type StatsResponse struct {
	IndexSize    int     `json:"index_size"`
	CacheHitRate float64 `json:"cache_hit_rate"`
	CacheHits    int64   `json:"cache_hits"`
	CacheMisses  int64   `json:"cache_misses"`
}
