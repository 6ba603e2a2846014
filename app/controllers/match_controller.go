// Package controllers gin 控制器层
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Sin9ular37/Address-MatchMaster/app/models"
	"github.com/Sin9ular37/Address-MatchMaster/app/requests"
	"github.com/Sin9ular37/Address-MatchMaster/app/responses"
	"github.com/Sin9ular37/Address-MatchMaster/app/services"
	"github.com/Sin9ular37/Address-MatchMaster/internal/pipeline"
)

// 单次批量请求的地址数上限
const maxBatchAddresses = 20000

// MatchController 地址匹配相关请求的控制器
type MatchController struct {
	pipe      *pipeline.Pipeline
	cache     services.MatchCache
	logger    *zap.Logger
	startTime time.Time
}

// NewMatchController 创建 MatchController
func NewMatchController(pipe *pipeline.Pipeline, cache services.MatchCache, logger *zap.Logger) *MatchController {
	return &MatchController{
		pipe:      pipe,
		cache:     cache,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Match 匹配单条地址
func (mc *MatchController) Match(c *gin.Context) {
	var req requests.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "请求格式无效: " + err.Error(),
		})
		return
	}

	startTime := time.Now()
	addr := models.AddressRecord{
		RawAddress: req.Address,
		Admin: models.AdminPath{
			Province: req.Hints.Province,
			City:     req.Hints.City,
			District: req.Hints.District,
		},
	}

	// 先查缓存，key 为归一化指纹
	var cacheKey string
	if req.Options.UseCache {
		cacheKey = mc.pipe.Fingerprint(addr)
		if cached, found, err := mc.cache.Get(c.Request.Context(), cacheKey); err == nil && found {
			c.JSON(http.StatusOK, responses.MatchResponse{
				Result:           *cached,
				ProcessingTimeMs: time.Since(startTime).Milliseconds(),
				CacheHit:         true,
			})
			return
		}
	}

	result := mc.pipe.MatchOne(c.Request.Context(), addr)

	if req.Options.UseCache {
		if err := mc.cache.Set(c.Request.Context(), cacheKey, &result); err != nil {
			mc.logger.Warn("cache set failed", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, responses.MatchResponse{
		Result:           result,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
		CacheHit:         false,
	})
}

// BatchMatch 批量匹配地址，同步返回全部结果
func (mc *MatchController) BatchMatch(c *gin.Context) {
	var req requests.BatchMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "请求格式无效: " + err.Error(),
		})
		return
	}
	if len(req.Addresses) > maxBatchAddresses {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "TOO_MANY_ADDRESSES",
			Message: "地址数量超过上限 (20,000)",
		})
		return
	}

	startTime := time.Now()
	addrs := make([]models.AddressRecord, 0, len(req.Addresses))
	for i, a := range req.Addresses {
		id := a.ID
		if id == "" {
			id = "REQ_" + strconv.Itoa(i)
		}
		addrs = append(addrs, models.AddressRecord{
			ID:         id,
			RawAddress: a.Address,
			Admin: models.AdminPath{
				Province: a.Hints.Province,
				City:     a.Hints.City,
				District: a.Hints.District,
			},
		})
	}

	results, err := mc.pipe.Run(c.Request.Context(), addrs)
	if err != nil {
		mc.logger.Warn("batch match interrupted", zap.Error(err), zap.Int("completed", len(results)))
	}

	matched := 0
	for _, r := range results {
		if r.Matched() {
			matched++
		}
	}
	c.JSON(http.StatusOK, responses.BatchMatchResponse{
		Results:          results,
		Total:            len(addrs),
		Matched:          matched,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	})
}

// HealthCheck 健康检查
func (mc *MatchController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(mc.startTime).String(),
		IndexSize: mc.pipe.Index().Size(),
	})
}

// Stats 运行统计
func (mc *MatchController) Stats(c *gin.Context) {
	stats, err := mc.cache.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "STATS_ERROR",
			Message: "获取统计失败: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, responses.StatsResponse{
		IndexSize:    mc.pipe.Index().Size(),
		CacheHitRate: stats.HitRate,
		CacheHits:    stats.TotalHits,
		CacheMisses:  stats.TotalMiss,
	})
}
