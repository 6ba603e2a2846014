// API 入口：启动时建索引，之后提供在线匹配接口。
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Sin9ular37/Address-MatchMaster/app/config"
	"github.com/Sin9ular37/Address-MatchMaster/app/controllers"
	"github.com/Sin9ular37/Address-MatchMaster/app/services"
	"github.com/Sin9ular37/Address-MatchMaster/internal/index"
	"github.com/Sin9ular37/Address-MatchMaster/internal/loader"
	"github.com/Sin9ular37/Address-MatchMaster/internal/normalizer"
	"github.com/Sin9ular37/Address-MatchMaster/internal/pipeline"
	"github.com/Sin9ular37/Address-MatchMaster/internal/textanalysis"
	"github.com/Sin9ular37/Address-MatchMaster/routes"
)

func main() {
	configPath := flag.String("config", "config/matcher.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting address match service")

	if cfg.Input.POIFile == "" {
		logger.Fatal("input.poi_file is required for the API server")
	}

	analyzer, err := textanalysis.NewGseAnalyzer()
	if err != nil {
		logger.Fatal("failed to init analyzer", zap.Error(err))
	}
	rules, err := normalizer.LoadRules()
	if err != nil {
		logger.Fatal("failed to load normalization rules", zap.Error(err))
	}
	norm := normalizer.New(analyzer, rules)

	pois, err := loader.LoadPOIs(cfg.Input.POIFile)
	if err != nil {
		logger.Fatal("failed to load poi gazetteer", zap.Error(err))
	}

	pipe := pipeline.New(cfg.Engine, norm, logger)
	builder := index.NewBuilder(norm, analyzer, cfg.Engine.Workers, logger)
	if err := pipe.BuildIndex(builder, pois); err != nil {
		logger.Fatal("failed to build index", zap.Error(err))
	}

	cache, err := buildCache(cfg, logger)
	if err != nil {
		logger.Fatal("failed to init cache", zap.Error(err))
	}
	defer cache.Close()

	matchController := controllers.NewMatchController(pipe, cache, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	routes.SetupAllRoutes(router, matchController)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	go func() {
		logger.Info("http server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	logger.Info("server exited")
}

func buildCache(cfg *config.Config, logger *zap.Logger) (services.MatchCache, error) {
	if cfg.Cache.Backend == "redis" {
		return services.NewRedisCacheService(cfg.Cache.RedisURL, logger)
	}
	return services.NewMemoryCacheService(cfg.Cache.Size)
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		os.Exit(1)
	}
	return logger
}
