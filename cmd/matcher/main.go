// 批处理入口：加载 POI 与待匹配地址，建索引，跑一轮匹配，结果落盘。
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Sin9ular37/Address-MatchMaster/app/config"
	"github.com/Sin9ular37/Address-MatchMaster/internal/index"
	"github.com/Sin9ular37/Address-MatchMaster/internal/loader"
	"github.com/Sin9ular37/Address-MatchMaster/internal/normalizer"
	"github.com/Sin9ular37/Address-MatchMaster/internal/pipeline"
	"github.com/Sin9ular37/Address-MatchMaster/internal/retriever"
	"github.com/Sin9ular37/Address-MatchMaster/internal/sink"
	"github.com/Sin9ular37/Address-MatchMaster/internal/textanalysis"
)

func main() {
	configPath := flag.String("config", "config/matcher.yaml", "配置文件路径")
	poiFile := flag.String("poi", "", "POI CSV 路径，覆盖配置")
	addressFile := flag.String("address", "", "地址 CSV 路径，覆盖配置")
	outputFile := flag.String("output", "", "结果 CSV 路径，覆盖配置")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	if *poiFile != "" {
		cfg.Input.POIFile = *poiFile
	}
	if *addressFile != "" {
		cfg.Input.AddressFile = *addressFile
	}
	if *outputFile != "" {
		cfg.Input.OutputFile = *outputFile
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	if cfg.Input.POIFile == "" || cfg.Input.AddressFile == "" {
		logger.Fatal("input.poi_file and input.address_file are required")
	}

	// Ctrl+C 触发协作式取消，已完成的结果仍会写出
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("matcher interrupted, partial results written")
			return
		}
		logger.Fatal("matcher run failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	startTime := time.Now()

	analyzer, err := textanalysis.NewGseAnalyzer()
	if err != nil {
		return err
	}
	rules, err := normalizer.LoadRules()
	if err != nil {
		return err
	}
	norm := normalizer.New(analyzer, rules)

	pois, err := loader.LoadPOIs(cfg.Input.POIFile)
	if err != nil {
		return err
	}
	addrs, err := loader.LoadAddresses(cfg.Input.AddressFile)
	if err != nil {
		return err
	}
	logger.Info("input loaded",
		zap.Int("pois", len(pois)), zap.Int("addresses", len(addrs)))

	pipe := pipeline.New(cfg.Engine, norm, logger)
	builder := index.NewBuilder(norm, analyzer, cfg.Engine.Workers, logger)
	if err := pipe.BuildIndex(builder, pois); err != nil {
		return err
	}

	if cfg.Meili.Enable {
		meili, err := retriever.NewMeili(retriever.MeiliConfig{
			Host:      cfg.Meili.Host,
			APIKey:    cfg.Meili.APIKey,
			IndexName: cfg.Meili.IndexName,
		}, retriever.Options{
			AdministrativeFallback: cfg.Engine.AdministrativeFallback,
			UnscopedSearch:         cfg.Engine.UnscopedSearch,
		}, logger)
		if err != nil {
			return err
		}
		if err := meili.Seed(pois, pipe.Index().NormalizedAll()); err != nil {
			return err
		}
		pipe.UseRetriever(meili)
		logger.Info("using meilisearch retriever", zap.String("host", cfg.Meili.Host))
	}

	results, runErr := pipe.Run(ctx, addrs)
	matched := 0
	for _, r := range results {
		if r.Matched() {
			matched++
		}
	}
	logger.Info("matching finished",
		zap.Int("total", len(addrs)),
		zap.Int("completed", len(results)),
		zap.Int("matched", matched),
		zap.Duration("elapsed", time.Since(startTime)))

	sinks, err := buildSinks(cfg, logger)
	if err != nil {
		return err
	}
	// 写出用独立 ctx，取消批处理不应丢弃已完成的结果
	writeCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	for _, s := range sinks {
		if err := s.Write(writeCtx, results); err != nil {
			return err
		}
		if err := s.Close(writeCtx); err != nil {
			logger.Warn("sink close failed", zap.Error(err))
		}
	}

	return runErr
}

func buildSinks(cfg *config.Config, logger *zap.Logger) ([]sink.ResultSink, error) {
	var sinks []sink.ResultSink

	csvSink, err := sink.NewCSV(cfg.Input.OutputFile)
	if err != nil {
		return nil, err
	}
	sinks = append(sinks, csvSink)

	if cfg.Mongo.Enable {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		mongoSink, err := sink.NewMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection, logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, mongoSink)
	}
	return sinks, nil
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
