// Package config 加载运行配置：YAML 文件 + MATCHER_ 前缀环境变量覆盖。
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// EngineConfig 匹配引擎选项
type EngineConfig struct {
	// TopK 候选截断上限
	TopK int `mapstructure:"top_k"`
	// ScoreThreshold 低于该综合分的最优候选被拒绝
	ScoreThreshold float64 `mapstructure:"score_threshold"`
	// Weights 特征名 → 非负权重；缺省用内置默认
	Weights map[string]float64 `mapstructure:"weights"`
	// AdministrativeFallback 窄范围无候选时逐级放宽
	AdministrativeFallback bool `mapstructure:"administrative_fallback"`
	// UnscopedSearch 省级仍无候选时退化为全量搜索
	UnscopedSearch bool `mapstructure:"unscoped_search"`
	// Workers 匹配 worker 数，<=0 取 GOMAXPROCS
	Workers int `mapstructure:"workers"`
	// QueueDepth 地址队列深度，有界队列提供背压
	QueueDepth int `mapstructure:"queue_depth"`
}

// InputConfig 批处理输入输出文件
type InputConfig struct {
	POIFile     string `mapstructure:"poi_file"`
	AddressFile string `mapstructure:"address_file"`
	OutputFile  string `mapstructure:"output_file"`
}

// MeiliConfig 备选 Meilisearch 召回后端
type MeiliConfig struct {
	Enable    bool   `mapstructure:"enable"`
	Host      string `mapstructure:"host"`
	APIKey    string `mapstructure:"api_key"`
	IndexName string `mapstructure:"index_name"`
}

// MongoConfig 结果下沉到 MongoDB
type MongoConfig struct {
	Enable     bool   `mapstructure:"enable"`
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// CacheConfig API 服务的结果缓存
type CacheConfig struct {
	// Backend memory | redis
	Backend  string `mapstructure:"backend"`
	RedisURL string `mapstructure:"redis_url"`
	Size     int    `mapstructure:"size"`
}

// ServerConfig HTTP 服务
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// Config 全量配置
type Config struct {
	Engine EngineConfig `mapstructure:"engine"`
	Input  InputConfig  `mapstructure:"input"`
	Meili  MeiliConfig  `mapstructure:"meili"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Server ServerConfig `mapstructure:"server"`
	// LogLevel debug | info | warn | error
	LogLevel string `mapstructure:"log_level"`
}

// Load 读取配置文件。path 为空时只用默认值与环境变量。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MATCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.top_k", 50)
	v.SetDefault("engine.score_threshold", 0.75)
	v.SetDefault("engine.administrative_fallback", true)
	v.SetDefault("engine.unscoped_search", false)
	v.SetDefault("engine.workers", runtime.GOMAXPROCS(0))
	v.SetDefault("engine.queue_depth", 256)
	v.SetDefault("input.output_file", "output/matched.csv")
	v.SetDefault("meili.index_name", "poi_gazetteer")
	v.SetDefault("mongo.database", "matchmaster")
	v.SetDefault("mongo.collection", "match_results")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.size", 10000)
	v.SetDefault("server.port", "8080")
	v.SetDefault("log_level", "info")
}

func (c *Config) validate() error {
	if c.Engine.TopK <= 0 {
		return fmt.Errorf("engine.top_k must be positive, got %d", c.Engine.TopK)
	}
	if c.Engine.ScoreThreshold < 0 || c.Engine.ScoreThreshold > 1 {
		return fmt.Errorf("engine.score_threshold must be in [0,1], got %v", c.Engine.ScoreThreshold)
	}
	for name, w := range c.Engine.Weights {
		if w < 0 {
			return fmt.Errorf("engine.weights[%s] must be nonnegative, got %v", name, w)
		}
	}
	if c.Engine.QueueDepth <= 0 {
		return fmt.Errorf("engine.queue_depth must be positive, got %d", c.Engine.QueueDepth)
	}
	return nil
}
