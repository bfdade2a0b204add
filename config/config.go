// Package config 加载应用配置。
//
// 优先级：环境变量 > 配置文件 > 默认值。环境变量以 TOPICREC_ 为前缀，
// 双下划线表示层级，例如 TOPICREC_CACHE__BACKEND=redis 对应 cache.backend。
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/topicrec/core"
	"github.com/rushteam/topicrec/pipeline"
	"github.com/rushteam/topicrec/resolve"
	"github.com/rushteam/topicrec/vector"
)

// EnvPrefix 是环境变量前缀。
const EnvPrefix = "TOPICREC_"

// Config 是应用配置。
type Config struct {
	Artifact   ArtifactConfig        `koanf:"artifact"`
	Redis      RedisConfig           `koanf:"redis"`
	Resolver   ResolverConfig        `koanf:"resolver"`
	Ranker     RankerConfig          `koanf:"ranker"`
	Aggregator AggregatorConfig      `koanf:"aggregator"`
	Cache      CacheConfig           `koanf:"cache"`
	Log        LogConfig             `koanf:"log"`
	Server     ServerConfig          `koanf:"server"`
	Pipeline   []pipeline.NodeConfig `koanf:"pipeline"`
}

// ArtifactConfig 描述主题模型产物的位置。
type ArtifactConfig struct {
	// Format：json / yaml / sqlite / store，为空时按 Path 扩展名推断
	Format string `koanf:"format"`
	Path   string `koanf:"path"`
	// Key 是 format=store 时 Redis 中的 key
	Key string `koanf:"key"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type ResolverConfig struct {
	// Scorer：indel / levenshtein
	Scorer string `koanf:"scorer"`
	// MinScore 最低相似度（0–100），0 表示不设阈值
	MinScore   int  `koanf:"min_score"`
	UnicodeNFC bool `koanf:"unicode_nfc"`
}

type RankerConfig struct {
	Metric string `koanf:"metric"`
}

type AggregatorConfig struct {
	MaxConcurrent int `koanf:"max_concurrent"`
}

// CacheConfig 结果缓存配置。
type CacheConfig struct {
	// Backend：none / memory / redis
	Backend string `koanf:"backend"`
	// TTL 秒，<= 0 不过期
	TTL int `koanf:"ttl"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// 缓存后端
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Default 返回默认配置，引擎相关默认值来自 core.DefaultEngineConfig。
func Default() *Config {
	var engine core.EngineConfig = &core.DefaultEngineConfig{}
	return &Config{
		Artifact:   ArtifactConfig{Key: "topicrec:model"},
		Redis:      RedisConfig{Addr: "localhost:6379"},
		Resolver:   ResolverConfig{Scorer: resolve.ScorerIndel, MinScore: engine.DefaultMinScore()},
		Ranker:     RankerConfig{Metric: engine.DefaultMetric()},
		Aggregator: AggregatorConfig{MaxConcurrent: engine.DefaultMaxConcurrent()},
		Cache:      CacheConfig{Backend: CacheNone, TTL: 3600},
		Log:        LogConfig{Level: "info", Format: "json"},
		Server:     ServerConfig{Addr: ":8080"},
	}
}

// Load 依次加载默认值、配置文件（path 为空时跳过）与环境变量，并校验结果。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envKey: TOPICREC_RESOLVER__MIN_SCORE -> resolver.min_score
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate 校验枚举值与取值范围。
func (c *Config) Validate() error {
	switch c.Artifact.Format {
	case "", "json", "yaml", "sqlite", "store":
	default:
		return fmt.Errorf("artifact.format %q not supported", c.Artifact.Format)
	}
	if c.Artifact.Format == "store" {
		if c.Artifact.Key == "" {
			return fmt.Errorf("artifact.key is required for format store")
		}
	} else if c.Artifact.Path == "" {
		return fmt.Errorf("artifact.path is required")
	}

	if _, err := resolve.ScorerByName(c.Resolver.Scorer); err != nil {
		return fmt.Errorf("resolver.scorer: %w", err)
	}
	if c.Resolver.MinScore < 0 || c.Resolver.MinScore > 100 {
		return fmt.Errorf("resolver.min_score %d out of range [0, 100]", c.Resolver.MinScore)
	}
	if _, err := vector.ParseMetric(c.Ranker.Metric); err != nil {
		return fmt.Errorf("ranker.metric: %w", err)
	}
	if c.Aggregator.MaxConcurrent < 0 {
		return fmt.Errorf("aggregator.max_concurrent must not be negative")
	}

	switch c.Cache.Backend {
	case "", CacheNone, CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("cache.backend %q not supported", c.Cache.Backend)
	}
	if c.NeedsRedis() && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}

	return ValidatePipeline(c.Pipeline)
}

// NeedsRedis 判断是否需要连接 Redis。
func (c *Config) NeedsRedis() bool {
	return c.Artifact.Format == "store" || c.Cache.Backend == CacheRedis
}
