package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rushteam/topicrec/cache"
	"github.com/rushteam/topicrec/config"
	"github.com/rushteam/topicrec/config/builders"
	"github.com/rushteam/topicrec/core"
	"github.com/rushteam/topicrec/metrics"
	"github.com/rushteam/topicrec/model"
	"github.com/rushteam/topicrec/pipeline"
	"github.com/rushteam/topicrec/resolve"
	"github.com/rushteam/topicrec/store"
	"github.com/rushteam/topicrec/vector"
)

// FromConfig 按配置组装 Recommender：连接存储、加载产物、构建后处理 Pipeline 与结果缓存。
// 返回的 closer 用于释放存储连接，调用方负责在退出时调用。
func FromConfig(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Recommender, func() error, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	var stores []core.Store
	closer := func() error {
		var errs []error
		for _, s := range stores {
			errs = append(errs, s.Close())
		}
		return errors.Join(errs...)
	}
	fail := func(err error) (*Recommender, func() error, error) {
		_ = closer()
		return nil, nil, err
	}

	var redisStore core.Store
	if cfg.NeedsRedis() {
		rs, err := store.NewRedisStore(ctx, store.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fail(err)
		}
		redisStore = rs
		stores = append(stores, rs)
	}

	start := time.Now()
	m, err := model.Load(ctx, model.Source{
		Format: cfg.Artifact.Format,
		Path:   cfg.Artifact.Path,
		Store:  redisStore,
		Key:    cfg.Artifact.Key,
	})
	if err != nil {
		return fail(fmt.Errorf("load topic model: %w", err))
	}
	metrics.ModelItems.Set(float64(m.ItemCount()))
	logger.Info().
		Int("items", m.ItemCount()).
		Int("dim", m.Dim()).
		Dur("took", time.Since(start)).
		Msg("topic model loaded")

	scorer, err := resolve.ScorerByName(cfg.Resolver.Scorer)
	if err != nil {
		return fail(err)
	}
	metric, err := vector.ParseMetric(cfg.Ranker.Metric)
	if err != nil {
		return fail(err)
	}

	factory := config.DefaultFactory()
	factory.Register("filter.blacklist", builders.BlacklistBuilder(redisStore))
	post, err := pipeline.BuildNodes(cfg.Pipeline, factory)
	if err != nil {
		return fail(fmt.Errorf("build pipeline: %w", err))
	}

	opts := []Option{
		WithResolver(resolve.New(
			resolve.WithScorer(scorer),
			resolve.WithMinScore(cfg.Resolver.MinScore),
			resolve.WithUnicodeNFC(cfg.Resolver.UnicodeNFC),
		)),
		WithMetric(metric),
		WithMaxConcurrent(cfg.Aggregator.MaxConcurrent),
		WithPipeline(post),
		WithLogger(logger),
	}

	if cfg.Cache.Backend == config.CacheMemory || cfg.Cache.Backend == config.CacheRedis {
		ns, err := cacheNamespace(cfg)
		if err != nil {
			return fail(err)
		}
		cacheStore := redisStore
		if cfg.Cache.Backend == config.CacheMemory {
			ms := store.NewMemoryStore()
			stores = append(stores, ms)
			cacheStore = ms
		}
		opts = append(opts, WithCache(cache.New(cacheStore, ns, cfg.Cache.TTL)))
		logger.Debug().Str("backend", cfg.Cache.Backend).Str("namespace", ns).Msg("result cache enabled")
	}

	rec, err := NewRecommender(m, opts...)
	if err != nil {
		return fail(err)
	}
	return rec, closer, nil
}

// cacheNamespace 由产物位置与影响结果的配置共同决定：完整路径（或 Redis 地址、库号与 key）、
// 解析器、距离度量以及 Pipeline。共享同一缓存存储的不同部署因此不会读到彼此的结果。
func cacheNamespace(cfg *config.Config) (string, error) {
	location := cfg.Artifact.Path
	if cfg.Artifact.Format == model.FormatStore {
		location = fmt.Sprintf("redis://%s/%d/%s", cfg.Redis.Addr, cfg.Redis.DB, cfg.Artifact.Key)
	} else if abs, err := filepath.Abs(location); err == nil {
		location = abs
	}

	data, err := json.Marshal(struct {
		Format   string                `json:"format"`
		Location string                `json:"location"`
		Resolver config.ResolverConfig `json:"resolver"`
		Metric   string                `json:"metric"`
		Pipeline []pipeline.NodeConfig `json:"pipeline"`
	}{
		Format:   cfg.Artifact.Format,
		Location: location,
		Resolver: cfg.Resolver,
		Metric:   cfg.Ranker.Metric,
		Pipeline: cfg.Pipeline,
	})
	if err != nil {
		return "", fmt.Errorf("cache namespace: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8]), nil
}
