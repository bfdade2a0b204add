// Package service 编排一次完整的推荐查询：解析 → 纠错 → 排名聚合 → 后处理 → 选取。
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/topicrec/cache"
	"github.com/rushteam/topicrec/core"
	"github.com/rushteam/topicrec/metrics"
	"github.com/rushteam/topicrec/model"
	"github.com/rushteam/topicrec/pipeline"
	"github.com/rushteam/topicrec/query"
	"github.com/rushteam/topicrec/rank"
	"github.com/rushteam/topicrec/rerank"
	"github.com/rushteam/topicrec/resolve"
	"github.com/rushteam/topicrec/vector"
)

// NoticeZeroCount 是请求数量小于 1 时返回的提示。
const NoticeZeroCount = "You chose to receive 0 recommendations."

// Result 是一次查询的结果。
type Result struct {
	// Recommendations 推荐的规范标题，由近及远
	Recommendations []string `json:"recommendations"`

	// Resolved 纠错后的输入标题，与查询中的标题一一对应
	Resolved []string `json:"resolved"`

	// Notice 非空时表示本次查询没有执行推荐
	Notice string `json:"notice,omitempty"`
}

// IsNotice 判断结果是否为提示而非推荐。
func (r *Result) IsNotice() bool { return r != nil && r.Notice != "" }

// Recommender 是查询编排器。
//
// 构造后只读，可被任意多个 goroutine 并发调用；
// 唯一的共享可变状态是可选的结果缓存（底层 core.Store 自身并发安全）。
type Recommender struct {
	model      *model.TopicModel
	titles     []string
	resolver   *resolve.Resolver
	metric     vector.Metric
	aggregator *rerank.RankAggregator
	post       *pipeline.Pipeline
	cache      *cache.ResultCache
	logger     zerolog.Logger

	maxConcurrent int
}

// Option 配置 Recommender。
type Option func(*Recommender)

// WithResolver 指定标题纠错器，默认 resolve.New()。
func WithResolver(r *resolve.Resolver) Option {
	return func(rec *Recommender) {
		if r != nil {
			rec.resolver = r
		}
	}
}

// WithMetric 指定距离度量，默认欧氏距离。
func WithMetric(m vector.Metric) Option {
	return func(rec *Recommender) { rec.metric = m }
}

// WithMaxConcurrent 限制同时计算的 RankList 数量。
func WithMaxConcurrent(n int) Option {
	return func(rec *Recommender) { rec.maxConcurrent = n }
}

// WithPipeline 指定聚合之后、选取之前的后处理 Pipeline。
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(rec *Recommender) { rec.post = p }
}

// WithCache 启用结果缓存。
func WithCache(c *cache.ResultCache) Option {
	return func(rec *Recommender) { rec.cache = c }
}

// WithLogger 指定日志，默认不输出。
func WithLogger(l zerolog.Logger) Option {
	return func(rec *Recommender) { rec.logger = l }
}

// NewRecommender 基于已加载的主题模型创建查询编排器。
func NewRecommender(m *model.TopicModel, opts ...Option) (*Recommender, error) {
	if m == nil {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "service: topic model is nil")
	}
	rec := &Recommender{
		model:    m,
		titles:   m.Titles(),
		resolver: resolve.New(),
		metric:   vector.MetricEuclidean,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(rec)
	}

	ranker, err := rank.NewDistanceRanker(m, rec.metric)
	if err != nil {
		return nil, fmt.Errorf("new ranker: %w", err)
	}
	rec.aggregator = rerank.NewRankAggregator(ranker, rec.maxConcurrent)
	return rec, nil
}

// Model 返回底层主题模型。
func (r *Recommender) Model() *model.TopicModel { return r.model }

// Recommend 解析查询串并返回推荐结果。
//
// 查询格式为 `title_1, ..., title_k, R`。R < 1 时返回带 Notice 的结果而非错误；
// 查询无法解析时返回 MALFORMED_QUERY。
func (r *Recommender) Recommend(ctx context.Context, text string) (*Result, error) {
	q, err := query.Parse(text)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeMalformed).Inc()
		r.logger.Debug().Str("query", text).Err(err).Msg("malformed query")
		return nil, err
	}
	return r.RecommendQuery(ctx, q)
}

// RecommendQuery 对已解析的查询执行推荐。
func (r *Recommender) RecommendQuery(ctx context.Context, q query.Query) (*Result, error) {
	start := time.Now()
	defer func() { metrics.QueryDuration.Observe(time.Since(start).Seconds()) }()

	if q.Count < 1 {
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeNotice).Inc()
		return &Result{Notice: NoticeZeroCount}, nil
	}

	key := q.String()
	if res, ok := r.cached(ctx, key); ok {
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeOK).Inc()
		return res, nil
	}

	res, err := r.recommend(ctx, q)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(outcome(err)).Inc()
		return nil, err
	}
	metrics.QueriesTotal.WithLabelValues(metrics.OutcomeOK).Inc()

	r.store(ctx, key, res)
	r.logger.Debug().
		Str("query", key).
		Strs("resolved", res.Resolved).
		Strs("recommendations", res.Recommendations).
		Dur("took", time.Since(start)).
		Msg("recommend")
	return res, nil
}

func (r *Recommender) recommend(ctx context.Context, q query.Query) (*Result, error) {
	resolved := make([]string, len(q.Titles))
	ids := make([]int, len(q.Titles))
	for i, raw := range q.Titles {
		match, err := r.resolver.Resolve(raw, r.titles)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", raw, err)
		}
		metrics.ResolveScore.Observe(float64(match.Score))
		id, err := r.model.LookupID(match.Title)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", raw, err)
		}
		resolved[i] = match.Title
		ids[i] = id
	}

	items, err := r.aggregator.Scores(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.Title, err = r.model.LookupTitle(it.ID); err != nil {
			return nil, err
		}
	}

	rctx := &core.RecommendContext{
		RawInputs: q.Titles,
		Inputs:    resolved,
		InputIDs:  ids,
		Count:     q.Count,
	}
	items, err = r.post.Run(ctx, rctx, items)
	if err != nil {
		return nil, fmt.Errorf("post process: %w", err)
	}

	selected, err := rerank.Select(items, q.Count)
	if err != nil {
		return nil, err
	}
	recs := make([]string, len(selected))
	for i, it := range selected {
		recs[i] = it.Title
	}
	return &Result{Recommendations: recs, Resolved: resolved}, nil
}

func (r *Recommender) cached(ctx context.Context, key string) (*Result, bool) {
	if r.cache == nil {
		return nil, false
	}
	e, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheRequests.WithLabelValues("error").Inc()
		r.logger.Warn().Err(err).Str("backend", r.cache.Backend()).Msg("result cache read failed")
		return nil, false
	}
	if !ok {
		metrics.CacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.CacheRequests.WithLabelValues("hit").Inc()
	return &Result{Recommendations: e.Recommendations, Resolved: e.Resolved}, true
}

func (r *Recommender) store(ctx context.Context, key string, res *Result) {
	if r.cache == nil {
		return
	}
	e := &cache.Entry{Recommendations: res.Recommendations, Resolved: res.Resolved}
	if err := r.cache.Set(ctx, key, e); err != nil {
		r.logger.Warn().Err(err).Str("backend", r.cache.Backend()).Msg("result cache write failed")
	}
}

func outcome(err error) string {
	switch {
	case core.IsMalformedQuery(err):
		return metrics.OutcomeMalformed
	case core.IsNoMatch(err):
		return metrics.OutcomeNoMatch
	default:
		return metrics.OutcomeError
	}
}
