// Package metrics 定义推荐引擎的 Prometheus 指标。
//
// 指标：
//   - topicrec_queries_total{outcome}：查询次数，outcome 为 ok / notice / malformed / no_match / error
//   - topicrec_query_duration_seconds：查询耗时
//   - topicrec_resolve_score：标题纠错的相似度分布（0–100）
//   - topicrec_cache_requests_total{result}：结果缓存 hit / miss / error
//   - topicrec_filter_errors_total{filter}：后处理过滤器出错次数
//   - topicrec_model_items：已加载模型的物品数
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topicrec_queries_total",
			Help: "Total number of recommendation queries by outcome",
		},
		[]string{"outcome"},
	)

	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "topicrec_query_duration_seconds",
			Help:    "Recommendation query duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	ResolveScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "topicrec_resolve_score",
			Help:    "Similarity score of resolved input titles (0-100)",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topicrec_cache_requests_total",
			Help: "Result cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	FilterErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topicrec_filter_errors_total",
			Help: "Post-process filter errors by filter name; the affected candidates are kept",
		},
		[]string{"filter"},
	)

	ModelItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "topicrec_model_items",
			Help: "Number of items in the loaded topic model",
		},
	)
)

// 查询结果
const (
	OutcomeOK        = "ok"
	OutcomeNotice    = "notice"
	OutcomeMalformed = "malformed"
	OutcomeNoMatch   = "no_match"
	OutcomeError     = "error"
)
