// Package rank 按主题向量距离对物品排序。
package rank

import (
	"context"
	"fmt"
	"slices"

	"github.com/rushteam/topicrec/core"
	"github.com/rushteam/topicrec/model"
	"github.com/rushteam/topicrec/vector"
)

// ctxCheckEvery 是计算距离时检查 ctx 取消的间隔（行数）。
const ctxCheckEvery = 1024

// DistanceRanker 计算某物品到所有物品的距离，并给出由近及远的 RankList。
// 只读取 TopicModel，可被并发调用。
type DistanceRanker struct {
	model  *model.TopicModel
	metric vector.Metric
	dist   vector.DistanceFunc
}

// NewDistanceRanker 创建排序器，metric 为空时使用欧氏距离。
func NewDistanceRanker(m *model.TopicModel, metric vector.Metric) (*DistanceRanker, error) {
	if m == nil {
		return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput, "rank: topic model is nil")
	}
	if metric == "" {
		metric = vector.MetricEuclidean
	}
	dist, err := metric.Func()
	if err != nil {
		return nil, err
	}
	return &DistanceRanker{model: m, metric: metric, dist: dist}, nil
}

func (r *DistanceRanker) Name() string { return "rank.distance" }

// Metric 返回使用的距离度量。
func (r *DistanceRanker) Metric() vector.Metric { return r.metric }

// Distances 返回 id 到每个物品（含自身）的距离，下标即物品 id。
func (r *DistanceRanker) Distances(ctx context.Context, id int) ([]float64, error) {
	src, err := r.model.Vector(id)
	if err != nil {
		return nil, fmt.Errorf("rank item %d: %w", id, err)
	}

	dists := make([]float64, r.model.ItemCount())
	var ctxErr error
	r.model.Range(func(i int, vec []float64) bool {
		if i%ctxCheckEvery == 0 {
			if ctxErr = ctx.Err(); ctxErr != nil {
				return false
			}
		}
		dists[i] = r.dist(src, vec)
		return true
	})
	if ctxErr != nil {
		return nil, ctxErr
	}
	return dists, nil
}

// Rank 返回 id 的 RankList：除自身外的所有物品 id，按距离升序，距离相同时按 id 升序。
// 长度为 N-1；id 不在 [0, N) 时返回 UNKNOWN_ITEM。
func (r *DistanceRanker) Rank(ctx context.Context, id int) ([]int, error) {
	dists, err := r.Distances(ctx, id)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(dists))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case dists[a] < dists[b]:
			return -1
		case dists[a] > dists[b]:
			return 1
		default:
			return 0
		}
	})

	// 自身距离为 0，通常位于首位；按 id 剔除，避免与自身向量完全相同的物品被误删
	out := make([]int, 0, len(order)-1)
	for _, i := range order {
		if i != id {
			out = append(out, i)
		}
	}
	return out, nil
}
