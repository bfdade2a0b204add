package rerank

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/topicrec/core"
)

// Ranker 给出某物品的 RankList（除自身外所有物品 id，由近及远）。
// rank.DistanceRanker 实现此接口。
type Ranker interface {
	Rank(ctx context.Context, id int) ([]int, error)
}

// RankAggregator 把多个输入物品的 RankList 合并为一个排名。
//
// 每个候选的聚合分数为它在各 RankList 中的下标（从 0 开始）之和，分数越小越相似。
// 输入物品本身不会被剔除：它可能出现在另一个输入物品的 RankList 中并被推荐回来。
type RankAggregator struct {
	Ranker Ranker

	// MaxConcurrent 同时计算的 RankList 数量，<= 0 表示不限制。
	// 并发只影响计算，合并始终按输入顺序进行，结果与串行一致。
	MaxConcurrent int
}

func NewRankAggregator(r Ranker, maxConcurrent int) *RankAggregator {
	return &RankAggregator{Ranker: r, MaxConcurrent: maxConcurrent}
}

func (a *RankAggregator) Name() string { return "rerank.aggregate" }

// Scores 计算所有候选的聚合分数，按候选首次出现的顺序返回（Item.Score 为聚合分数）。
func (a *RankAggregator) Scores(ctx context.Context, ids []int) ([]*core.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if a.Ranker == nil {
		return nil, core.NewDomainError(core.ModuleRerank, core.ErrorCodeInvalidInput, "rerank: ranker is nil")
	}

	lists := make([][]int, len(ids))
	eg, egCtx := errgroup.WithContext(ctx)
	if a.MaxConcurrent > 0 {
		eg.SetLimit(a.MaxConcurrent)
	}
	for i, id := range ids {
		eg.Go(func() error {
			list, err := a.Ranker.Rank(egCtx, id)
			if err != nil {
				return fmt.Errorf("rank list for item %d: %w", id, err)
			}
			lists[i] = list
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	index := make(map[int]*core.Item)
	var order []*core.Item
	for _, list := range lists {
		for pos, id := range list {
			it, ok := index[id]
			if !ok {
				it = core.NewItem(id)
				index[id] = it
				order = append(order, it)
			}
			it.Score += float64(pos)
		}
	}
	return order, nil
}

// Aggregate 返回聚合后最相似的 count 个候选 id。
func (a *RankAggregator) Aggregate(ctx context.Context, ids []int, count int) ([]int, error) {
	if err := checkCount(count); err != nil {
		return nil, err
	}
	items, err := a.Scores(ctx, ids)
	if err != nil {
		return nil, err
	}
	selected, err := Select(items, count)
	if err != nil {
		return nil, err
	}
	return core.IDs(selected), nil
}

// Select 从按首次出现顺序排列的候选中选出最终结果：
//   - count == 1：分数最小的一个，分数相同时取先出现者
//   - count > 1：按分数稳定升序排序后取前 count 个，不足 count 时全部返回
//
// count < 1 返回 INVALID_REQUEST_COUNT。
func Select(items []*core.Item, count int) ([]*core.Item, error) {
	if err := checkCount(count); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	if count == 1 {
		best := items[0]
		for _, it := range items[1:] {
			if it.Score < best.Score {
				best = it
			}
		}
		return []*core.Item{best}, nil
	}

	sorted := SortByScore(items)
	if len(sorted) > count {
		sorted = sorted[:count]
	}
	return sorted, nil
}

// SortByScore 返回按分数稳定升序排列的副本，分数相同时保持原顺序。
func SortByScore(items []*core.Item) []*core.Item {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(x, y *core.Item) int {
		switch {
		case x.Score < y.Score:
			return -1
		case x.Score > y.Score:
			return 1
		default:
			return 0
		}
	})
	return sorted
}

func checkCount(count int) error {
	if count < 1 {
		return core.NewDomainErrorf(core.ModuleRerank, core.ErrorCodeInvalidRequestCount,
			"rerank: requested count %d, must be at least 1", count)
	}
	return nil
}
