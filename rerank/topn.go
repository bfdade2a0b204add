package rerank

import (
	"context"

	"github.com/rushteam/topicrec/core"
	"github.com/rushteam/topicrec/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，在后处理 Pipeline 中限制候选数量。
//
// 示例：
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &filter.FilterNode{Filters: ...}, // 过滤
//	        &rerank.TopNNode{N: 50},          // 只保留前 50 个候选
//	    },
//	}
//
// 注意：截断按输入顺序进行（聚合结果为候选首次出现的顺序），
// 需要按分数截断时应设置 SortByScore。
type TopNNode struct {
	// N 要保留的物品数量
	// 如果 N <= 0，则返回所有物品（不截断）
	N int

	// SortByScore 为 true 时先按分数稳定升序排序再截断
	SortByScore bool
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 {
		return items, nil
	}
	if n.SortByScore {
		items = SortByScore(items)
	}
	if len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
