package pipeline

import (
	"context"

	"github.com/rushteam/topicrec/core"
)

// Kind 用于标记 Node 类型，方便观测/编排。
type Kind string

const (
	KindFilter      Kind = "filter"      // 过滤阶段：剔除不符合约束的候选
	KindReRank      Kind = "rerank"      // 重排阶段：在聚合结果上做截断/调整
	KindPostProcess Kind = "postprocess" // 后处理阶段：结果修饰
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态；items 为聚合后的候选，Score 为聚合排名分数。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
