// Package filter 提供后处理 Pipeline 中的候选过滤器。
// 默认 Pipeline 为空，不会改变聚合结果；过滤需要显式配置。
package filter

import (
	"context"

	"github.com/rushteam/topicrec/core"
)

// Filter 是过滤器的抽象接口，用于判断一个 Item 是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 item 是否应该被过滤
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// Preparer 由需要按查询预加载数据的过滤器实现（例如从存储读取黑名单）。
// FilterNode 每次 Process 调用一次 Prepare，本次 Process 内改用返回的 Filter，
// 避免逐个候选访问存储。出错时可以同时返回降级后的 Filter（nil 表示跳过该过滤器）。
type Preparer interface {
	Prepare(ctx context.Context, rctx *core.RecommendContext) (Filter, error)
}

// InputFilter 过滤掉本次查询的输入物品。
// 默认行为会把输入物品推荐回来，需要排除时显式加入此过滤器。
type InputFilter struct{}

func (f *InputFilter) Name() string { return "filter.inputs" }

func (f *InputFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	return rctx.IsInput(item.ID), nil
}
