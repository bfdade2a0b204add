package filter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/topicrec/core"
	"github.com/rushteam/topicrec/logging"
	"github.com/rushteam/topicrec/metrics"
	"github.com/rushteam/topicrec/pipeline"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 如果任何一个过滤器返回 true，该物品就会被过滤掉。
//
// 过滤器出错时保留该物品、不中断查询，但每个出错的过滤器每次 Process 记一条 warn
// 日志，并累加 topicrec_filter_errors_total。
type FilterNode struct {
	Filters []Filter

	// Logger 为 nil 时使用 logging.With("filter")
	Logger *zerolog.Logger
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	filters := make([]Filter, 0, len(n.Filters))
	for _, f := range n.Filters {
		p, ok := f.(Preparer)
		if !ok {
			filters = append(filters, f)
			continue
		}
		prepared, err := p.Prepare(ctx, rctx)
		if err != nil {
			metrics.FilterErrors.WithLabelValues(f.Name()).Inc()
			n.warn(f.Name(), err, "prepare filter")
		}
		if prepared != nil {
			filters = append(filters, prepared)
		}
	}

	failed := make(map[string]error)
	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		shouldFilter := false
		for _, f := range filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				if _, seen := failed[f.Name()]; !seen {
					failed[f.Name()] = err
				}
				metrics.FilterErrors.WithLabelValues(f.Name()).Inc()
				continue
			}
			if ok {
				shouldFilter = true
				break
			}
		}

		if !shouldFilter {
			out = append(out, item)
		}
	}

	for name, err := range failed {
		n.warn(name, err, "filter failed, candidates kept")
	}
	return out, nil
}

func (n *FilterNode) warn(name string, err error, msg string) {
	logger := n.Logger
	if logger == nil {
		l := logging.With("filter")
		logger = &l
	}
	logger.Warn().Err(err).Str("filter", name).Msg(msg)
}
