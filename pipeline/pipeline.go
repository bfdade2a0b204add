package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/topicrec/core"
)

// Pipeline 把聚合后的候选交给一串 Node 依次处理。
// 空 Pipeline 原样返回输入。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if p == nil {
		return items, nil
	}
	cur := items
	for _, node := range p.Nodes {
		if node == nil {
			continue
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// Len 返回 Node 数量。
func (p *Pipeline) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Nodes)
}
