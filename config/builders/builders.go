// Package builders 注册内置的后处理 Node，供配置驱动的 Pipeline 使用。
package builders

import (
	"fmt"

	"github.com/rushteam/topicrec/config"
	"github.com/rushteam/topicrec/core"
	"github.com/rushteam/topicrec/filter"
	"github.com/rushteam/topicrec/pipeline"
	"github.com/rushteam/topicrec/pkg/conv"
	"github.com/rushteam/topicrec/rerank"
)

func init() {
	config.Register("filter.expr", BuildExprNode)
	config.Register("filter.inputs", BuildInputsNode)
	config.Register("filter.blacklist", BlacklistBuilder(nil))
	config.Register("rerank.topn", BuildTopNNode)
}

// BuildExprNode 构建表达式过滤节点：
//
//	- type: filter.expr
//	  config:
//	    expr: 'item.score > 10.0'
func BuildExprNode(cfg map[string]any) (pipeline.Node, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("expr not found")
	}
	f, err := filter.NewExprFilter(expr)
	if err != nil {
		return nil, err
	}
	return &filter.FilterNode{Filters: []filter.Filter{f}}, nil
}

// BuildInputsNode 构建剔除输入物品的过滤节点，无需配置。
func BuildInputsNode(map[string]any) (pipeline.Node, error) {
	return &filter.FilterNode{Filters: []filter.Filter{&filter.InputFilter{}}}, nil
}

// BlacklistBuilder 返回黑名单节点的构建器；s 非 nil 时支持 config.key 从存储读取黑名单。
//
//	- type: filter.blacklist
//	  config:
//	    titles: ["Gigli", 1917]
//	    key: topicrec:blacklist
func BlacklistBuilder(s core.Store) pipeline.NodeBuilder {
	return func(cfg map[string]any) (pipeline.Node, error) {
		titles := conv.ConfigGetStrings(cfg, "titles")
		key := conv.ConfigGet(cfg, "key", "")
		if key != "" && s == nil {
			return nil, fmt.Errorf("blacklist key %q requires a store", key)
		}
		if len(titles) == 0 && key == "" {
			return nil, fmt.Errorf("titles or key required")
		}
		return &filter.FilterNode{Filters: []filter.Filter{filter.NewBlacklistFilter(titles, s, key)}}, nil
	}
}

// BuildTopNNode 构建 Top-N 截断节点。
func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(cfg, "n", 0)
	if n < 0 {
		return nil, fmt.Errorf("n must not be negative")
	}
	return &rerank.TopNNode{
		N:           int(n),
		SortByScore: conv.ConfigGet(cfg, "sort_by_score", false),
	}, nil
}
