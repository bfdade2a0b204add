package filter

import (
	"context"

	"github.com/rushteam/topicrec/core"
	"github.com/rushteam/topicrec/pkg/dsl"
)

// ExprFilter 用 CEL 表达式判断是否过滤，表达式为 true 时移除该候选。
// 可用变量见 dsl.Expr。
type ExprFilter struct {
	expr *dsl.Expr
}

// NewExprFilter 编译表达式，语法错误在构建时返回。
func NewExprFilter(expr string) (*ExprFilter, error) {
	e, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{expr: e}, nil
}

func (f *ExprFilter) Name() string { return "filter.expr" }

// Expr 返回表达式原文。
func (f *ExprFilter) Expr() string { return f.expr.String() }

func (f *ExprFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	return f.expr.Match(item, rctx)
}
