// Package dsl 提供基于 CEL (Common Expression Language) 的候选表达式。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/rushteam/topicrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.MapType(cel.StringType, cel.DynType)),
			cel.Variable("query", cel.MapType(cel.StringType, cel.DynType)),
		)
	})
	return celEnv, celEnvErr
}

// Expr 是编译后的 CEL 表达式，编译一次，可并发求值。
//
// 可用变量：
//   - item.id（int）、item.title（string）、item.score（double，聚合分数）、item.is_input（bool）
//   - query.inputs（纠错后的输入标题列表）、query.raw（原始输入）、query.count（int，请求数量）
//
// 示例：
//   - `item.is_input` → 输入物品
//   - `item.title.startsWith("The ")` → 标题以 "The " 开头
//   - `item.score > double(query.count) * 100.0`
type Expr struct {
	src string
	prg cel.Program
}

// Compile 编译表达式，结果必须为布尔值。
//
// item / query 的字段为 dyn，静态类型检查只能排除明确的非布尔类型（如 `item.id + 1`）；
// 对 `item.title` 这类 dyn 结果，再用一组空值样例试算一次，得到非布尔值同样视为错误。
// 试算本身出错（如对空列表取下标）不影响编译。
func Compile(expr string) (*Expr, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	switch kind := ast.OutputType().Kind(); kind {
	case types.BoolKind, types.DynKind:
	default:
		return nil, fmt.Errorf("expression %q must return bool, got %s", expr, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}

	out, _, err := prg.Eval(buildInput(&core.Item{}, nil))
	if err == nil {
		if _, ok := out.Value().(bool); !ok {
			return nil, fmt.Errorf("expression %q must return bool, got %T", expr, out.Value())
		}
	}
	return &Expr{src: expr, prg: prg}, nil
}

func (e *Expr) String() string { return e.src }

// Match 对单个候选求值。
func (e *Expr) Match(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := e.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	query := map[string]any{
		"inputs": []string{},
		"raw":    []string{},
		"count":  int64(0),
	}
	if rctx != nil {
		if rctx.Inputs != nil {
			query["inputs"] = rctx.Inputs
		}
		if rctx.RawInputs != nil {
			query["raw"] = rctx.RawInputs
		}
		query["count"] = int64(rctx.Count)
	}
	return map[string]any{
		"item": map[string]any{
			"id":       int64(item.ID),
			"title":    item.Title,
			"score":    item.Score,
			"is_input": rctx.IsInput(item.ID),
		},
		"query": query,
	}
}
