package dsl

import (
	"testing"

	"github.com/rushteam/topicrec/core"
)

func TestExpr_Match(t *testing.T) {
	rctx := &core.RecommendContext{
		RawInputs: []string{"Get Ot"},
		Inputs:    []string{"Get Out"},
		InputIDs:  []int{3},
		Count:     2,
	}
	item := &core.Item{ID: 3, Title: "Get Out", Score: 4}
	other := &core.Item{ID: 5, Title: "The Ring", Score: 1}

	tests := []struct {
		expr string
		item *core.Item
		want bool
	}{
		{`item.is_input`, item, true},
		{`item.is_input`, other, false},
		{`item.title in query.inputs`, item, true},
		{`item.title.startsWith("The ")`, other, true},
		{`item.id == 5`, other, true},
		{`item.score > 2.0`, item, true},
		{`query.count == 2 && item.score < 2.0`, other, true},
		{`"Get Ot" in query.raw`, other, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			got, err := e.Match(tt.item, rctx)
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"syntax", `item.id ==`},
		{"dyn string result", `item.title`},
		{"dyn number result", `item.score`},
		{"static int result", `1 + 2`},
		{"static string result", `"Alpha"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(tt.expr); err == nil {
				t.Errorf("Compile(%q) error = nil", tt.expr)
			}
		})
	}
}

func TestCompile_SampleEvalErrorIgnored(t *testing.T) {
	// 样例输入下 query.inputs 为空，取下标会在试算时出错，但表达式本身合法
	e, err := Compile(`query.inputs[0] == item.title`)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	rctx := &core.RecommendContext{Inputs: []string{"Alpha"}}
	got, err := e.Match(&core.Item{Title: "Alpha"}, rctx)
	if err != nil || !got {
		t.Errorf("Match() = %v, %v; want true", got, err)
	}
}
