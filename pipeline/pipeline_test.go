package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/topicrec/core"
)

type dropFirst struct{}

func (dropFirst) Name() string { return "test.drop_first" }
func (dropFirst) Kind() Kind   { return KindFilter }
func (dropFirst) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	return items[1:], nil
}

type failing struct{}

func (failing) Name() string { return "test.failing" }
func (failing) Kind() Kind   { return KindPostProcess }
func (failing) Process(context.Context, *core.RecommendContext, []*core.Item) ([]*core.Item, error) {
	return nil, errBoom
}

var errBoom = errors.New("boom")

func TestPipeline_Run(t *testing.T) {
	items := []*core.Item{core.NewItem(1), core.NewItem(2), core.NewItem(3)}

	var nilPipeline *Pipeline
	if out, err := nilPipeline.Run(context.Background(), nil, items); err != nil || len(out) != 3 {
		t.Errorf("nil pipeline Run() = %v, %v", out, err)
	}

	p := &Pipeline{Nodes: []Node{dropFirst{}, nil, dropFirst{}}}
	out, err := p.Run(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out) != 1 || out[0].ID != 3 {
		t.Errorf("Run() = %v, want [3]", core.IDs(out))
	}

	p = &Pipeline{Nodes: []Node{dropFirst{}, failing{}}}
	if _, err := p.Run(context.Background(), nil, items); !errors.Is(err, errBoom) {
		t.Errorf("Run() error = %v, want wrapped boom", err)
	}
}

func TestConfig_BuildPipeline(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "pipeline.yaml")
	jsonPath := filepath.Join(dir, "pipeline.json")
	if err := os.WriteFile(yamlPath, []byte("pipeline:\n  name: post\n  nodes:\n    - type: test.drop_first\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(jsonPath, []byte(`{"pipeline": {"name": "post", "nodes": [{"type": "test.drop_first"}, {"type": "test.drop_first"}]}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	factory := NewNodeFactory()
	factory.Register("test.drop_first", func(map[string]any) (Node, error) { return dropFirst{}, nil })

	tests := []struct {
		name  string
		load  func(string) (*Config, error)
		path  string
		nodes int
	}{
		{"yaml", LoadFromYAML, yamlPath, 1},
		{"json", LoadFromJSON, jsonPath, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tt.load(tt.path)
			if err != nil {
				t.Fatalf("load error = %v", err)
			}
			if cfg.Pipeline.Name != "post" {
				t.Errorf("Name = %q", cfg.Pipeline.Name)
			}
			p, err := cfg.BuildPipeline(factory)
			if err != nil {
				t.Fatalf("BuildPipeline() error = %v", err)
			}
			if p.Len() != tt.nodes {
				t.Errorf("Len() = %d, want %d", p.Len(), tt.nodes)
			}
		})
	}

	if _, err := BuildNodes([]NodeConfig{{Type: "rank.lr"}}, factory); err == nil {
		t.Error("BuildNodes() error = nil for unknown type")
	}
}
