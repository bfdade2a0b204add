package config_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/rushteam/topicrec/config"
	_ "github.com/rushteam/topicrec/config/builders"
	"github.com/rushteam/topicrec/core"
	"github.com/rushteam/topicrec/pipeline"
	"github.com/rushteam/topicrec/rerank"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topicrec.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
artifact:
  path: testdata/model.json
resolver:
  scorer: levenshtein
ranker:
  metric: cosine
cache:
  backend: memory
  ttl: 60
pipeline:
  - type: filter.inputs
  - type: rerank.topn
    config:
      n: 2
      sort_by_score: true
`)
	t.Setenv("TOPICREC_RESOLVER__MIN_SCORE", "80")
	t.Setenv("TOPICREC_LOG__LEVEL", "debug")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Artifact.Path != "testdata/model.json" || cfg.Artifact.Key != "topicrec:model" {
		t.Errorf("Artifact = %+v", cfg.Artifact)
	}
	if cfg.Resolver.Scorer != "levenshtein" || cfg.Resolver.MinScore != 80 {
		t.Errorf("Resolver = %+v", cfg.Resolver)
	}
	if cfg.Ranker.Metric != "cosine" {
		t.Errorf("Ranker.Metric = %q", cfg.Ranker.Metric)
	}
	if cfg.Aggregator.MaxConcurrent != 4 {
		t.Errorf("Aggregator.MaxConcurrent = %d, want default 4", cfg.Aggregator.MaxConcurrent)
	}
	if cfg.Cache.Backend != config.CacheMemory || cfg.Cache.TTL != 60 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.NeedsRedis() {
		t.Error("NeedsRedis() = true")
	}

	p, err := pipeline.BuildNodes(cfg.Pipeline, config.DefaultFactory())
	if err != nil {
		t.Fatalf("BuildNodes() error = %v", err)
	}
	if p.Len() != 2 {
		t.Fatalf("pipeline has %d nodes, want 2", p.Len())
	}
	if topn, ok := p.Nodes[1].(*rerank.TopNNode); !ok || topn.N != 2 || !topn.SortByScore {
		t.Errorf("second node = %#v, want TopNNode{N: 2, SortByScore: true}", p.Nodes[1])
	}

	rctx := &core.RecommendContext{InputIDs: []int{0}}
	items := []*core.Item{{ID: 0, Score: 0}, {ID: 1, Score: 5}, {ID: 2, Score: 1}, {ID: 3, Score: 3}}
	out, err := p.Run(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got, want := core.IDs(out), []int{2, 3}; !slices.Equal(got, want) {
		t.Errorf("Run() ids = %v, want %v", got, want)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing path", "artifact: {format: json}", "artifact.path"},
		{"bad format", "artifact: {format: csv, path: a.csv}", "artifact.format"},
		{"bad scorer", "artifact: {path: a.json}\nresolver: {scorer: soundex}", "resolver.scorer"},
		{"score out of range", "artifact: {path: a.json}\nresolver: {min_score: 120}", "resolver.min_score"},
		{"bad metric", "artifact: {path: a.json}\nranker: {metric: hamming}", "ranker.metric"},
		{"bad cache", "artifact: {path: a.json}\ncache: {backend: disk}", "cache.backend"},
		{"unknown node", "artifact: {path: a.json}\npipeline: [{type: rank.lr}]", "unsupported node type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_StoreArtifactNeedsRedis(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "artifact: {format: store}"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.NeedsRedis() {
		t.Error("NeedsRedis() = false for store artifact")
	}
}

func TestSupportedTypes(t *testing.T) {
	want := []string{"filter.blacklist", "filter.expr", "filter.inputs", "rerank.topn"}
	if got := config.SupportedTypes(); !slices.Equal(got, want) {
		t.Errorf("SupportedTypes() = %v, want %v", got, want)
	}
}

func TestLoad_Example(t *testing.T) {
	cfg, err := config.Load("../configs/topicrec.example.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Pipeline) != 3 || cfg.Artifact.Path != "data/movies.db" {
		t.Errorf("cfg = %+v", cfg)
	}
}
