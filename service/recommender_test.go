package service

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/rushteam/topicrec/cache"
	"github.com/rushteam/topicrec/core"
	"github.com/rushteam/topicrec/filter"
	"github.com/rushteam/topicrec/model"
	"github.com/rushteam/topicrec/pipeline"
	"github.com/rushteam/topicrec/resolve"
	"github.com/rushteam/topicrec/store"
)

func newRecommender(t *testing.T, opts ...Option) *Recommender {
	t.Helper()
	m, err := model.NewTopicModelFromTitles(
		[]string{"Alpha", "Beta", "Gamma"},
		[][]float64{{1, 0}, {0.9, 0.1}, {0, 1}},
	)
	if err != nil {
		t.Fatalf("NewTopicModelFromTitles() error = %v", err)
	}
	rec, err := NewRecommender(m, opts...)
	if err != nil {
		t.Fatalf("NewRecommender() error = %v", err)
	}
	return rec
}

func TestRecommender_Recommend(t *testing.T) {
	rec := newRecommender(t)

	tests := []struct {
		name         string
		query        string
		want         []string
		wantResolved []string
	}{
		{"nearest neighbour", "Alpha, 1", []string{"Beta"}, []string{"Alpha"}},
		{"misspelled input", "Alpah, 1", []string{"Beta"}, []string{"Alpha"}},
		{"several inputs", "Alpha, Gamma, 2", []string{"Beta", "Gamma"}, []string{"Alpha", "Gamma"}},
		{"count larger than candidates", "Alpha, 5", []string{"Beta", "Gamma"}, []string{"Alpha"}},
		{"from the far end", "Gamma, 2", []string{"Beta", "Alpha"}, []string{"Gamma"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := rec.Recommend(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if res.IsNotice() {
				t.Fatalf("Recommend() returned notice %q", res.Notice)
			}
			if !slices.Equal(res.Recommendations, tt.want) {
				t.Errorf("Recommendations = %q, want %q", res.Recommendations, tt.want)
			}
			if !slices.Equal(res.Resolved, tt.wantResolved) {
				t.Errorf("Resolved = %q, want %q", res.Resolved, tt.wantResolved)
			}
		})
	}
}

func TestRecommender_ZeroCountNotice(t *testing.T) {
	rec := newRecommender(t)
	for _, q := range []string{"Movie A, 0", "Alpha, -3"} {
		res, err := rec.Recommend(context.Background(), q)
		if err != nil {
			t.Fatalf("Recommend(%q) error = %v", q, err)
		}
		if !res.IsNotice() || res.Notice != NoticeZeroCount {
			t.Errorf("Recommend(%q) notice = %q, want %q", q, res.Notice, NoticeZeroCount)
		}
		if res.Recommendations != nil {
			t.Errorf("Recommend(%q) recommendations = %q, want none", q, res.Recommendations)
		}
	}
}

func TestRecommender_Errors(t *testing.T) {
	rec := newRecommender(t, WithResolver(resolve.New(resolve.WithMinScore(90))))

	if _, err := rec.Recommend(context.Background(), "Alpha"); !core.IsMalformedQuery(err) {
		t.Errorf("missing count: error = %v, want MALFORMED_QUERY", err)
	}
	if _, err := rec.Recommend(context.Background(), "Alpha, many"); !core.IsMalformedQuery(err) {
		t.Errorf("non-integer count: error = %v, want MALFORMED_QUERY", err)
	}
	if _, err := rec.Recommend(context.Background(), "zzz, 1"); !core.IsNoMatch(err) {
		t.Errorf("below min score: error = %v, want NO_MATCH", err)
	}
}

func TestRecommender_Deterministic(t *testing.T) {
	rec := newRecommender(t, WithMaxConcurrent(2))
	first, err := rec.Recommend(context.Background(), "Alpha, Beta, Gamma, 3")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := rec.Recommend(context.Background(), "Alpha, Beta, Gamma, 3")
			if err != nil {
				t.Errorf("Recommend() error = %v", err)
				return
			}
			if !slices.Equal(res.Recommendations, first.Recommendations) {
				t.Errorf("Recommendations = %q, want %q", res.Recommendations, first.Recommendations)
			}
		}()
	}
	wg.Wait()
}

func TestRecommender_InputFilter(t *testing.T) {
	post := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&filter.FilterNode{Filters: []filter.Filter{&filter.InputFilter{}}},
	}}
	rec := newRecommender(t, WithPipeline(post))

	res, err := rec.Recommend(context.Background(), "Alpha, Gamma, 2")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if want := []string{"Beta"}; !slices.Equal(res.Recommendations, want) {
		t.Errorf("Recommendations = %q, want %q", res.Recommendations, want)
	}
}

func TestRecommender_Cache(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()
	c := cache.New(s, "test", 0)
	rec := newRecommender(t, WithCache(c))
	ctx := context.Background()

	res, err := rec.Recommend(ctx, " Alpha ,1")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	e, ok, err := c.Get(ctx, "Alpha, 1")
	if err != nil || !ok {
		t.Fatalf("cache Get() = %v, %v, %v; want stored entry", e, ok, err)
	}
	if !slices.Equal(e.Recommendations, res.Recommendations) {
		t.Errorf("cached = %q, want %q", e.Recommendations, res.Recommendations)
	}

	// 命中缓存时直接返回缓存内容
	if err := c.Set(ctx, "Alpha, 1", &cache.Entry{Recommendations: []string{"Gamma"}, Resolved: []string{"Alpha"}}); err != nil {
		t.Fatalf("cache Set() error = %v", err)
	}
	res, err = rec.Recommend(ctx, "Alpha, 1")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if want := []string{"Gamma"}; !slices.Equal(res.Recommendations, want) {
		t.Errorf("Recommendations = %q, want cached %q", res.Recommendations, want)
	}

	// 提示结果不写缓存
	if _, err := rec.Recommend(ctx, "Alpha, 0"); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if _, ok, _ := c.Get(ctx, "Alpha, 0"); ok {
		t.Error("notice result was cached")
	}
}

func TestNewRecommender_NilModel(t *testing.T) {
	if _, err := NewRecommender(nil); err == nil {
		t.Error("NewRecommender(nil) error = nil")
	}
}
