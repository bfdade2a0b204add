package vector

import (
	"math"
	"testing"
)

func TestDistanceFuncs(t *testing.T) {
	a := []float64{1, 0}
	b := []float64{0.9, 0.1}
	c := []float64{0, 1}

	tests := []struct {
		name   string
		metric Metric
		x, y   []float64
		want   float64
	}{
		{"euclidean near", MetricEuclidean, a, b, math.Sqrt(0.02)},
		{"euclidean far", MetricEuclidean, a, c, math.Sqrt2},
		{"euclidean self", MetricEuclidean, a, a, 0},
		{"manhattan", MetricManhattan, a, c, 2},
		{"cosine orthogonal", MetricCosine, a, c, 1},
		{"cosine self", MetricCosine, b, b, 0},
		{"cosine zero vector", MetricCosine, []float64{0, 0}, a, 1},
		{"inner product", MetricInnerProduct, a, b, -0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := tt.metric.Func()
			if err != nil {
				t.Fatalf("Func() error = %v", err)
			}
			if got := fn(tt.x, tt.y); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("distance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseMetric(t *testing.T) {
	if m, err := ParseMetric(""); err != nil || m != MetricEuclidean {
		t.Errorf("ParseMetric(\"\") = %q, %v; want euclidean", m, err)
	}
	if m, err := ParseMetric(" Cosine "); err != nil || m != MetricCosine {
		t.Errorf("ParseMetric(Cosine) = %q, %v; want cosine", m, err)
	}
	if _, err := ParseMetric("hamming"); err == nil {
		t.Error("ParseMetric(hamming) expected error")
	}
}

func TestWeightsEncoding(t *testing.T) {
	in := []float64{0, 0.25, 1e-9, 3.5}
	out, err := DecodeWeights(EncodeWeights(in))
	if err != nil {
		t.Fatalf("DecodeWeights() error = %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
	if _, err := DecodeWeights([]byte{1, 2, 3}); err == nil {
		t.Error("DecodeWeights(3 bytes) expected error")
	}
}
