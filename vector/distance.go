// Package vector 提供主题向量的距离度量与二进制编码。
package vector

import (
	"fmt"
	"math"
	"strings"
)

// Metric 是距离度量类型，值越小表示越相似。
type Metric string

const (
	MetricEuclidean    Metric = "euclidean"
	MetricCosine       Metric = "cosine"
	MetricManhattan    Metric = "manhattan"
	MetricInnerProduct Metric = "inner_product"
)

// DistanceFunc 计算两个等长向量之间的距离。
type DistanceFunc func(a, b []float64) float64

// ParseMetric 解析度量名称（大小写不敏感），空串返回 MetricEuclidean。
func ParseMetric(name string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(name))); m {
	case "":
		return MetricEuclidean, nil
	case MetricEuclidean, MetricCosine, MetricManhattan, MetricInnerProduct:
		return m, nil
	default:
		return "", fmt.Errorf("vector: unknown metric %q", name)
	}
}

// Func 返回度量对应的距离函数。
func (m Metric) Func() (DistanceFunc, error) {
	switch m {
	case MetricEuclidean, "":
		return EuclideanDistance, nil
	case MetricCosine:
		return CosineDistance, nil
	case MetricManhattan:
		return ManhattanDistance, nil
	case MetricInnerProduct:
		return NegativeInnerProduct, nil
	default:
		return nil, fmt.Errorf("vector: unknown metric %q", string(m))
	}
}

// EuclideanDistance 计算欧氏距离（L2）。
func EuclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// ManhattanDistance 计算曼哈顿距离（L1）。
func ManhattanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

// CosineDistance 计算 1 - 余弦相似度。
// 零向量与任意向量的距离记为 1，与 sklearn 的 pairwise cosine 一致。
func CosineDistance(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// NegativeInnerProduct 返回内积的相反数，使“越小越相似”的约定成立。
func NegativeInnerProduct(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return -sum
}
