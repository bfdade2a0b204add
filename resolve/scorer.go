package resolve

import (
	"fmt"
	"math"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Scorer 计算两个字符串的相似度，取值 0–100，要求对称。
type Scorer func(a, b string) int

// 内置打分器名称
const (
	ScorerIndel       = "indel"
	ScorerLevenshtein = "levenshtein"
)

// ScorerByName 按名称返回打分器，空串返回 IndelRatio。
func ScorerByName(name string) (Scorer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ScorerIndel:
		return IndelRatio, nil
	case ScorerLevenshtein:
		return LevenshteinRatio, nil
	default:
		return nil, fmt.Errorf("resolve: unknown scorer %q", name)
	}
}

// IndelRatio 基于插入/删除编辑距离的相似度：
//
//	round(100 * (len(a) + len(b) - indel(a, b)) / (len(a) + len(b)))
//
// 长度按 rune 计，大小写与空白敏感；相同字符串为 100，仅一方为空为 0。
// 取整采用四舍六入五成双。
func IndelRatio(a, b string) int {
	if a == b {
		return 100
	}
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	// indel(a, b) = len(a) + len(b) - 2*lcs(a, b)
	return roundScore(float64(2*lcsLength(ra, rb)) / float64(total))
}

// LevenshteinRatio 基于标准 Levenshtein 距离的相似度：
//
//	round(100 * (1 - lev(a, b) / max(len(a), len(b))))
func LevenshteinRatio(a, b string) int {
	if a == b {
		return 100
	}
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0
	}
	longest := max(la, lb)
	d := fuzzy.LevenshteinDistance(a, b)
	return roundScore(1 - float64(d)/float64(longest))
}

// lcsLength 计算最长公共子序列长度，O(len(a)*len(b)) 时间，O(min) 空间。
func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func roundScore(ratio float64) int {
	return int(math.RoundToEven(100 * ratio))
}
