// Package resolve 把用户输入的（可能拼错的）标题纠正为最相似的规范标题。
package resolve

import (
	"golang.org/x/text/unicode/norm"

	"github.com/rushteam/topicrec/core"
)

// Match 是一次纠错的结果。
type Match struct {
	Title string // 规范标题
	Index int    // 在候选列表中的下标（即物品 id）
	Score int    // 相似度 0–100
}

// Resolver 是模糊标题纠错器，无状态，可并发使用。
//
// 规则：对每个候选计算 Scorer 分数，取严格最大者；分数相同时保留先出现的候选。
// 默认不设阈值，任何输入都会映射到某个规范标题；设置 MinScore 后，
// 最高分低于阈值时返回 NO_MATCH 错误。
type Resolver struct {
	scorer    Scorer
	minScore  int
	normalize bool
}

// Option 配置 Resolver。
type Option func(*Resolver)

// WithScorer 指定打分器，nil 时忽略。
func WithScorer(s Scorer) Option {
	return func(r *Resolver) {
		if s != nil {
			r.scorer = s
		}
	}
}

// WithMinScore 设置最低相似度，<= 0 表示不设阈值。
func WithMinScore(score int) Option {
	return func(r *Resolver) { r.minScore = score }
}

// WithUnicodeNFC 打分前对输入与候选做 Unicode NFC 规范化，
// 使组合字符与预组合字符视为相同；不改变大小写与空白。
func WithUnicodeNFC(enabled bool) Option {
	return func(r *Resolver) { r.normalize = enabled }
}

// New 创建 Resolver，默认使用 IndelRatio 且不设阈值。
func New(opts ...Option) *Resolver {
	r := &Resolver{scorer: IndelRatio}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve 返回与 raw 最相似的候选。
// 候选为空时返回 NO_MATCH。
func (r *Resolver) Resolve(raw string, candidates []string) (Match, error) {
	if len(candidates) == 0 {
		return Match{}, core.NewDomainError(core.ModuleResolve, core.ErrorCodeNoMatch, "resolve: no candidate titles")
	}
	if r.normalize {
		raw = norm.NFC.String(raw)
	}

	best := Match{Index: -1, Score: -1}
	for i, candidate := range candidates {
		cmp := candidate
		if r.normalize {
			cmp = norm.NFC.String(candidate)
		}
		if score := r.scorer(raw, cmp); score > best.Score {
			best = Match{Title: candidate, Index: i, Score: score}
			if score == 100 {
				break
			}
		}
	}

	if r.minScore > 0 && best.Score < r.minScore {
		return best, core.NewDomainErrorf(core.ModuleResolve, core.ErrorCodeNoMatch,
			"resolve: no title similar to %q (best %q scored %d, need %d)", raw, best.Title, best.Score, r.minScore)
	}
	return best, nil
}
