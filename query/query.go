// Package query 解析批量推荐查询串。
//
// 查询格式：`title_1, title_2, ..., title_k, R`，最后一项为请求的推荐数量。
package query

import (
	"strconv"
	"strings"

	"github.com/rushteam/topicrec/core"
)

// Query 是一次解析后的查询。
type Query struct {
	Titles []string // 原始标题（已去除首尾空白），顺序与输入一致
	Count  int      // 请求的推荐数量 R，可能小于 1，由调用方处理
}

// Parse 按逗号切分查询串：最后一项解析为 R，其余各项为标题。
// 没有逗号、没有标题或 R 不是整数时返回 MALFORMED_QUERY。
// R < 1 不视为解析错误。
func Parse(text string) (Query, error) {
	tokens := strings.Split(text, ",")
	if len(tokens) < 2 {
		return Query{}, malformed("query %q must end with \", <count>\"", text)
	}

	last := strings.TrimSpace(tokens[len(tokens)-1])
	count, err := strconv.Atoi(last)
	if err != nil {
		return Query{}, malformed("recommendation count %q is not an integer", last)
	}

	titles := make([]string, len(tokens)-1)
	for i, tok := range tokens[:len(tokens)-1] {
		titles[i] = strings.TrimSpace(tok)
	}
	return Query{Titles: titles, Count: count}, nil
}

// String 返回规范化后的查询串（各项去除空白后以 ", " 连接），可作为缓存 key。
func (q Query) String() string {
	parts := append(append(make([]string, 0, len(q.Titles)+1), q.Titles...), strconv.Itoa(q.Count))
	return strings.Join(parts, ", ")
}

func malformed(format string, args ...any) error {
	return core.NewDomainErrorf(core.ModuleQuery, core.ErrorCodeMalformedQuery, "query: "+format, args...)
}
