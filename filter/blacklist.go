package filter

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/rushteam/topicrec/core"
)

// BlacklistFilter 是黑名单过滤器，按规范标题过滤物品。
//
// 在 FilterNode 中使用时，存储中的黑名单每次查询只读取一次（见 Prepare）。
type BlacklistFilter struct {
	// Titles 是内存中的黑名单标题
	Titles []string

	// Store 用于从存储中读取黑名单（可选），值为 JSON 字符串数组
	Store core.Store

	// Key 是 Store 中的黑名单 key（可选）
	Key string
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(titles []string, store core.Store, key string) *BlacklistFilter {
	return &BlacklistFilter{
		Titles: titles,
		Store:  store,
		Key:    key,
	}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

// ShouldFilter 判断单个物品，会读取一次存储；批量过滤请经由 FilterNode。
func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	set, err := f.Prepare(ctx, rctx)
	if err != nil {
		return false, err
	}
	return set.ShouldFilter(ctx, rctx, item)
}

// Prepare 合并内存黑名单与存储中的黑名单。
// 存储读取失败时返回只含内存黑名单的过滤器和错误。
func (f *BlacklistFilter) Prepare(ctx context.Context, _ *core.RecommendContext) (Filter, error) {
	set := make(titleSet, len(f.Titles))
	for _, title := range f.Titles {
		set[title] = struct{}{}
	}
	if f.Store == nil || f.Key == "" {
		return set, nil
	}

	data, err := f.Store.Get(ctx, f.Key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return set, nil
		}
		return set, fmt.Errorf("blacklist %s: %w", f.Key, err)
	}
	var titles []string
	if err := json.Unmarshal(data, &titles); err != nil {
		return set, fmt.Errorf("blacklist %s: %w", f.Key, err)
	}
	for _, title := range titles {
		set[title] = struct{}{}
	}
	return set, nil
}

// titleSet 是一次查询内已加载的黑名单。
type titleSet map[string]struct{}

func (s titleSet) Name() string { return "filter.blacklist" }

func (s titleSet) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	if item == nil {
		return true, nil
	}
	_, ok := s[item.Title]
	return ok, nil
}

var _ Preparer = (*BlacklistFilter)(nil)
