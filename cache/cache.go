// Package cache 缓存查询结果。
//
// 同一份主题模型下，相同查询的结果是确定的，因此可以直接缓存。
// 底层使用 core.Store（内存或 Redis），多进程可共享。
package cache

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/rushteam/topicrec/core"
)

const keyPrefix = "topicrec:q:"

// Entry 是缓存的查询结果。
type Entry struct {
	Recommendations []string `json:"recommendations"`
	Resolved        []string `json:"resolved"`
}

// ResultCache 以规范化查询串为 key 缓存结果。
type ResultCache struct {
	store     core.Store
	namespace string
	ttl       int
}

// New 创建结果缓存。namespace 用于区分不同的模型产物，ttl 单位为秒（<= 0 不过期）。
func New(store core.Store, namespace string, ttl int) *ResultCache {
	return &ResultCache{store: store, namespace: namespace, ttl: ttl}
}

// Backend 返回底层存储名称。
func (c *ResultCache) Backend() string { return c.store.Name() }

// Key 返回查询对应的存储 key。
func (c *ResultCache) Key(query string) string {
	if c.namespace == "" {
		return keyPrefix + query
	}
	return keyPrefix + c.namespace + ":" + query
}

// Get 读取缓存，未命中时返回 (nil, false, nil)。
func (c *ResultCache) Get(ctx context.Context, query string) (*Entry, bool, error) {
	data, err := c.store.Get(ctx, c.Key(query))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return &e, true, nil
}

// Set 写入缓存。
func (c *ResultCache) Set(ctx context.Context, query string, e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.store.Set(ctx, c.Key(query), data, c.ttl); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
