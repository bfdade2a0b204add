// Package conv 从 YAML/JSON 解析出的 map[string]any 中读取 Node 配置。
//
// YAML 解码器会按字面量推断类型：`n: 2` 得到 int，`n: 2.0` 得到 float64，
// 标题 `1917` 得到 int。这里的读取函数把这些差异统一掉。
package conv

import (
	"strconv"
)

// ConfigGet 按 key 取 T，取不到或类型不符时返回 defaultVal。
func ConfigGet[T any](m map[string]any, key string, defaultVal T) T {
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	t, ok := v.(T)
	if !ok {
		return defaultVal
	}
	return t
}

// ConfigGetInt64 按 key 取整数，兼容 int / int64 / uint64 / float64 / float32。
func ConfigGetInt64(m map[string]any, key string, defaultVal int64) int64 {
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	if n, ok := toInt64(v); ok {
		return n
	}
	return defaultVal
}

// ConfigGetStrings 按 key 取字符串列表。
// 数字元素按整数格式化（YAML 会把 1917 这样的标题解析成数字），其它类型的元素被跳过。
func ConfigGetStrings(m map[string]any, key string) []string {
	switch raw := m[key].(type) {
	case []string:
		return raw
	case []any:
		out := make([]string, 0, len(raw))
		for _, e := range raw {
			if s, ok := ToString(e); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// ToString 把字符串或数字转为字符串；bool 与其它类型返回 false。
func ToString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	}
	if n, ok := toInt64(v); ok {
		return strconv.FormatInt(n, 10), true
	}
	return "", false
}

func toInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int64:
		return val, true
	case int32:
		return int64(val), true
	case uint64:
		return int64(val), true
	case float64:
		return int64(val), true
	case float32:
		return int64(val), true
	default:
		return 0, false
	}
}
