package model

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rushteam/topicrec/core"
)

// 产物格式
const (
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatSQLite = "sqlite"
	FormatStore  = "store" // 存放在 core.Store 某个 key 下的 JSON 产物
)

// Source 描述从哪里加载主题模型。
type Source struct {
	Format string     // json / yaml / sqlite / store；为空时按 Path 扩展名推断
	Path   string     // 文件路径（json / yaml / sqlite）
	Store  core.Store // FormatStore 使用
	Key    string     // FormatStore 使用
}

// Load 按 Source 加载主题模型。
func Load(ctx context.Context, src Source) (*TopicModel, error) {
	format := src.Format
	if format == "" {
		format = formatFromPath(src.Path)
	}
	switch format {
	case FormatJSON, FormatYAML:
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		if format == FormatJSON {
			return DecodeJSON(bytes.NewReader(data))
		}
		return DecodeYAML(bytes.NewReader(data))
	case FormatSQLite:
		return LoadSQLite(ctx, src.Path)
	case FormatStore:
		return LoadFromStore(ctx, src.Store, src.Key)
	default:
		return nil, core.NewDomainErrorf(core.ModuleModel, core.ErrorCodeNotSupported, "model: unsupported artifact format %q", format)
	}
}

// Save 按 Source 写出主题模型，格式规则与 Load 相同。
func Save(ctx context.Context, dst Source, m *TopicModel) error {
	format := dst.Format
	if format == "" {
		format = formatFromPath(dst.Path)
	}
	switch format {
	case FormatJSON, FormatYAML:
		f, err := os.Create(dst.Path)
		if err != nil {
			return fmt.Errorf("create file: %w", err)
		}
		if format == FormatJSON {
			err = EncodeJSON(f, m)
		} else {
			err = EncodeYAML(f, m)
		}
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return err
	case FormatSQLite:
		return WriteSQLite(ctx, dst.Path, m)
	case FormatStore:
		if dst.Store == nil {
			return core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput, "model: store is nil")
		}
		return SaveToStore(ctx, dst.Store, dst.Key, m)
	default:
		return core.NewDomainErrorf(core.ModuleModel, core.ErrorCodeNotSupported, "model: unsupported artifact format %q", format)
	}
}

// LoadFromStore 从 core.Store 的 key 读取 JSON 产物。
func LoadFromStore(ctx context.Context, s core.Store, key string) (*TopicModel, error) {
	if s == nil {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput, "model: store is nil")
	}
	data, err := s.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get %s from %s: %w", key, s.Name(), err)
	}
	return DecodeJSON(bytes.NewReader(data))
}

// SaveToStore 将模型以 JSON 产物写入 core.Store 的 key（不过期）。
func SaveToStore(ctx context.Context, s core.Store, key string, m *TopicModel) error {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, m); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return s.Set(ctx, key, buf.Bytes())
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return ""
	}
}
