// Package logging 提供基于 zerolog 的结构化日志。
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Logger().Info().Int("items", n).Msg("topic model loaded")
//	log := logging.With("service")
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config 是日志配置。
type Config struct {
	// Level：trace / debug / info / warn / error，默认 info
	Level string `koanf:"level"`

	// Format：json / console，默认 json
	Format string `koanf:"format"`

	// Output 为空时写 stderr
	Output io.Writer `koanf:"-"`
}

var (
	mu     sync.RWMutex
	global = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Init 按配置初始化全局 logger，可重复调用。
func Init(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()

	mu.Lock()
	global = logger
	mu.Unlock()
	return logger
}

// ParseLevel 解析日志级别，无法识别时返回 info。
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Logger 返回全局 logger。
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// With 返回带 component 字段的子 logger。
func With(component string) zerolog.Logger {
	return Logger().With().Str("component", component).Logger()
}
