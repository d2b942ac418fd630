package config

import (
	"io"
	"log/slog"
	"os"
)

// SetupLogger 在 Load 之前调用，保证 "config loaded" 也使用最终格式；
// APP_ENV 与 Load 共用同一份默认值
func SetupLogger() {
	env := newViper().GetString("APP_ENV")
	slog.SetDefault(slog.New(newHandler(env, os.Stderr)))
}

// newHandler 生产环境输出 JSON，便于日志平台采集
func newHandler(env string, w io.Writer) slog.Handler {
	if env == "production" {
		return slog.NewJSONHandler(w, nil)
	}
	return slog.NewTextHandler(w, nil)
}
