package sentrykit

import (
	"context"
	"time"

	"github.com/LJTian/WhatHappenedToday/internal/errlvl"
	"github.com/getsentry/sentry-go"
)

const flushTimeout = 2 * time.Second

// Init 初始化 Sentry；dsn 为空时不启用，返回的 flush 可直接 defer
func Init(dsn, env string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		AttachStacktrace: true,
	})
	if err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(flushTimeout) }, nil
}

// Hub 从 ctx 中取 hub，没有则克隆当前 hub
func Hub(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub().Clone()
}

// WithHub 为一次运行克隆独立的 hub，面包屑不会串到别的运行里
func WithHub(ctx context.Context, tags map[string]string) context.Context {
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
	})
	return sentry.SetHubOnContext(ctx, hub)
}

// CaptureError 按 errlvl 级别上报错误
func CaptureError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	hub := Hub(ctx)
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(Level(errlvl.LevelOf(err)))
		hub.CaptureException(err)
	})
}

// Breadcrumb 记录一条面包屑，用于回溯某次运行里哪些板块走了兜底
func Breadcrumb(ctx context.Context, category, message string) {
	Hub(ctx).AddBreadcrumb(&sentry.Breadcrumb{
		Category: category,
		Message:  message,
		Level:    sentry.LevelWarning,
	}, nil)
}

// Level 将 errlvl 映射为 Sentry 级别
func Level(l errlvl.Lvl) sentry.Level {
	switch l {
	case errlvl.DEBUG:
		return sentry.LevelDebug
	case errlvl.INFO:
		return sentry.LevelInfo
	case errlvl.WARN:
		return sentry.LevelWarning
	case errlvl.FATAL:
		return sentry.LevelFatal
	default:
		return sentry.LevelError
	}
}
