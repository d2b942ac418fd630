package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LJTian/WhatHappenedToday/internal/api"
	"github.com/LJTian/WhatHappenedToday/internal/collector"
	"github.com/LJTian/WhatHappenedToday/internal/config"
	"github.com/LJTian/WhatHappenedToday/internal/publisher"
	"github.com/LJTian/WhatHappenedToday/internal/scheduler"
	"github.com/LJTian/WhatHappenedToday/internal/sentrykit"
	"github.com/LJTian/WhatHappenedToday/internal/storage"
	"github.com/gin-gonic/gin"
)

func main() {
	config.SetupLogger()
	cfg := config.Load()

	flush, err := sentrykit.Init(cfg.SentryDSN, cfg.AppEnv)
	if err != nil {
		slog.Warn("init sentry failed", "err", err)
	}
	defer flush()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		slog.Error("init store failed", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	client := &http.Client{Timeout: cfg.HTTPTimeout}
	s, err := scheduler.New(cfg.CronSpec, scheduler.Options{
		Fetchers:   collector.Default(cfg, client),
		Publisher:  publisher.NewGitHubPublisher(cfg, client),
		Store:      store,
		OutputPath: cfg.OutputPath,
		Location:   cfg.Location(),
	})
	if err != nil {
		slog.Error("init scheduler failed", "spec", cfg.CronSpec, "err", err)
		os.Exit(1)
	}
	s.Start()
	defer s.Stop()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	api.NewServer(s, store, cfg.OutputPath).RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("starting api server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server exit", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "err", err)
	}
	slog.Info("server stopped")
}
