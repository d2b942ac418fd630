package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/LJTian/WhatHappenedToday/internal/collector"
	"github.com/LJTian/WhatHappenedToday/internal/config"
	"github.com/LJTian/WhatHappenedToday/internal/publisher"
	"github.com/LJTian/WhatHappenedToday/internal/scheduler"
	"github.com/LJTian/WhatHappenedToday/internal/sentrykit"
	"github.com/spf13/cobra"
)

var (
	outputPath string
	noPublish  bool
)

// 只执行一轮构建（默认同时发布）后退出，适合手动触发或外部 cron
var rootCmd = &cobra.Command{
	Use:   "collect",
	Short: "Build today's snapshot once and publish it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config.SetupLogger()
		cfg := config.Load()
		if outputPath != "" {
			cfg.OutputPath = outputPath
		}

		flush, err := sentrykit.Init(cfg.SentryDSN, cfg.AppEnv)
		if err != nil {
			slog.Warn("init sentry failed", "err", err)
		}
		defer flush()

		client := &http.Client{Timeout: cfg.HTTPTimeout}
		opts := scheduler.Options{
			Fetchers:   collector.Default(cfg, client),
			OutputPath: cfg.OutputPath,
			Location:   cfg.Location(),
		}
		if !noPublish {
			opts.Publisher = publisher.NewGitHubPublisher(cfg, client)
		}

		s, err := scheduler.New("", opts)
		if err != nil {
			return err
		}

		report, err := s.RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		slog.Info("collect done",
			"output", report.OutputPath,
			"lastUpdated", report.LastUpdated,
			"fallbacks", report.Fallbacks,
			"published", report.Publish != nil,
		)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Override the output file path (OUTPUT_PATH)")
	rootCmd.Flags().BoolVar(&noPublish, "no-publish", false, "Only write the local file, skip publishing")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
