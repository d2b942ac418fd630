package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/LJTian/WhatHappenedToday/internal/collector"
	"github.com/LJTian/WhatHappenedToday/internal/errlvl"
	"github.com/LJTian/WhatHappenedToday/internal/processor"
	"github.com/LJTian/WhatHappenedToday/internal/publisher"
	"github.com/LJTian/WhatHappenedToday/internal/sentrykit"
	"github.com/LJTian/WhatHappenedToday/internal/storage"
	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"
)

// Options 构建与发布所需的依赖；Publisher 为空时只生成本地文件
type Options struct {
	Fetchers   []collector.Fetcher
	Publisher  publisher.Publisher
	Store      *storage.Store
	OutputPath string
	Location   *time.Location
}

type Scheduler struct {
	cron       *cron.Cron
	fetchers   []collector.Fetcher
	publisher  publisher.Publisher
	store      *storage.Store
	outputPath string
	loc        *time.Location
	now        func() time.Time
}

// Report 一次成功运行的摘要，/run 接口原样返回
type Report struct {
	RunID       string            `json:"runId"`
	LastUpdated string            `json:"lastUpdated"`
	OutputPath  string            `json:"outputPath"`
	Fallbacks   int               `json:"fallbacks"`
	Sections    map[string]any    `json:"sections"`
	Publish     *publisher.Result `json:"publish,omitempty"`
}

// New spec 为空时不注册定时任务，只能手动触发
func New(spec string, opts Options) (*Scheduler, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		fetchers:   opts.Fetchers,
		publisher:  opts.Publisher,
		store:      opts.Store,
		outputPath: opts.OutputPath,
		loc:        loc,
		now:        time.Now,
	}

	if spec != "" {
		if _, err := s.cron.AddFunc(spec, s.runScheduled); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		slog.Info("scheduler started", "next", e.Next)
	}
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runScheduled() {
	if _, err := s.RunOnce(context.Background()); err != nil {
		slog.Error("scheduled run failed", "err", err)
	}
}

// Build 采集所有板块、组装快照并覆盖本地输出文件。采集失败不会报错，只有写文件会失败
func (s *Scheduler) Build(ctx context.Context) (*processor.Snapshot, []byte, []collector.Outcome, error) {
	outcomes := collector.CollectAll(ctx, s.fetchers)
	snap := processor.Assemble(outcomes, s.now(), s.loc)

	doc, err := processor.Encode(snap)
	if err != nil {
		return nil, nil, outcomes, errlvl.Wrap(err, errlvl.ERROR)
	}
	if s.outputPath != "" {
		if err := storage.WriteFile(s.outputPath, doc); err != nil {
			return nil, nil, outcomes, errlvl.Wrap(err, errlvl.ERROR)
		}
	}

	slog.Info("snapshot built",
		"path", s.outputPath,
		"bytes", len(doc),
		"fallbacks", processor.FallbackCount(outcomes),
	)
	return snap, doc, outcomes, nil
}

// RunOnce 构建并发布一次。发布失败时返回错误，不会给出成功报告
func (s *Scheduler) RunOnce(ctx context.Context) (*Report, error) {
	started := s.now()
	run := storage.NewRun(started)
	ctx = sentrykit.WithHub(ctx, map[string]string{"run_id": run.ID})
	slog.Info("run started", "run_id", run.ID)

	snap, doc, outcomes, err := s.Build(ctx)
	run.Sections = datatypes.JSONMap(processor.Statuses(outcomes))
	run.Fallbacks = processor.FallbackCount(outcomes)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}

	var res *publisher.Result
	if s.publisher != nil {
		res, err = s.publisher.Publish(ctx, doc, publisher.CommitMessage(started.In(s.loc)))
		if err != nil {
			return nil, s.fail(ctx, run, err)
		}
		run.CommitSHA = res.CommitSHA
	} else {
		slog.Info("no publisher configured, skipping publish", "run_id", run.ID)
	}

	run.Status = storage.RunStatusPublished
	run.FinishedAt = s.now()
	s.record(ctx, run)
	if err := s.store.SaveLatestSnapshot(ctx, doc); err != nil {
		slog.Warn("mirror latest snapshot failed", "err", err)
	}

	slog.Info("run done", "run_id", run.ID, "fallbacks", run.Fallbacks, "commit", run.CommitSHA)
	return &Report{
		RunID:       run.ID,
		LastUpdated: snap.LastUpdated,
		OutputPath:  s.outputPath,
		Fallbacks:   run.Fallbacks,
		Sections:    run.Sections,
		Publish:     res,
	}, nil
}

func (s *Scheduler) fail(ctx context.Context, run *storage.Run, err error) error {
	err = errlvl.Wrap(err, errlvl.ERROR)
	run.Status = storage.RunStatusFailed
	run.Error = err.Error()
	run.FinishedAt = s.now()
	s.record(ctx, run)
	if !errors.Is(err, context.Canceled) {
		sentrykit.CaptureError(ctx, err)
	}
	slog.Error("run failed", "run_id", run.ID, "err", err)
	return err
}

// record 记录失败只打日志，不影响本次运行结果
func (s *Scheduler) record(ctx context.Context, run *storage.Run) {
	if err := s.store.SaveRun(ctx, run); err != nil {
		slog.Warn("save run failed", "run_id", run.ID, "err", err)
	}
	if err := s.store.SaveLastRun(ctx, run); err != nil {
		slog.Warn("mirror last run failed", "run_id", run.ID, "err", err)
	}
}
