package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/LJTian/WhatHappenedToday/internal/scheduler"
	"github.com/LJTian/WhatHappenedToday/internal/storage"
	"github.com/gin-gonic/gin"
)

const liveness = "WhatHappenedToday bot is running. Hit /run to trigger an update."

// Runner 触发一次构建+发布
type Runner interface {
	RunOnce(ctx context.Context) (*scheduler.Report, error)
}

type Server struct {
	runner     Runner
	store      *storage.Store
	outputPath string
}

func NewServer(runner Runner, store *storage.Store, outputPath string) *Server {
	return &Server{runner: runner, store: store, outputPath: outputPath}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/", s.index)
	r.GET("/health", s.health)
	r.GET("/run", s.run)
	r.GET("/snapshot", s.snapshot)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/runs", s.listRuns)
	}
}

func (s *Server) index(c *gin.Context) {
	c.String(http.StatusOK, liveness)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// run 同步执行，请求会一直等到发布结束；调用方断开不会中断本次运行
func (s *Server) run(c *gin.Context) {
	report, err := s.runner.RunOnce(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		slog.Error("manual run failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "run_failed",
			"message": "failed to build or publish snapshot",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "snapshot built and published",
		"data":    report,
	})
}

func (s *Server) snapshot(c *gin.Context) {
	doc, ok, err := s.store.LatestSnapshot(c.Request.Context())
	if err != nil {
		slog.Warn("read latest snapshot from redis failed", "err", err)
	}
	if !ok && s.outputPath != "" {
		doc, ok, err = storage.ReadFile(s.outputPath)
		if err != nil {
			slog.Error("read snapshot file failed", "path", s.outputPath, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "internal_error",
				"message": "internal server error",
			})
			return
		}
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "not_found",
			"message": "no snapshot has been built yet",
		})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", doc)
}

func (s *Server) listRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	runs, err := s.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		slog.Error("list runs failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    runs,
	})
}
