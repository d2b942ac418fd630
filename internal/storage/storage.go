package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	KeyLatestSnapshot = "snapshot:latest"
	KeyLastRun        = "run:last"

	RunStatusPublished = "published"
	RunStatusFailed    = "failed"

	defaultRunLimit = 20
	maxRunLimit     = 200
	errorMaxRunes   = 500
)

// Run 一次构建+发布的记录，只保存元数据，不保存快照正文
type Run struct {
	ID         string            `gorm:"primaryKey;size:36" json:"id"`
	StartedAt  time.Time         `gorm:"index" json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
	Status     string            `gorm:"size:16;index" json:"status"` // published / failed
	Error      string            `gorm:"size:512" json:"error,omitempty"`
	CommitSHA  string            `gorm:"size:64" json:"commitSha,omitempty"`
	Fallbacks  int               `json:"fallbacks"`
	Sections   datatypes.JSONMap `gorm:"type:jsonb" json:"sections"`

	CreatedAt time.Time `json:"createdAt"`
}

// NewRun 生成带 ID 的记录
func NewRun(startedAt time.Time) *Run {
	return &Run{ID: uuid.NewString(), StartedAt: startedAt}
}

// Store 可选的持久化：DB 为空时不记录运行历史，Redis 为空时不镜像最新快照
type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewStore(dsn, redisAddr string) (*Store, error) {
	s := &Store{}

	if dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(&Run{}); err != nil {
			return nil, err
		}
		s.DB = db
	}

	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis ping failed", "addr", redisAddr, "err", err)
		}
		s.Redis = rdb
	}

	return s, nil
}

func (s *Store) hasDB() bool    { return s != nil && s.DB != nil }
func (s *Store) hasRedis() bool { return s != nil && s.Redis != nil }

// SaveRun 写入运行记录；未配置数据库时忽略
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if !s.hasDB() || run == nil {
		return nil
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.Error = truncateRunes(toValidUTF8(run.Error), errorMaxRunes)
	return s.DB.WithContext(ctx).Create(run).Error
}

// ListRuns 按开始时间倒序返回最近的运行记录
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if !s.hasDB() {
		return []Run{}, nil
	}
	var list []Run
	err := s.DB.WithContext(ctx).
		Order("started_at DESC").
		Limit(normalizeLimit(limit)).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// SaveLatestSnapshot 覆盖 Redis 中的最新快照，不设过期
func (s *Store) SaveLatestSnapshot(ctx context.Context, doc []byte) error {
	if !s.hasRedis() {
		return nil
	}
	return s.Redis.Set(ctx, KeyLatestSnapshot, doc, 0).Err()
}

// LatestSnapshot 读取最新快照；不存在时 ok 为 false
func (s *Store) LatestSnapshot(ctx context.Context) (doc []byte, ok bool, err error) {
	if !s.hasRedis() {
		return nil, false, nil
	}
	bs, err := s.Redis.Get(ctx, KeyLatestSnapshot).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return bs, true, nil
}

// SaveLastRun 镜像最近一次运行的摘要
func (s *Store) SaveLastRun(ctx context.Context, run *Run) error {
	if !s.hasRedis() || run == nil {
		return nil
	}
	bs, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, KeyLastRun, bs, 0).Err()
}

// Close 释放连接
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.Redis != nil {
		errs = append(errs, s.Redis.Close())
	}
	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultRunLimit
	}
	if limit > maxRunLimit {
		return maxRunLimit
	}
	return limit
}

// toValidUTF8 上游错误信息可能带非法字节，入库前规范化
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
