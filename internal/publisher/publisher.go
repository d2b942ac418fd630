package publisher

import (
	"context"
	"time"
)

// CommitLayout 提交说明里的时间格式
const CommitLayout = "2006-01-02 15:04"

// Publisher 将快照文档推送到远端仓库
type Publisher interface {
	Publish(ctx context.Context, doc []byte, message string) (*Result, error)
}

// Result 一次发布的结果；PreviousSHA 为空表示远端原本没有该文件
type Result struct {
	Path        string `json:"path"`
	Created     bool   `json:"created"`
	PreviousSHA string `json:"previousSha,omitempty"`
	ContentSHA  string `json:"contentSha"`
	CommitSHA   string `json:"commitSha"`
}

// CommitMessage 形如 "Automated update: 2026-10-15 07:30"
func CommitMessage(t time.Time) string {
	return "Automated update: " + t.Format(CommitLayout)
}
