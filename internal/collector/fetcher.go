package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/LJTian/WhatHappenedToday/internal/errlvl"
	"github.com/LJTian/WhatHappenedToday/internal/sentrykit"
	"golang.org/x/sync/errgroup"
)

const maxResponseBytes = 1 << 20 // 1MB

// ErrResponseTooLarge 上游响应超过读取上限
var ErrResponseTooLarge = errors.New("response too large")

// Section 快照中的一个板块，只有 ListSection / ContentSection 两种
type Section interface {
	section()
}

// ListSection {title, items}
type ListSection struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// ContentSection {title, content}
type ContentSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (ListSection) section()    {}
func (ContentSection) section() {}

// NewListSection 保证 items 序列化为 [] 而不是 null
func NewListSection(title string, items []string) ListSection {
	if items == nil {
		items = []string{}
	}
	return ListSection{Title: title, Items: items}
}

// Fetcher 抽象每一个数据源；Name 即快照里的板块 key
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) (Section, error)
}

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFallback  Status = "fallback"
)

// Outcome 单个板块的采集结果：成功带数据，失败带兜底内容与原因
type Outcome struct {
	Key     string
	Status  Status
	Section Section
	Err     error
}

// Collect 执行一个 fetcher，任何错误或 panic 都替换为兜底内容，不向上抛
func Collect(ctx context.Context, f Fetcher) (out Outcome) {
	key := f.Name()
	defer func() {
		if r := recover(); r != nil {
			out = fallbackOutcome(ctx, key, errlvl.Wrap(fmt.Errorf("%s: panic: %v", key, r), errlvl.ERROR))
		}
	}()

	sec, err := f.Fetch(ctx)
	if err == nil && sec == nil {
		err = fmt.Errorf("%s: empty section", key)
	}
	if err != nil {
		return fallbackOutcome(ctx, key, errlvl.Wrap(err, errlvl.WARN))
	}
	return Outcome{Key: key, Status: StatusSucceeded, Section: sec}
}

func fallbackOutcome(ctx context.Context, key string, err error) Outcome {
	slog.Warn("fetch failed, using fallback", "section", key, "err", err)
	sentrykit.Breadcrumb(ctx, "collector", fmt.Sprintf("%s fallback: %v", key, err))
	return Outcome{Key: key, Status: StatusFallback, Section: Fallback(key), Err: err}
}

// CollectAll 并发执行所有 fetcher 并等待全部结束，结果顺序与入参一致
func CollectAll(ctx context.Context, fetchers []Fetcher) []Outcome {
	out := make([]Outcome, len(fetchers))
	var g errgroup.Group
	for i, f := range fetchers {
		i, f := i, f
		g.Go(func() error {
			out[i] = Collect(ctx, f)
			return nil
		})
	}
	// 失败已转换为兜底 Outcome，goroutine 恒返回 nil，Wait 只用于等待
	_ = g.Wait()
	return out
}

// HTTPError 上游返回非 2xx
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	return getJSONLimit(ctx, client, rawURL, out, maxResponseBytes)
}

// getJSONLimit 响应超过 limit 时直接报错，不把截断的内容交给解码器
func getJSONLimit(ctx context.Context, client *http.Client, rawURL string, out any, limit int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "WhatHappenedTodayBot/1.0")

	resp, err := client.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			uerr.URL = redactURL(req)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, URL: redactURL(req)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) > limit {
		return fmt.Errorf("%w: more than %d bytes from %s", ErrResponseTooLarge, limit, redactURL(req))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// redactURL 去掉 query，避免 apiKey 进入日志
func redactURL(req *http.Request) string {
	u := *req.URL
	u.RawQuery = ""
	return u.String()
}

// withQuery 在 base 原有 query 之上追加参数
func withQuery(base string, params map[string]string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func clientOrDefault(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return http.DefaultClient
}
