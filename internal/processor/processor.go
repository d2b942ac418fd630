package processor

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/LJTian/WhatHappenedToday/internal/collector"
)

// TimestampLayout 快照中 lastUpdated 的展示格式，如 "October 15, 2026 – 07:30 AM"
const TimestampLayout = "January 2, 2006 – 03:04 PM"

const TitleTrends = "Top Social Trends"

// trendTags 固定的话题标签
var trendTags = []string{"#WhatHappenedToday", "#NewsUpdate", "#India", "#World", "#Inspiration"}

// Snapshot 每次运行生成的完整文档，字段固定，任何板块失败时也保留 key
type Snapshot struct {
	LastUpdated   string                   `json:"lastUpdated"`
	News          collector.ListSection    `json:"news"`
	Sports        collector.ListSection    `json:"sports"`
	Entertainment collector.ListSection    `json:"entertainment"`
	Weather       collector.ListSection    `json:"weather"`
	Markets       collector.ListSection    `json:"markets"`
	Quote         collector.ContentSection `json:"quote"`
	Fact          collector.ContentSection `json:"fact"`
	History       collector.ContentSection `json:"history"`
	Trends        collector.ListSection    `json:"trends"`
}

// Assemble 将各板块结果合并成快照。缺失或类型不符的板块一律使用兜底内容，未知 key 忽略
func Assemble(outcomes []collector.Outcome, now time.Time, loc *time.Location) *Snapshot {
	if loc == nil {
		loc = time.UTC
	}
	byKey := make(map[string]collector.Section, len(outcomes))
	for _, o := range outcomes {
		if o.Section != nil {
			byKey[o.Key] = o.Section
		}
	}

	return &Snapshot{
		LastUpdated:   now.In(loc).Format(TimestampLayout),
		News:          listSection(byKey, collector.KeyNews),
		Sports:        listSection(byKey, collector.KeySports),
		Entertainment: listSection(byKey, collector.KeyEntertainment),
		Weather:       listSection(byKey, collector.KeyWeather),
		Markets:       listSection(byKey, collector.KeyMarkets),
		Quote:         contentSection(byKey, collector.KeyQuote),
		Fact:          contentSection(byKey, collector.KeyFact),
		History:       contentSection(byKey, collector.KeyHistory),
		Trends:        collector.NewListSection(TitleTrends, append([]string(nil), trendTags...)),
	}
}

func listSection(byKey map[string]collector.Section, key string) collector.ListSection {
	if ls, ok := byKey[key].(collector.ListSection); ok {
		return collector.NewListSection(ls.Title, ls.Items)
	}
	if ls, ok := collector.Fallback(key).(collector.ListSection); ok {
		return ls
	}
	return collector.NewListSection(key, nil)
}

func contentSection(byKey map[string]collector.Section, key string) collector.ContentSection {
	if cs, ok := byKey[key].(collector.ContentSection); ok {
		return cs
	}
	if cs, ok := collector.Fallback(key).(collector.ContentSection); ok {
		return cs
	}
	return collector.ContentSection{Title: key}
}

// Encode 两空格缩进、不转义 HTML、末尾无换行
func Encode(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Statuses 各板块本次运行状态，写入运行记录
func Statuses(outcomes []collector.Outcome) map[string]any {
	out := make(map[string]any, len(outcomes))
	for _, o := range outcomes {
		entry := map[string]any{"status": string(o.Status)}
		if o.Err != nil {
			entry["error"] = truncateRunes(o.Err.Error(), 200)
		}
		out[o.Key] = entry
	}
	return out
}

// FallbackCount 走了兜底的板块数
func FallbackCount(outcomes []collector.Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Status == collector.StatusFallback {
			n++
		}
	}
	return n
}

// truncateRunes 按 rune 截断并追加省略号
func truncateRunes(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + "…"
}
