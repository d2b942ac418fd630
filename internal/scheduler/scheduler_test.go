package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/LJTian/WhatHappenedToday/internal/collector"
	"github.com/LJTian/WhatHappenedToday/internal/errlvl"
	"github.com/LJTian/WhatHappenedToday/internal/publisher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	key string
	sec collector.Section
	err error
}

func (f fakeFetcher) Name() string { return f.key }

func (f fakeFetcher) Fetch(context.Context) (collector.Section, error) {
	return f.sec, f.err
}

type fakePublisher struct {
	calls    int
	doc      []byte
	messages []string
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, doc []byte, message string) (*publisher.Result, error) {
	p.calls++
	p.doc = doc
	p.messages = append(p.messages, message)
	if p.err != nil {
		return nil, p.err
	}
	return &publisher.Result{Path: "data.json", ContentSHA: "c1", CommitSHA: "sha1"}, nil
}

var fixedNow = time.Date(2026, 10, 15, 2, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T, pub publisher.Publisher, fetchers ...collector.Fetcher) (*Scheduler, string) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "data.json")
	s, err := New("", Options{
		Fetchers:   fetchers,
		Publisher:  pub,
		OutputPath: out,
		Location:   time.FixedZone("IST", 5*3600+1800),
	})
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }
	return s, out
}

func TestBuildWritesSnapshotWithFallbacks(t *testing.T) {
	s, out := newTestScheduler(t, nil,
		fakeFetcher{key: collector.KeyNews, sec: collector.NewListSection(collector.TitleNews, []string{"headline"})},
		fakeFetcher{key: collector.KeyFact, err: errors.New("timeout")},
	)

	snap, doc, outcomes, err := s.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, collector.StatusSucceeded, outcomes[0].Status)
	assert.Equal(t, collector.StatusFallback, outcomes[1].Status)
	assert.Equal(t, []string{"headline"}, snap.News.Items)
	assert.Equal(t, collector.Fallback(collector.KeyFact), snap.Fact)
	assert.Equal(t, "October 15, 2026 – 07:30 AM", snap.LastUpdated)

	onDisk, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, doc, onDisk)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(onDisk, &m))
	assert.Len(t, m, 10)
}

func TestBuildFailsWhenOutputNotWritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s, err := New("", Options{OutputPath: filepath.Join(blocker, "data.json")})
	require.NoError(t, err)

	_, _, _, err = s.Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, errlvl.ERROR, errlvl.LevelOf(err))
}

func TestRunOncePublishesWithTimestampedMessage(t *testing.T) {
	pub := &fakePublisher{}
	s, out := newTestScheduler(t, pub,
		fakeFetcher{key: collector.KeyQuote, sec: collector.ContentSection{Title: collector.TitleQuote, Content: "Stay hungry — Jobs"}},
	)

	report, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, 1, pub.calls)
	assert.Equal(t, []string{"Automated update: 2026-10-15 07:30"}, pub.messages)
	onDisk, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, onDisk, pub.doc, "published bytes must match the local file")

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "sha1", report.Publish.CommitSHA)
	assert.Equal(t, 0, report.Fallbacks)
	assert.Contains(t, report.Sections, collector.KeyQuote)
}

func TestRunOnceReturnsPublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("write rejected")}
	s, _ := newTestScheduler(t, pub)

	report, err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "write rejected")
	assert.Equal(t, errlvl.ERROR, errlvl.LevelOf(err))
}

func TestRunOnceWithoutPublisher(t *testing.T) {
	s, out := newTestScheduler(t, nil)

	report, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Nil(t, report.Publish)
	assert.FileExists(t, out)
}

func TestNewValidatesCronSpec(t *testing.T) {
	_, err := New("not a cron spec", Options{})
	require.Error(t, err)

	s, err := New("0 8 * * *", Options{})
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 1)

	s, err = New("", Options{})
	require.NoError(t, err)
	assert.Empty(t, s.cron.Entries())
}
