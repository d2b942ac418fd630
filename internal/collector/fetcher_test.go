package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LJTian/WhatHappenedToday/internal/errlvl"
)

type stubFetcher struct {
	name  string
	sec   Section
	err   error
	panic bool
	delay time.Duration
	calls *int32
}

func (s *stubFetcher) Name() string { return s.name }

func (s *stubFetcher) Fetch(ctx context.Context) (Section, error) {
	if s.calls != nil {
		atomic.AddInt32(s.calls, 1)
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.panic {
		panic("unexpected payload shape")
	}
	return s.sec, s.err
}

func TestCollectSucceeded(t *testing.T) {
	sec := NewListSection(TitleNews, []string{"a"})
	out := Collect(context.Background(), &stubFetcher{name: KeyNews, sec: sec})
	if out.Status != StatusSucceeded || out.Err != nil {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.Key != KeyNews {
		t.Fatalf("Key = %q", out.Key)
	}
}

func TestCollectSubstitutesFallback(t *testing.T) {
	cases := []struct {
		name string
		f    *stubFetcher
	}{
		{"error", &stubFetcher{name: KeyNews, err: errors.New("connection refused")}},
		{"panic", &stubFetcher{name: KeyNews, panic: true}},
		{"nil section", &stubFetcher{name: KeyNews}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out := Collect(context.Background(), c.f)
			if out.Status != StatusFallback {
				t.Fatalf("Status = %q, want fallback", out.Status)
			}
			if out.Err == nil {
				t.Fatalf("fallback outcome should keep the cause")
			}
			ls, ok := out.Section.(ListSection)
			if !ok || ls.Title != TitleNews || len(ls.Items) != 1 {
				t.Fatalf("unexpected fallback section: %#v", out.Section)
			}
		})
	}
}

func TestCollectErrorLevels(t *testing.T) {
	out := Collect(context.Background(), &stubFetcher{name: KeyFact, err: errors.New("timeout")})
	if errlvl.LevelOf(out.Err) != errlvl.WARN {
		t.Fatalf("fetch error level = %v, want WARN", errlvl.LevelOf(out.Err))
	}
	out = Collect(context.Background(), &stubFetcher{name: KeyFact, panic: true})
	if errlvl.LevelOf(out.Err) != errlvl.ERROR {
		t.Fatalf("panic level = %v, want ERROR", errlvl.LevelOf(out.Err))
	}
}

func TestCollectAllRunsConcurrentlyAndKeepsOrder(t *testing.T) {
	var calls int32
	fetchers := []Fetcher{
		&stubFetcher{name: KeyNews, sec: NewListSection(TitleNews, []string{"n"}), delay: 200 * time.Millisecond, calls: &calls},
		&stubFetcher{name: KeySports, err: errors.New("down"), delay: 200 * time.Millisecond, calls: &calls},
		&stubFetcher{name: KeyQuote, sec: ContentSection{Title: TitleQuote, Content: "q"}, delay: 200 * time.Millisecond, calls: &calls},
	}

	start := time.Now()
	outs := CollectAll(context.Background(), fetchers)
	elapsed := time.Since(start)

	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected 3 fetch calls, got %d", calls)
	}
	// 串行至少 600ms
	if elapsed >= 550*time.Millisecond {
		t.Fatalf("fetchers did not run concurrently: %v", elapsed)
	}
	if len(outs) != 3 {
		t.Fatalf("got %d outcomes", len(outs))
	}
	wantKeys := []string{KeyNews, KeySports, KeyQuote}
	wantStatus := []Status{StatusSucceeded, StatusFallback, StatusSucceeded}
	for i := range outs {
		if outs[i].Key != wantKeys[i] || outs[i].Status != wantStatus[i] {
			t.Fatalf("outs[%d] = %s/%s, want %s/%s", i, outs[i].Key, outs[i].Status, wantKeys[i], wantStatus[i])
		}
	}
}

func TestFallbackShapes(t *testing.T) {
	for _, key := range Keys {
		sec := Fallback(key)
		switch s := sec.(type) {
		case ListSection:
			if s.Title == "" || len(s.Items) == 0 {
				t.Fatalf("fallback for %s has empty list section: %+v", key, s)
			}
		case ContentSection:
			if s.Title == "" || s.Content == "" {
				t.Fatalf("fallback for %s has empty content section: %+v", key, s)
			}
		default:
			t.Fatalf("fallback for %s has unexpected type %T", key, sec)
		}
	}

	unknown := Fallback("unknown").(ListSection)
	if unknown.Title != "unknown" || unknown.Items == nil {
		t.Fatalf("unexpected fallback for unknown key: %#v", unknown)
	}
}

func TestFallbackReturnsCopy(t *testing.T) {
	a := Fallback(KeyNews).(ListSection)
	a.Items[0] = "mutated"
	b := Fallback(KeyNews).(ListSection)
	if b.Items[0] == "mutated" {
		t.Fatalf("Fallback should not share the items slice")
	}
}

func TestWithQueryKeepsExistingParams(t *testing.T) {
	got, err := withQuery("https://example.com/random.json?language=en", map[string]string{"x": "1"})
	if err != nil {
		t.Fatalf("withQuery error: %v", err)
	}
	if got != "https://example.com/random.json?language=en&x=1" {
		t.Fatalf("withQuery = %q", got)
	}
}

func TestGetJSONLimitReportsOversizedBody(t *testing.T) {
	body := `{"text":"` + strings.Repeat("x", 64) + `"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	var out struct {
		Text string `json:"text"`
	}
	err := getJSONLimit(context.Background(), srv.Client(), srv.URL+"?apiKey=secret", &out, 32)
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("expected ErrResponseTooLarge, got %v", err)
	}
	if strings.Contains(err.Error(), "secret") {
		t.Fatalf("error leaks query string: %v", err)
	}

	// 正好等于上限时可以解码
	if err := getJSONLimit(context.Background(), srv.Client(), srv.URL, &out, int64(len(body))); err != nil {
		t.Fatalf("body at the limit should decode: %v", err)
	}
	if len(out.Text) != 64 {
		t.Fatalf("unexpected decoded text length %d", len(out.Text))
	}
}
