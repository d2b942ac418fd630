package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/LJTian/WhatHappenedToday/internal/config"
)

func TestMoviesFetcherFormatsTopFive(t *testing.T) {
	long := strings.Repeat("a", 80) + strings.Repeat("b", 40) // 120 个字符
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "tmdb" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"page":1,"results":[
			{"title":"Movie 1","overview":"` + long + `"},
			{"title":"Movie 2","overview":"Short plot."},
			{"title":"Movie 3","overview":""},
			{"title":"Movie 4","overview":"Four"},
			{"title":"Movie 5","overview":"Five"},
			{"title":"Movie 6","overview":"Six"}
		]}`))
	}))
	defer srv.Close()

	cfg := &config.Config{TMDBAPIURL: srv.URL, TMDBAPIKey: "tmdb"}
	sec, err := NewMoviesFetcher(cfg, srv.Client()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	ls := sec.(ListSection)
	if ls.Title != TitleEntertainment {
		t.Fatalf("Title = %q", ls.Title)
	}

	want := []string{
		"Movie 1 — " + long[:100] + "...",
		"Movie 2 — Short plot....",
		"Movie 3 — ...",
		"Movie 4 — Four...",
		"Movie 5 — Five...",
	}
	if len(ls.Items) != len(want) {
		t.Fatalf("got %d items, want %d", len(ls.Items), len(want))
	}
	for i := range want {
		if ls.Items[i] != want[i] {
			t.Fatalf("Items[%d] = %q, want %q", i, ls.Items[i], want[i])
		}
	}
}

func TestMoviesFetcherFewerThanFive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"title":"Only","overview":"One"}]}`))
	}))
	defer srv.Close()

	cfg := &config.Config{TMDBAPIURL: srv.URL}
	sec, err := NewMoviesFetcher(cfg, srv.Client()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if items := sec.(ListSection).Items; len(items) != 1 || items[0] != "Only — One..." {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("你好世界", 2); got != "你好" {
		t.Fatalf("truncateRunes = %q, want 你好", got)
	}
	if got := truncateRunes("short", 100); got != "short" {
		t.Fatalf("truncateRunes should keep short text: %q", got)
	}
	if got := truncateRunes("abc", 0); got != "" {
		t.Fatalf("truncateRunes with zero limit = %q", got)
	}
}
