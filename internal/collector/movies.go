package collector

import (
	"context"
	"fmt"
	"net/http"

	"github.com/LJTian/WhatHappenedToday/internal/config"
	"github.com/samber/lo"
)

const (
	moviesMaxItems    = 5
	moviesOverviewLen = 100
)

// MoviesFetcher 拉取当日热门电影，取前 5 部，简介截断到 100 个字符
type MoviesFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewMoviesFetcher(cfg *config.Config, client *http.Client) *MoviesFetcher {
	return &MoviesFetcher{
		BaseURL: cfg.TMDBAPIURL,
		APIKey:  cfg.TMDBAPIKey,
		Client:  client,
	}
}

func (m *MoviesFetcher) Name() string {
	return KeyEntertainment
}

type tmdbMovie struct {
	Title    string `json:"title"`
	Overview string `json:"overview"`
}

type tmdbTrendingResp struct {
	Results []tmdbMovie `json:"results"`
}

func (m *MoviesFetcher) Fetch(ctx context.Context) (Section, error) {
	u, err := withQuery(m.BaseURL, map[string]string{"api_key": m.APIKey})
	if err != nil {
		return nil, fmt.Errorf("movies: %w", err)
	}

	var data tmdbTrendingResp
	if err := getJSON(ctx, clientOrDefault(m.Client), u, &data); err != nil {
		return nil, fmt.Errorf("movies: %w", err)
	}

	top := lo.Slice(data.Results, 0, moviesMaxItems)
	items := lo.Map(top, func(mv tmdbMovie, _ int) string {
		return formatMovie(mv)
	})
	return NewListSection(TitleEntertainment, items), nil
}

// formatMovie 形如 "<title> — <简介前 100 个字符>..."
func formatMovie(mv tmdbMovie) string {
	return mv.Title + " — " + truncateRunes(mv.Overview, moviesOverviewLen) + "..."
}

// truncateRunes 按 rune 截断，不追加省略号
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
