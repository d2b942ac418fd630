package collector

import (
	"net/http"

	"github.com/LJTian/WhatHappenedToday/internal/config"
)

// Default 按输出顺序返回全部采集器
func Default(cfg *config.Config, client *http.Client) []Fetcher {
	return []Fetcher{
		NewNewsFetcher(cfg, client),
		NewSportsFetcher(cfg, client),
		NewMoviesFetcher(cfg, client),
		NewWeatherFetcher(cfg, client),
		NewMarketsFetcher(cfg, client),
		NewQuoteFetcher(cfg, client),
		NewFactFetcher(cfg, client),
		NewHistoryFetcher(cfg, client),
	}
}
