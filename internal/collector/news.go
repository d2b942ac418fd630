package collector

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/LJTian/WhatHappenedToday/internal/config"
	"github.com/samber/lo"
)

const newsPageSize = 5

// NewsFetcher 通过 headlines API 拉取头条；Category 非空时按分类过滤（如 sports）
type NewsFetcher struct {
	Key      string
	Title    string
	BaseURL  string
	APIKey   string
	Country  string
	Category string
	Client   *http.Client
}

func NewNewsFetcher(cfg *config.Config, client *http.Client) *NewsFetcher {
	return &NewsFetcher{
		Key:     KeyNews,
		Title:   TitleNews,
		BaseURL: cfg.NewsAPIURL,
		APIKey:  cfg.NewsAPIKey,
		Country: cfg.NewsCountry,
		Client:  client,
	}
}

func NewSportsFetcher(cfg *config.Config, client *http.Client) *NewsFetcher {
	f := NewNewsFetcher(cfg, client)
	f.Key = KeySports
	f.Title = TitleSports
	f.Category = "sports"
	return f
}

func (n *NewsFetcher) Name() string {
	return n.Key
}

type newsArticle struct {
	Title string `json:"title"`
}

type newsAPIResp struct {
	Status   string        `json:"status"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Articles []newsArticle `json:"articles"`
}

func (n *NewsFetcher) Fetch(ctx context.Context) (Section, error) {
	params := map[string]string{
		"pageSize": strconv.Itoa(newsPageSize),
		"apiKey":   n.APIKey,
	}
	if n.Country != "" {
		params["country"] = n.Country
	}
	if n.Category != "" {
		params["category"] = n.Category
	}
	u, err := withQuery(n.BaseURL, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.Key, err)
	}

	var data newsAPIResp
	if err := getJSON(ctx, clientOrDefault(n.Client), u, &data); err != nil {
		return nil, fmt.Errorf("%s: %w", n.Key, err)
	}
	if data.Status == "error" {
		return nil, fmt.Errorf("%s: api error %s: %s", n.Key, data.Code, data.Message)
	}

	items := lo.Map(data.Articles, func(a newsArticle, _ int) string {
		return a.Title
	})
	return NewListSection(n.Title, items), nil
}
