package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/LJTian/WhatHappenedToday/internal/config"
)

// QuoteFetcher 随机名言
type QuoteFetcher struct {
	URL    string
	Client *http.Client
}

func NewQuoteFetcher(cfg *config.Config, client *http.Client) *QuoteFetcher {
	return &QuoteFetcher{URL: cfg.QuoteAPIURL, Client: client}
}

func (q *QuoteFetcher) Name() string {
	return KeyQuote
}

func (q *QuoteFetcher) Fetch(ctx context.Context) (Section, error) {
	var data struct {
		Content string `json:"content"`
		Author  string `json:"author"`
	}
	if err := getJSON(ctx, clientOrDefault(q.Client), q.URL, &data); err != nil {
		return nil, fmt.Errorf("quote: %w", err)
	}
	if strings.TrimSpace(data.Content) == "" {
		return nil, errors.New("quote: empty content")
	}
	return ContentSection{Title: TitleQuote, Content: data.Content + " — " + data.Author}, nil
}

// FactFetcher 随机冷知识
type FactFetcher struct {
	URL    string
	Client *http.Client
}

func NewFactFetcher(cfg *config.Config, client *http.Client) *FactFetcher {
	return &FactFetcher{URL: cfg.FactAPIURL, Client: client}
}

func (f *FactFetcher) Name() string {
	return KeyFact
}

func (f *FactFetcher) Fetch(ctx context.Context) (Section, error) {
	var data struct {
		Text string `json:"text"`
	}
	if err := getJSON(ctx, clientOrDefault(f.Client), f.URL, &data); err != nil {
		return nil, fmt.Errorf("fact: %w", err)
	}
	if strings.TrimSpace(data.Text) == "" {
		return nil, errors.New("fact: empty text")
	}
	return ContentSection{Title: TitleFact, Content: data.Text}, nil
}

// HistoryFetcher 历史上的今天，取第一条事件
type HistoryFetcher struct {
	URL    string
	Client *http.Client
}

func NewHistoryFetcher(cfg *config.Config, client *http.Client) *HistoryFetcher {
	return &HistoryFetcher{URL: cfg.HistoryAPIURL, Client: client}
}

func (h *HistoryFetcher) Name() string {
	return KeyHistory
}

func (h *HistoryFetcher) Fetch(ctx context.Context) (Section, error) {
	var data struct {
		Data struct {
			Events []struct {
				Text string `json:"text"`
			} `json:"Events"`
		} `json:"data"`
	}
	if err := getJSON(ctx, clientOrDefault(h.Client), h.URL, &data); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	if len(data.Data.Events) == 0 {
		return nil, errors.New("history: no events in response")
	}
	return ContentSection{Title: TitleHistory, Content: data.Data.Events[0].Text}, nil
}
