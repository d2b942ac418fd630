package collector

import (
	"context"
	"fmt"
	"net/http"

	"github.com/LJTian/WhatHappenedToday/internal/config"
	"github.com/samber/lo"
)

// quotes/index 返回全部指数，体积远大于其它接口
const marketsMaxResponseBytes = 8 << 20 // 8MB

// MarketsFetcher 一次拉取全部指数报价，只保留配置的指数（默认 ^BSESN、^NSEI），顺序与接口返回一致
type MarketsFetcher struct {
	BaseURL string
	APIKey  string
	Symbols []string
	Client  *http.Client
}

func NewMarketsFetcher(cfg *config.Config, client *http.Client) *MarketsFetcher {
	return &MarketsFetcher{
		BaseURL: cfg.MarketAPIURL,
		APIKey:  cfg.MarketAPIKey,
		Symbols: cfg.MarketSymbols,
		Client:  client,
	}
}

func (m *MarketsFetcher) Name() string {
	return KeyMarkets
}

type indexQuote struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
}

func (m *MarketsFetcher) Fetch(ctx context.Context) (Section, error) {
	u, err := withQuery(m.BaseURL, map[string]string{"apikey": m.APIKey})
	if err != nil {
		return nil, fmt.Errorf("markets: %w", err)
	}

	// 出错时接口会返回 {"Error Message": ...}，解码成数组失败即走兜底
	var quotes []indexQuote
	if err := getJSONLimit(ctx, clientOrDefault(m.Client), u, &quotes, marketsMaxResponseBytes); err != nil {
		return nil, fmt.Errorf("markets: %w", err)
	}

	indices := lo.Filter(quotes, func(q indexQuote, _ int) bool {
		return lo.Contains(m.Symbols, q.Symbol)
	})
	items := lo.Map(indices, func(q indexQuote, _ int) string {
		name := q.Name
		if name == "" {
			name = q.Symbol
		}
		return name + ": " + formatNumber(q.Price)
	})
	return NewListSection(TitleMarkets, items), nil
}
