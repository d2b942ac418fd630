package collector

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/LJTian/WhatHappenedToday/internal/config"
)

// WeatherFetcher 按城市逐个查询当前天气（摄氏度）；任一城市失败则整个板块走兜底
type WeatherFetcher struct {
	BaseURL string
	APIKey  string
	Cities  []string
	Client  *http.Client
}

func NewWeatherFetcher(cfg *config.Config, client *http.Client) *WeatherFetcher {
	return &WeatherFetcher{
		BaseURL: cfg.WeatherAPIURL,
		APIKey:  cfg.WeatherAPIKey,
		Cities:  cfg.WeatherCities,
		Client:  client,
	}
}

func (w *WeatherFetcher) Name() string {
	return KeyWeather
}

type weatherAPIResp struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

func (w *WeatherFetcher) Fetch(ctx context.Context) (Section, error) {
	items := make([]string, 0, len(w.Cities))
	for _, city := range w.Cities {
		line, err := w.fetchCity(ctx, city)
		if err != nil {
			return nil, fmt.Errorf("weather: %s: %w", city, err)
		}
		items = append(items, line)
	}
	return NewListSection(TitleWeather, items), nil
}

func (w *WeatherFetcher) fetchCity(ctx context.Context, city string) (string, error) {
	u, err := withQuery(w.BaseURL, map[string]string{
		"q":     city,
		"appid": w.APIKey,
		"units": "metric",
	})
	if err != nil {
		return "", err
	}

	var data weatherAPIResp
	if err := getJSON(ctx, clientOrDefault(w.Client), u, &data); err != nil {
		return "", err
	}
	if len(data.Weather) == 0 {
		return "", fmt.Errorf("no weather condition in response")
	}
	return formatWeather(city, data.Main.Temp, data.Weather[0].Description), nil
}

// formatWeather 形如 "Delhi: 31.5°C, haze"
func formatWeather(city string, temp float64, condition string) string {
	return city + ": " + formatNumber(temp) + "°C, " + condition
}

// formatNumber 最短表示：30 而不是 30.00，31.5 而不是 31.50
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
