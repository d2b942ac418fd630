package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort string
	AppEnv  string

	// CronSpec 为空时不启用定时任务，只能通过 /run 触发
	CronSpec   string
	OutputPath string
	Timezone   string

	HTTPTimeout time.Duration

	NewsAPIKey  string
	NewsAPIURL  string
	NewsCountry string

	WeatherAPIKey string
	WeatherAPIURL string
	WeatherCities []string

	TMDBAPIKey string
	TMDBAPIURL string

	MarketAPIKey  string
	MarketAPIURL  string
	MarketSymbols []string

	QuoteAPIURL   string
	FactAPIURL    string
	HistoryAPIURL string

	GitHubToken    string
	GitHubAPIURL   string
	GitHubOwner    string
	GitHubRepo     string
	GitHubBranch   string
	GitHubPath     string
	CommitterName  string
	CommitterEmail string

	// 以下为空则对应组件不启用
	PostgresDSN string
	RedisAddr   string
	SentryDSN   string
}

var defaults = map[string]any{
	"APP_PORT":        "9000",
	"APP_ENV":         "production",
	"CRON_SPEC":       "",
	"OUTPUT_PATH":     "data.json",
	"TIMEZONE":        "Asia/Kolkata",
	"HTTP_TIMEOUT":    "15s",
	"NEWS_API_URL":    "https://newsapi.org/v2/top-headlines",
	"NEWS_COUNTRY":    "in",
	"WEATHER_API_URL": "https://api.openweathermap.org/data/2.5/weather",
	"WEATHER_CITIES":  "Delhi,Hyderabad",
	"TMDB_API_URL":    "https://api.themoviedb.org/3/trending/movie/day",
	"MARKET_API_URL":  "https://financialmodelingprep.com/api/v3/quotes/index",
	"MARKET_SYMBOLS":  "^BSESN,^NSEI",
	"QUOTE_API_URL":   "https://api.quotable.io/random",
	"FACT_API_URL":    "https://uselessfacts.jsph.pl/random.json?language=en",
	"HISTORY_API_URL": "https://history.muffinlabs.com/date",
	"GITHUB_API_URL":  "https://api.github.com",
	"GITHUB_OWNER":    "sajidenam",
	"GITHUB_REPO":     "whathappenedtoday",
	"GITHUB_BRANCH":   "main",
	"GITHUB_PATH":     "data.json",
	"COMMITTER_NAME":  "sajid-bot",
	"COMMITTER_EMAIL": "sajid@example.com",
}

func Load() *Config {
	return load(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	for k, def := range defaults {
		v.SetDefault(k, def)
	}
	return v
}

func load(v *viper.Viper) *Config {
	getEnv := func(key string) string {
		return strings.TrimSpace(v.GetString(key))
	}

	timeout := v.GetDuration("HTTP_TIMEOUT")
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	cfg := &Config{
		AppPort:     getEnv("APP_PORT"),
		AppEnv:      getEnv("APP_ENV"),
		CronSpec:    getEnv("CRON_SPEC"),
		OutputPath:  getEnv("OUTPUT_PATH"),
		Timezone:    getEnv("TIMEZONE"),
		HTTPTimeout: timeout,

		NewsAPIKey:  getEnv("NEWS_API_KEY"),
		NewsAPIURL:  getEnv("NEWS_API_URL"),
		NewsCountry: getEnv("NEWS_COUNTRY"),

		WeatherAPIKey: getEnv("WEATHER_API_KEY"),
		WeatherAPIURL: getEnv("WEATHER_API_URL"),
		WeatherCities: splitList(getEnv("WEATHER_CITIES")),

		TMDBAPIKey: getEnv("TMDB_API_KEY"),
		TMDBAPIURL: getEnv("TMDB_API_URL"),

		MarketAPIKey:  getEnv("MARKET_API_KEY"),
		MarketAPIURL:  getEnv("MARKET_API_URL"),
		MarketSymbols: splitList(getEnv("MARKET_SYMBOLS")),

		QuoteAPIURL:   getEnv("QUOTE_API_URL"),
		FactAPIURL:    getEnv("FACT_API_URL"),
		HistoryAPIURL: getEnv("HISTORY_API_URL"),

		GitHubToken:    getEnv("GITHUB_TOKEN"),
		GitHubAPIURL:   strings.TrimRight(getEnv("GITHUB_API_URL"), "/"),
		GitHubOwner:    getEnv("GITHUB_OWNER"),
		GitHubRepo:     getEnv("GITHUB_REPO"),
		GitHubBranch:   getEnv("GITHUB_BRANCH"),
		GitHubPath:     getEnv("GITHUB_PATH"),
		CommitterName:  getEnv("COMMITTER_NAME"),
		CommitterEmail: getEnv("COMMITTER_EMAIL"),

		PostgresDSN: getEnv("POSTGRES_DSN"),
		RedisAddr:   getEnv("REDIS_ADDR"),
		SentryDSN:   getEnv("SENTRY_DSN"),
	}

	// 密钥不入日志
	slog.Info("config loaded",
		"port", cfg.AppPort,
		"cron", cfg.CronSpec,
		"output", cfg.OutputPath,
		"repo", cfg.GitHubOwner+"/"+cfg.GitHubRepo,
		"branch", cfg.GitHubBranch,
	)
	return cfg
}

// Location 解析配置的时区，无效时退回 UTC
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		slog.Warn("invalid timezone, using UTC", "timezone", c.Timezone, "err", err)
		return time.UTC
	}
	return loc
}

// splitList 解析逗号分隔的列表，去掉空白项
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
