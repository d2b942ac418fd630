package collector

// 快照板块 key，与输出 JSON 字段一一对应
const (
	KeyNews          = "news"
	KeySports        = "sports"
	KeyEntertainment = "entertainment"
	KeyWeather       = "weather"
	KeyMarkets       = "markets"
	KeyQuote         = "quote"
	KeyFact          = "fact"
	KeyHistory       = "history"
)

const (
	TitleNews          = "Top News"
	TitleSports        = "Sports Updates"
	TitleEntertainment = "Entertainment Buzz"
	TitleWeather       = "Weather Today"
	TitleMarkets       = "Market Snapshot"
	TitleQuote         = "Quote of the Day"
	TitleFact          = "Quick Fact"
	TitleHistory       = "Today in History"
)

// Keys 按输出顺序列出所有采集板块（trends 为常量，不在其中）
var Keys = []string{
	KeyNews,
	KeySports,
	KeyEntertainment,
	KeyWeather,
	KeyMarkets,
	KeyQuote,
	KeyFact,
	KeyHistory,
}

var fallbacks = map[string]Section{
	KeyNews:          NewListSection(TitleNews, []string{"Top news is unavailable right now. Please check back later."}),
	KeySports:        NewListSection(TitleSports, []string{"Sports updates are unavailable right now. Please check back later."}),
	KeyEntertainment: NewListSection(TitleEntertainment, []string{"Entertainment buzz is unavailable right now. Please check back later."}),
	KeyWeather:       NewListSection(TitleWeather, []string{"Weather data is unavailable right now."}),
	KeyMarkets:       NewListSection(TitleMarkets, []string{"Market data is unavailable right now."}),
	KeyQuote:         ContentSection{Title: TitleQuote, Content: "Every day is a fresh start."},
	KeyFact:          ContentSection{Title: TitleFact, Content: "Fun fact unavailable today. Try again tomorrow!"},
	KeyHistory:       ContentSection{Title: TitleHistory, Content: "History data is unavailable right now."},
}

// Fallback 返回某个板块的兜底内容；未知 key 返回以 key 为标题的空列表
func Fallback(key string) Section {
	if sec, ok := fallbacks[key]; ok {
		if ls, ok := sec.(ListSection); ok {
			// 复制一份，调用方修改不影响表
			return NewListSection(ls.Title, append([]string(nil), ls.Items...))
		}
		return sec
	}
	return NewListSection(key, nil)
}
