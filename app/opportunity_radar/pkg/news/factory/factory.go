package factory

import (
	"fmt"
	"time"

	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/config"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/model"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/news"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/newsapi"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/rss"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/searxng"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/tavily"
)

// NewFetcher 根据配置创建新闻抓取实例
func NewFetcher(cfg *config.Config) (news.Fetcher, error) {
	provider := cfg.News.Provider
	if provider == "" {
		provider = detectProvider(cfg)
		if provider == "" {
			return nil, fmt.Errorf("%w: no news provider configured (set NEWSAPI_KEY or news.provider)", news.ErrConfigMissing)
		}
	}

	switch provider {
	case config.ProviderNewsAPI:
		c := cfg.News.NewsAPI
		if c.APIKey == "" {
			return nil, fmt.Errorf("%w: newsapi api key", news.ErrConfigMissing)
		}
		return newsapi.NewClient(c.APIKey, newsapi.Options{
			BaseURL:    c.BaseURL,
			Country:    c.Country,
			Language:   c.Language,
			LocalQuery: c.LocalQuery,
			PageSize:   c.PageSize,
			Timeout:    time.Duration(c.Timeout) * time.Second,
		}), nil

	case config.ProviderTavily:
		c := cfg.News.Tavily
		if c.APIKey == "" {
			return nil, fmt.Errorf("%w: tavily api key", news.ErrConfigMissing)
		}
		return tavily.NewClient(c.APIKey, c.BaseURL, config.ScopeQueries(c.Queries), c.MaxResults, c.DaysBack, c.Timeout), nil

	case config.ProviderSearXNG:
		c := cfg.News.SearXNG
		if c.BaseURL == "" {
			return nil, fmt.Errorf("%w: searxng base url", news.ErrConfigMissing)
		}
		return searxng.NewClient(c.BaseURL, c.Timeout, config.ScopeQueries(c.Queries)), nil

	case config.ProviderRSS:
		if len(cfg.News.RSS.Feeds) == 0 {
			return nil, fmt.Errorf("%w: rss feeds", news.ErrConfigMissing)
		}
		feeds := make(map[model.Scope][]string, len(cfg.News.RSS.Feeds))
		for scope, urls := range cfg.News.RSS.Feeds {
			s, err := model.ParseScope(scope)
			if err != nil {
				return nil, fmt.Errorf("rss feeds: %w", err)
			}
			feeds[s] = append(feeds[s], urls...)
		}
		return rss.NewClient(feeds, cfg.News.RSS.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown news provider: %s", provider)
	}
}

// 未指定 provider 时按已有凭据回退
func detectProvider(cfg *config.Config) string {
	switch {
	case cfg.News.NewsAPI.APIKey != "":
		return config.ProviderNewsAPI
	case cfg.News.Tavily.APIKey != "":
		return config.ProviderTavily
	case cfg.News.SearXNG.BaseURL != "":
		return config.ProviderSearXNG
	case len(cfg.News.RSS.Feeds) > 0:
		return config.ProviderRSS
	}
	return ""
}
