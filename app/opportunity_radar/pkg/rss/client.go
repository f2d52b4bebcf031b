package rss

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/logger"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/model"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/news"
)

// Client 按范围读取一组 RSS/Atom 订阅源
type Client struct {
	feeds  map[model.Scope][]string
	parser *gofeed.Parser
}

// NewClient 创建 RSS 客户端，timeout 单位为秒
func NewClient(feeds map[model.Scope][]string, timeout int) *Client {
	t := time.Duration(timeout) * time.Second
	if t == 0 {
		t = 30 * time.Second
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: t}
	return &Client{feeds: feeds, parser: parser}
}

// Ensure Client implements news.Fetcher
var _ news.Fetcher = (*Client)(nil)

// FetchNews 依次读取该范围下的订阅源。单个源失败只记录日志，全部失败才返回错误。
func (c *Client) FetchNews(ctx context.Context, scope model.Scope) ([]model.Article, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("%w: %q", news.ErrUnknownScope, scope)
	}
	urls := c.feeds[scope]
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no rss feeds for scope %s", news.ErrConfigMissing, scope)
	}

	var articles []model.Article
	var errs []error
	for _, u := range urls {
		feed, err := c.parser.ParseURLWithContext(u, ctx)
		if err != nil {
			logger.Log.Warnf("解析 RSS 失败 [%s]: %v", u, err)
			errs = append(errs, fmt.Errorf("fetching %s: %w", u, err))
			continue
		}

		for _, item := range feed.Items {
			articles = append(articles, toArticle(item, feed.Title))
		}
	}

	if len(errs) == len(urls) {
		return nil, errors.Join(errs...)
	}
	return news.Normalize(articles, scope), nil
}

func toArticle(item *gofeed.Item, feedTitle string) model.Article {
	var pub time.Time
	if item.PublishedParsed != nil {
		pub = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		pub = *item.UpdatedParsed
	}

	desc := item.Description
	if desc == "" {
		desc = item.Content
	}

	source := feedTitle
	if source == "" {
		source = news.SourceFromURL(item.Link)
	}

	return model.Article{
		Title:       stripHTML(item.Title),
		Description: stripHTML(desc),
		URL:         item.Link,
		PublishedAt: pub,
		SourceName:  source,
	}
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
