package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/model"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/news"
)

// Client SearXNG API 客户端
type Client struct {
	baseURL string
	queries news.ScopeQueries
	client  *http.Client
}

// NewClient 创建一个新的 SearXNG 客户端，timeout 单位为秒
func NewClient(baseURL string, timeout int, queries news.ScopeQueries) *Client {
	t := time.Duration(timeout) * time.Second
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		queries: queries,
		client: &http.Client{
			Timeout: t,
		},
	}
}

// Ensure Client implements news.Fetcher
var _ news.Fetcher = (*Client)(nil)

// SearchResponse SearXNG 响应结构
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// SearchResult SearXNG 单条结果
type SearchResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Engine        string  `json:"engine"`
	PublishedDate string  `json:"publishedDate"` // 字段名可能因版本而异
	Score         float64 `json:"score"`
}

// FetchNews implements news.Fetcher
func (c *Client) FetchNews(ctx context.Context, scope model.Scope) ([]model.Article, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: searxng base url", news.ErrConfigMissing)
	}
	query, err := c.queries.Query(scope)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/search"

	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("categories", "news")
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	// 添加 User-Agent 避免被简单的反爬虫策略拦截
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, &news.APIError{Provider: "searxng", StatusCode: res.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(res.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}

	articles := make([]model.Article, 0, len(searchResp.Results))
	for _, r := range searchResp.Results {
		articles = append(articles, model.Article{
			Title:       r.Title,
			Description: news.PlainText(r.Content),
			URL:         r.URL,
			PublishedAt: news.ParseTime(r.PublishedDate),
			SourceName:  news.SourceFromURL(r.URL),
		})
	}
	return news.Normalize(articles, scope), nil
}
