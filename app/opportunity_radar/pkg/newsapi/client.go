package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/model"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/news"
)

const (
	providerName   = "newsapi"
	removedMarker  = "[Removed]"
	defaultBaseURL = "https://newsapi.org"
)

// Options NewsAPI 请求参数
type Options struct {
	BaseURL    string
	Country    string // national
	Language   string // local / international
	LocalQuery string // local
	PageSize   int
	Timeout    time.Duration
}

// Client NewsAPI.org 客户端
type Client struct {
	apiKey string
	opts   Options
	client *http.Client
}

// NewClient 创建一个新的 NewsAPI 客户端
func NewClient(apiKey string, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		apiKey: apiKey,
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

// Ensure Client implements news.Fetcher
var _ news.Fetcher = (*Client)(nil)

// Response NewsAPI 响应
type Response struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
}

// Article NewsAPI 单条新闻
type Article struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// FetchNews implements news.Fetcher
func (c *Client) FetchNews(ctx context.Context, scope model.Scope) ([]model.Article, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: newsapi api key", news.ErrConfigMissing)
	}

	u, err := c.buildURL(scope)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		if res.StatusCode != http.StatusOK {
			return nil, &news.APIError{Provider: providerName, StatusCode: res.StatusCode, Message: strings.TrimSpace(string(body))}
		}
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}
	if res.StatusCode != http.StatusOK || resp.Status == "error" {
		return nil, &news.APIError{Provider: providerName, StatusCode: res.StatusCode, Message: resp.Message}
	}

	articles := make([]model.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.Title == removedMarker {
			continue
		}
		articles = append(articles, model.Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			PublishedAt: news.ParseTime(a.PublishedAt),
			SourceName:  a.Source.Name,
		})
	}
	return news.Normalize(articles, scope), nil
}

// buildURL 按范围选择接口：local 用 everything 关键词搜索，national 按国家取头条，international 按语言取综合头条
func (c *Client) buildURL(scope model.Scope) (string, error) {
	u, err := url.Parse(c.opts.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	q := url.Values{}
	q.Set("pageSize", strconv.Itoa(c.opts.PageSize))

	switch scope {
	case model.ScopeLocal:
		if c.opts.LocalQuery == "" {
			return "", fmt.Errorf("%w: newsapi local query", news.ErrConfigMissing)
		}
		u.Path = "/v2/everything"
		q.Set("q", c.opts.LocalQuery)
		q.Set("sortBy", "publishedAt")
		if c.opts.Language != "" {
			q.Set("language", c.opts.Language)
		}
	case model.ScopeNational:
		if c.opts.Country == "" {
			return "", fmt.Errorf("%w: newsapi country", news.ErrConfigMissing)
		}
		u.Path = "/v2/top-headlines"
		q.Set("country", c.opts.Country)
	case model.ScopeInternational:
		u.Path = "/v2/top-headlines"
		q.Set("category", "general")
		if c.opts.Language != "" {
			q.Set("language", c.opts.Language)
		}
	default:
		return "", fmt.Errorf("%w: %q", news.ErrUnknownScope, scope)
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}
