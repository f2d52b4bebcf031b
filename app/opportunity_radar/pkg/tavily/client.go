package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/model"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/news"
)

const defaultBaseURL = "https://api.tavily.com"

// Client Tavily API 客户端
type Client struct {
	apiKey     string
	baseURL    string
	queries    news.ScopeQueries
	maxResults int
	daysBack   int
	client     *http.Client
	now        func() time.Time
}

// NewClient 创建一个新的 Tavily 客户端，timeout 单位为秒
func NewClient(apiKey, baseURL string, queries news.ScopeQueries, maxResults, daysBack, timeout int) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	t := time.Duration(timeout) * time.Second
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		queries:    queries,
		maxResults: maxResults,
		daysBack:   daysBack,
		client:     &http.Client{Timeout: t},
		now:        time.Now,
	}
}

// Ensure Client implements news.Fetcher
var _ news.Fetcher = (*Client)(nil)

// SearchRequest Tavily 搜索请求参数
type SearchRequest struct {
	Query             string   `json:"query"`
	SearchDepth       string   `json:"search_depth,omitempty"` // basic or advanced
	Topic             string   `json:"topic,omitempty"`        // general or news
	MaxResults        int      `json:"max_results,omitempty"`
	IncludeRawContent bool     `json:"include_raw_content,omitempty"`
	IncludeDomains    []string `json:"include_domains,omitempty"`
	ExcludeDomains    []string `json:"exclude_domains,omitempty"`
	StartDate         string   `json:"start_date,omitempty"`
	EndDate           string   `json:"end_date,omitempty"`
}

// SearchResponse Tavily 搜索响应
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// SearchResult 单个搜索结果
type SearchResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date"`
}

// FetchNews implements news.Fetcher
func (c *Client) FetchNews(ctx context.Context, scope model.Scope) ([]model.Article, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: tavily api key", news.ErrConfigMissing)
	}
	query, err := c.queries.Query(scope)
	if err != nil {
		return nil, err
	}

	now := c.now()
	req := SearchRequest{
		Query:      query,
		Topic:      "news",
		MaxResults: c.maxResults,
		EndDate:    now.Format(time.DateOnly),
	}
	if c.daysBack > 0 {
		req.StartDate = now.AddDate(0, 0, -c.daysBack).Format(time.DateOnly)
	}

	resp, err := c.doSearch(ctx, req)
	if err != nil {
		return nil, err
	}

	articles := make([]model.Article, 0, len(resp.Results))
	for _, r := range resp.Results {
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

// doSearch 执行搜索 (Internal)
func (c *Client) doSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if req.SearchDepth == "" {
		req.SearchDepth = "basic"
	}
	if req.MaxResults == 0 {
		req.MaxResults = 5
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	httpReq.Header.Add("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Add("Content-Type", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, &news.APIError{Provider: "tavily", StatusCode: res.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	return &searchResp, nil
}
