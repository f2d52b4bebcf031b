package news

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/model"
)

// Fetcher 定义通用的新闻抓取接口
type Fetcher interface {
	// FetchNews 返回指定范围的新闻，每条记录都带有该范围
	FetchNews(ctx context.Context, scope model.Scope) ([]model.Article, error)
}

var (
	// ErrConfigMissing 缺少 API key、服务地址等必需配置
	ErrConfigMissing = errors.New("configuration missing")
	// ErrUnknownScope 不支持的新闻范围
	ErrUnknownScope = errors.New("unknown scope")
)

// APIError 上游接口返回非成功状态
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s api error (status %d)", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s api error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// Normalize 去掉首尾空白，丢弃标题和描述都为空的条目，并打上范围标记
func Normalize(articles []model.Article, scope model.Scope) []model.Article {
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		a.Title = strings.TrimSpace(a.Title)
		a.Description = strings.TrimSpace(a.Description)
		a.SourceName = strings.TrimSpace(a.SourceName)
		if a.Title == "" && a.Description == "" {
			continue
		}
		a.Scope = scope
		out = append(out, a)
	}
	return out
}

// ScopeQueries 每个范围对应的搜索词，供搜索类 provider 使用
type ScopeQueries map[model.Scope]string

// Query 返回范围对应的搜索词
func (q ScopeQueries) Query(scope model.Scope) (string, error) {
	if !scope.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownScope, scope)
	}
	query := strings.TrimSpace(q[scope])
	if query == "" {
		return "", fmt.Errorf("%w: no query for scope %s", ErrConfigMissing, scope)
	}
	return query, nil
}

var timeLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTime 解析上游返回的发布时间，无法识别时返回零值
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SourceFromURL 用链接的主机名作为来源名，去掉 www. 前缀
func SourceFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
