// Package render 把扫描结果整理成展示用的视图模型，并输出为 HTML、终端文本或 JSON。
package render

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/engine"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/model"
)

const (
	// DefaultMaxArticles 文章列表最多展示的条数
	DefaultMaxArticles = 10

	unknownSource = "Unknown"
	unknownDate   = "Unknown date"
	dateLayout    = "Jan 2, 2006"
)

// Options 渲染选项
type Options struct {
	Title       string
	Theme       string // light / dark
	MaxArticles int
}

// OpportunityView 单个机会的展示形式
type OpportunityView struct {
	Title          string   `json:"title"`
	Classification string   `json:"classification"`
	Score          int      `json:"score"`
	Relevance      float64  `json:"relevance"`
	Categories     []string `json:"categories"`
	Scope          string   `json:"scope"`
	ScopeBadge     string   `json:"scope_badge"`
	Source         string   `json:"source"`
	Date           string   `json:"date"`
	URL            string   `json:"url"`
	Indicators     []string `json:"indicators"`
}

// ArticleView 文章列表中的一条
type ArticleView struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Scope       string `json:"scope"`
	ScopeBadge  string `json:"scope_badge"`
	Source      string `json:"source"`
	Date        string `json:"date"`
	URL         string `json:"url"`
}

// FailureView 抓取失败的范围
type FailureView struct {
	Scope   string `json:"scope"`
	Message string `json:"message"`
}

// Page 整个报告页面
type Page struct {
	ScanID        string            `json:"scan_id"`
	Title         string            `json:"title"`
	Theme         string            `json:"theme"`
	GeneratedAt   string            `json:"generated_at"`
	Duration      string            `json:"duration"`
	Scopes        []string          `json:"scopes"`
	Opportunities []OpportunityView `json:"opportunities"`
	Articles      []ArticleView     `json:"articles"`
	TotalArticles int               `json:"total_articles"`
	Failures      []FailureView     `json:"failures,omitempty"`
}

// NewPage 根据扫描结果构建页面。文章列表只保留前 MaxArticles 条，分析仍基于全部文章。
func NewPage(res *engine.Result, opts Options) *Page {
	if opts.MaxArticles <= 0 {
		opts.MaxArticles = DefaultMaxArticles
	}
	if opts.Title == "" {
		opts.Title = "Opportunity Radar"
	}
	if opts.Theme != "light" {
		opts.Theme = "dark"
	}

	p := &Page{
		ScanID:        res.ID,
		Title:         opts.Title,
		Theme:         opts.Theme,
		Opportunities: make([]OpportunityView, 0, len(res.Opportunities)),
		Articles:      make([]ArticleView, 0, min(len(res.Articles), opts.MaxArticles)),
		TotalArticles: len(res.Articles),
	}
	if !res.StartedAt.IsZero() {
		p.GeneratedAt = res.StartedAt.Format("2006-01-02 15:04")
	}
	if res.Duration > 0 {
		p.Duration = res.Duration.Round(time.Millisecond).String()
	}
	for _, s := range res.Scopes {
		p.Scopes = append(p.Scopes, string(s))
	}

	for _, o := range res.Opportunities {
		p.Opportunities = append(p.Opportunities, newOpportunityView(o))
	}
	for i, a := range res.Articles {
		if i >= opts.MaxArticles {
			break
		}
		p.Articles = append(p.Articles, newArticleView(a))
	}
	for _, f := range res.Failures {
		p.Failures = append(p.Failures, FailureView{
			Scope:   string(f.Scope),
			Message: engine.StatusMessage(f.Err),
		})
	}
	return p
}

func newOpportunityView(o model.Opportunity) OpportunityView {
	indicators := make([]string, 0, len(o.Matches))
	for _, m := range o.Matches {
		indicators = append(indicators, fmt.Sprintf("%s: %s", m.Category, m.Keyword))
	}
	return OpportunityView{
		Title:          o.Article.Title,
		Classification: o.Classification,
		Score:          o.Score,
		Relevance:      o.Relevance,
		Categories:     o.Categories,
		Scope:          string(o.Article.Scope),
		ScopeBadge:     ScopeBadge(o.Article.Scope),
		Source:         sourceName(o.Article.SourceName),
		Date:           FormatDate(o.Article.PublishedAt),
		URL:            o.Article.URL,
		Indicators:     indicators,
	}
}

func newArticleView(a model.Article) ArticleView {
	return ArticleView{
		Title:       a.Title,
		Description: a.Description,
		Scope:       string(a.Scope),
		ScopeBadge:  ScopeBadge(a.Scope),
		Source:      sourceName(a.SourceName),
		Date:        FormatDate(a.PublishedAt),
		URL:         a.URL,
	}
}

// ScopeBadge 范围徽标文字，如 "Local"。Caser 带状态，不能跨 goroutine 共享，每次新建。
func ScopeBadge(s model.Scope) string {
	return cases.Title(language.English).String(string(s))
}

// FormatDate 格式化发布日期，零值显示 "Unknown date"
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return unknownDate
	}
	return t.Format(dateLayout)
}

func sourceName(s string) string {
	if s == "" {
		return unknownSource
	}
	return s
}
