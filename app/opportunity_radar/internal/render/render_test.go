package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/engine"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/model"
)

func sampleResult(n int) *engine.Result {
	res := &engine.Result{
		ID:        "5f0c7f0e-8a47-4a55-9a3e-2b8f1f7d3c21",
		Scopes:    []model.Scope{model.ScopeLocal, model.ScopeNational},
		StartedAt: time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
	}
	for i := 0; i < n; i++ {
		res.Articles = append(res.Articles, model.Article{
			Title: fmt.Sprintf("Article %d", i),
			URL:   fmt.Sprintf("https://example.com/%d", i),
			Scope: model.ScopeNational,
		})
	}
	res.Opportunities = []model.Opportunity{{
		Article: model.Article{
			Title:       "Fintech startup raises funding",
			URL:         "https://news.example.com/fintech",
			PublishedAt: time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC),
			Scope:       model.ScopeLocal,
		},
		Score:          3,
		Categories:     []string{"technology", "investment"},
		Classification: "Investment Opportunity",
		Matches: []model.Match{
			{Category: "technology", Keyword: "startup"},
			{Category: "investment", Keyword: "funding"},
			{Category: "investment", Keyword: "raises"},
		},
		Relevance: 2.0,
	}}
	return res
}

func TestNewPage(t *testing.T) {
	p := NewPage(sampleResult(14), Options{})

	assert.Equal(t, "Opportunity Radar", p.Title)
	assert.Equal(t, "dark", p.Theme)
	assert.Equal(t, 10, len(p.Articles))
	assert.Equal(t, 14, p.TotalArticles)
	assert.Equal(t, "Article 0", p.Articles[0].Title)
	assert.Equal(t, "Article 9", p.Articles[9].Title)
	assert.Equal(t, []string{"local", "national"}, p.Scopes)
	assert.Equal(t, "2026-03-04 09:30", p.GeneratedAt)

	o := p.Opportunities[0]
	assert.Equal(t, "Fintech startup raises funding", o.Title)
	assert.Equal(t, "Unknown", o.Source)
	assert.Equal(t, "Mar 2, 2026", o.Date)
	assert.Equal(t, "Local", o.ScopeBadge)
	assert.Equal(t, []string{"technology: startup", "investment: funding", "investment: raises"}, o.Indicators)

	a := p.Articles[0]
	assert.Equal(t, "Unknown date", a.Date)
	assert.Equal(t, "National", a.ScopeBadge)
}

func TestNewPageOptions(t *testing.T) {
	p := NewPage(sampleResult(4), Options{Title: "Radar", Theme: "light", MaxArticles: 2})

	assert.Equal(t, "Radar", p.Title)
	assert.Equal(t, "light", p.Theme)
	assert.Equal(t, 2, len(p.Articles))
	assert.Equal(t, 4, p.TotalArticles)
}

func TestNewPageFailures(t *testing.T) {
	res := sampleResult(1)
	res.Failures = []engine.ScopeFailure{{Scope: model.ScopeInternational, Err: errors.New("timeout")}}

	p := NewPage(res, Options{})
	assert.Equal(t, 1, len(p.Failures))
	assert.Equal(t, "international", p.Failures[0].Scope)
	assert.Equal(t, true, strings.HasPrefix(p.Failures[0].Message, "Transport/API error"))
}

func TestWriteHTML(t *testing.T) {
	res := sampleResult(2)
	res.Articles[0].Title = `<script>alert("x")</script>`

	var buf bytes.Buffer
	err := WriteHTML(&buf, NewPage(res, Options{Theme: "light"}))
	assert.Equal(t, nil, err)

	out := buf.String()
	assert.Equal(t, true, strings.Contains(out, `data-theme="light"`))
	assert.Equal(t, true, strings.Contains(out, "Fintech startup raises funding"))
	assert.Equal(t, true, strings.Contains(out, "Investment Opportunity"))
	assert.Equal(t, true, strings.Contains(out, "score-mid"))
	assert.Equal(t, true, strings.Contains(out, "Mar 2, 2026"))
	assert.Equal(t, true, strings.Contains(out, "scan 5f0c7f0e-8a47-4a55-9a3e-2b8f1f7d3c21"))
	assert.Equal(t, false, strings.Contains(out, `<script>alert("x")</script>`))
}

func TestWriteHTMLNoOpportunities(t *testing.T) {
	res := sampleResult(1)
	res.Opportunities = nil

	var buf bytes.Buffer
	assert.Equal(t, nil, WriteHTML(&buf, NewPage(res, Options{})))
	assert.Equal(t, true, strings.Contains(buf.String(), "No opportunities found"))
}

func TestWriteTerminal(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTerminal(&buf, NewPage(sampleResult(12), Options{}))
	assert.Equal(t, nil, err)

	out := buf.String()
	assert.Equal(t, true, strings.Contains(out, "Fintech startup raises funding"))
	assert.Equal(t, true, strings.Contains(out, "Investment Opportunity"))
	assert.Equal(t, true, strings.Contains(out, "Latest Articles (10 of 12)"))
	assert.Equal(t, false, strings.Contains(out, "Article 10"))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, nil, WriteJSON(&buf, NewPage(sampleResult(3), Options{})))

	var got Page
	assert.Equal(t, nil, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 3, got.TotalArticles)
	assert.Equal(t, 1, len(got.Opportunities))
	assert.Equal(t, "Investment Opportunity", got.Opportunities[0].Classification)
}

func TestWriteJSONWireKeys(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, nil, WriteJSON(&buf, NewPage(sampleResult(3), Options{})))

	var got map[string]any
	assert.Equal(t, nil, json.Unmarshal(buf.Bytes(), &got))
	for _, k := range []string{"scan_id", "generated_at", "opportunities", "articles", "total_articles"} {
		if _, ok := got[k]; !ok {
			t.Errorf("missing key %q", k)
		}
	}

	opp := got["opportunities"].([]any)[0].(map[string]any)
	for _, k := range []string{"title", "scope_badge", "indicators", "source", "date"} {
		if _, ok := opp[k]; !ok {
			t.Errorf("opportunity missing key %q", k)
		}
	}
	// 不直接暴露 model.Opportunity 的字段
	for _, k := range []string{"article", "matches", "Article", "Matches"} {
		if _, ok := opp[k]; ok {
			t.Errorf("opportunity has unexpected key %q", k)
		}
	}
}

func TestNewPageConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := NewPage(sampleResult(3), Options{})
			if p.Opportunities[0].ScopeBadge != "Local" || p.Articles[0].ScopeBadge != "National" {
				t.Errorf("ScopeBadge = %q / %q", p.Opportunities[0].ScopeBadge, p.Articles[0].ScopeBadge)
			}
		}()
	}
	wg.Wait()
}

func TestWriteHTMLThemeStorageGuarded(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, nil, WriteHTML(&buf, NewPage(sampleResult(1), Options{})))

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "try {"))
	assert.Equal(t, true, strings.Contains(out, "opportunity_radar:theme"))
	// 监听器必须在读取存储之前注册
	assert.Equal(t, true, strings.Index(out, "addEventListener") < strings.Index(out, "localStorage.getItem"))
}
