package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/google/uuid"

	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/analyzer"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/config"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/model"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/news"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/taxonomy"
)

type fakeFetcher struct {
	articles map[model.Scope][]model.Article
	errs     map[model.Scope]error
}

func (f *fakeFetcher) FetchNews(ctx context.Context, scope model.Scope) ([]model.Article, error) {
	if err := f.errs[scope]; err != nil {
		return nil, err
	}
	return f.articles[scope], nil
}

type fakeExtractor struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (x *fakeExtractor) Extract(ctx context.Context, url string) (string, error) {
	x.mu.Lock()
	x.calls = append(x.calls, url)
	x.mu.Unlock()
	text, ok := x.pages[url]
	if !ok {
		return "", errors.New("not found")
	}
	return text, nil
}

func sampleFetcher() *fakeFetcher {
	return &fakeFetcher{articles: map[model.Scope][]model.Article{
		model.ScopeLocal: {
			{Title: "City council debates parking", Description: "Routine meeting", URL: "https://l/1", Scope: model.ScopeLocal},
			{Title: "Local robotics startup raises seed funding", Description: "Investors back automation platform", URL: "https://l/2", Scope: model.ScopeLocal},
		},
		model.ScopeNational: {
			{Title: "Chip shortage hits market", Description: "Supply chain backlog grows", URL: "https://n/1", Scope: model.ScopeNational},
		},
		model.ScopeInternational: {
			{Title: "Weather update", Description: "Sunny", URL: "https://i/1", Scope: model.ScopeInternational},
		},
	}}
}

func TestScan(t *testing.T) {
	var statuses []string
	var last int
	e := New(sampleFetcher())

	res, err := e.Scan(context.Background(), ScanOptions{
		Scopes: []model.Scope{model.ScopeNational, model.ScopeLocal},
		ProgressCallback: func(status string, progress int) {
			statuses = append(statuses, status)
			last = progress
		},
	})

	assert.Equal(t, nil, err)
	_, idErr := uuid.Parse(res.ID)
	assert.Equal(t, nil, idErr)
	assert.Equal(t, 3, len(res.Articles))
	// 合并顺序与选择顺序一致
	assert.Equal(t, model.ScopeNational, res.Articles[0].Scope)
	assert.Equal(t, model.ScopeLocal, res.Articles[1].Scope)
	assert.Equal(t, 0, len(res.Failures))

	assert.Equal(t, 2, len(res.Opportunities))
	for _, o := range res.Opportunities {
		if o.Score < analyzer.MinScore {
			t.Errorf("opportunity %q below threshold: %d", o.Article.Title, o.Score)
		}
	}

	assert.Equal(t, "starting", statuses[0])
	assert.Equal(t, "completed", statuses[len(statuses)-1])
	assert.Equal(t, 100, last)
}

func TestScanEmptySelection(t *testing.T) {
	_, err := New(sampleFetcher()).Scan(context.Background(), ScanOptions{})
	assert.Equal(t, true, errors.Is(err, ErrEmptySelection))
}

func TestScanNoData(t *testing.T) {
	f := &fakeFetcher{articles: map[model.Scope][]model.Article{}}

	_, err := New(f).Scan(context.Background(), ScanOptions{Scopes: model.AllScopes()})
	assert.Equal(t, true, errors.Is(err, ErrNoData))
}

func TestScanPartialFailure(t *testing.T) {
	f := sampleFetcher()
	f.errs = map[model.Scope]error{
		model.ScopeLocal: &news.APIError{Provider: "newsapi", StatusCode: 500},
	}

	res, err := New(f).Scan(context.Background(), ScanOptions{Scopes: model.AllScopes()})

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(res.Failures))
	assert.Equal(t, model.ScopeLocal, res.Failures[0].Scope)
	assert.Equal(t, 2, len(res.Articles))
}

func TestScanAllFailed(t *testing.T) {
	apiErr := &news.APIError{Provider: "newsapi", StatusCode: 401, Message: "apiKeyInvalid"}
	f := &fakeFetcher{errs: map[model.Scope]error{
		model.ScopeLocal:    apiErr,
		model.ScopeNational: apiErr,
	}}

	_, err := New(f).Scan(context.Background(), ScanOptions{Scopes: []model.Scope{model.ScopeLocal, model.ScopeNational}})

	var target *news.APIError
	assert.Equal(t, true, errors.As(err, &target))
	assert.Equal(t, 401, target.StatusCode)
	assert.Equal(t, true, strings.HasPrefix(StatusMessage(err), "Transport/API error"))
}

func TestScanCustomTaxonomy(t *testing.T) {
	tax := taxonomy.New(taxonomy.Category{Name: "weather", Keywords: []string{"weather", "sunny"}})

	res, err := New(sampleFetcher(), WithAnalyzer(analyzer.New(tax))).
		Scan(context.Background(), ScanOptions{Scopes: []model.Scope{model.ScopeInternational}})

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(res.Opportunities))
	assert.Equal(t, []string{"weather"}, res.Opportunities[0].Categories)
}

func TestScanEnrich(t *testing.T) {
	f := &fakeFetcher{articles: map[model.Scope][]model.Article{
		model.ScopeLocal: {
			{Title: "Harbor plan", Description: "Short", URL: "https://l/harbor", Scope: model.ScopeLocal},
			{Title: "Mill closes", Description: "Brief", URL: "https://l/missing", Scope: model.ScopeLocal},
			{Title: "Long story", Description: strings.Repeat("x", 100), URL: "https://l/long", Scope: model.ScopeLocal},
		},
	}}
	x := &fakeExtractor{pages: map[string]string{
		"https://l/harbor": "The harbor expansion attracts venture investment and new funding for automation",
	}}

	res, err := New(f, WithExtractor(x, 20, 40)).Scan(context.Background(), ScanOptions{Scopes: []model.Scope{model.ScopeLocal}})

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(x.calls))
	assert.Equal(t, "The harbor expansion attracts venture…", res.Articles[0].Description)
	assert.Equal(t, "Brief", res.Articles[1].Description)
	assert.Equal(t, "Harbor plan", res.Articles[0].Title)
}

func TestNewEngineConfigMissing(t *testing.T) {
	_, err := NewEngine(config.Default())
	assert.Equal(t, true, errors.Is(err, news.ErrConfigMissing))
	assert.Equal(t, true, strings.HasPrefix(StatusMessage(err), "Configuration missing"))
}

func TestStatusMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrEmptySelection, "Empty selection"},
		{ErrNoData, "No data"},
		{context.Canceled, "Scan canceled"},
		{errors.New("dial tcp: connection refused"), "Transport/API error"},
	}
	for _, tt := range tests {
		if got := StatusMessage(tt.err); !strings.HasPrefix(got, tt.want) {
			t.Errorf("StatusMessage(%v) = %q, want prefix %q", tt.err, got, tt.want)
		}
	}
}
