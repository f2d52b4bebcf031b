package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/analyzer"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/config"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/extract"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/logger"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/model"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/news"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/news/factory"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/taxonomy"
)

var (
	// ErrEmptySelection 没有选择任何范围
	ErrEmptySelection = errors.New("empty selection")
	// ErrNoData 所有范围合计没有抓到文章
	ErrNoData = errors.New("no data")
)

// Engine 扫描引擎：抓取 -> (补全) -> 分析
type Engine struct {
	fetcher   news.Fetcher
	analyzer  *analyzer.Analyzer
	limiter   *rate.Limiter
	extractor extract.ContentExtractor
	minLength int
	maxLength int
}

// Option 引擎选项
type Option func(*Engine)

// WithLimiter 每次抓取前等待限流器
func WithLimiter(l *rate.Limiter) Option {
	return func(e *Engine) { e.limiter = l }
}

// WithAnalyzer 使用自定义分类表的分析器
func WithAnalyzer(a *analyzer.Analyzer) Option {
	return func(e *Engine) { e.analyzer = a }
}

// WithExtractor 描述短于 minLength 时抓取正文，截取前 maxLength 个字符作为描述
func WithExtractor(x extract.ContentExtractor, minLength, maxLength int) Option {
	return func(e *Engine) {
		e.extractor = x
		e.minLength = minLength
		e.maxLength = maxLength
	}
}

// New 创建引擎
func New(fetcher news.Fetcher, opts ...Option) *Engine {
	e := &Engine{fetcher: fetcher}
	for _, opt := range opts {
		opt(e)
	}
	if e.analyzer == nil {
		e.analyzer = analyzer.New(nil)
	}
	return e
}

// NewEngine 按配置创建引擎实例
func NewEngine(cfg *config.Config) (*Engine, error) {
	fetcher, err := factory.NewFetcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("新闻客户端初始化失败: %w", err)
	}

	tax, err := taxonomy.FromFile(cfg.TaxonomyFile)
	if err != nil {
		return nil, fmt.Errorf("加载分类表失败: %w", err)
	}

	// 初始化限流器
	limit := rate.Limit(float64(cfg.Concurrency.RPM) / 60.0)
	burst := cfg.Concurrency.QPS
	opts := []Option{
		WithLimiter(rate.NewLimiter(limit, burst)),
		WithAnalyzer(analyzer.New(tax)),
	}
	if cfg.Enrich.Enabled {
		opts = append(opts, WithExtractor(extract.NewReadability(cfg.Enrich.Timeout), cfg.Enrich.MinLength, cfg.Enrich.MaxLength))
	}
	return New(fetcher, opts...), nil
}

// ScanOptions 扫描选项
type ScanOptions struct {
	Scopes           []model.Scope
	ProgressCallback func(status string, progress int)
}

// ScopeFailure 单个范围抓取失败
type ScopeFailure struct {
	Scope model.Scope
	Err   error
}

// Result 一次扫描的结果
type Result struct {
	ID            string
	Scopes        []model.Scope
	Articles      []model.Article
	Opportunities []model.Opportunity
	Failures      []ScopeFailure
	StartedAt     time.Time
	Duration      time.Duration
}

// Scan 抓取所选范围的新闻并分析。单个范围失败不影响其他范围。
func (e *Engine) Scan(ctx context.Context, opts ScanOptions) (*Result, error) {
	progress := func(status string, p int) {
		if opts.ProgressCallback != nil {
			opts.ProgressCallback(status, p)
		}
	}

	if len(opts.Scopes) == 0 {
		return nil, ErrEmptySelection
	}

	start := time.Now()
	id := uuid.NewString()
	logger.Log.Infof("开始扫描 [%s] %d 个范围: %v", id, len(opts.Scopes), opts.Scopes)
	progress("starting", 0)

	// 每个范围一个结果槽位，合并时保持选择顺序
	batches := make([][]model.Article, len(opts.Scopes))
	errs := make([]error, len(opts.Scopes))

	var mu sync.Mutex
	var wg sync.WaitGroup
	completed := 0

	for i, scope := range opts.Scopes {
		wg.Add(1)
		go func(i int, scope model.Scope) {
			defer wg.Done()

			batches[i], errs[i] = e.fetch(ctx, scope)
			if errs[i] != nil {
				logger.Log.Errorf("抓取范围失败 [%s]: %v", scope, errs[i])
			} else {
				logger.Log.Infof("范围 [%s] 抓取到 %d 篇文章", scope, len(batches[i]))
			}

			mu.Lock()
			completed++
			p := 10 + int(float64(completed)/float64(len(opts.Scopes))*70) // 10% -> 80%
			progress(fmt.Sprintf("fetched scope: %s", scope), p)
			mu.Unlock()
		}(i, scope)
	}
	wg.Wait()

	res := &Result{ID: id, Scopes: opts.Scopes, StartedAt: start}
	for i, scope := range opts.Scopes {
		if errs[i] != nil {
			res.Failures = append(res.Failures, ScopeFailure{Scope: scope, Err: errs[i]})
			continue
		}
		res.Articles = append(res.Articles, batches[i]...)
	}

	if len(res.Failures) == len(opts.Scopes) {
		all := make([]error, 0, len(res.Failures))
		for _, f := range res.Failures {
			all = append(all, fmt.Errorf("%s: %w", f.Scope, f.Err))
		}
		return nil, fmt.Errorf("all scopes failed: %w", errors.Join(all...))
	}
	if len(res.Articles) == 0 {
		return nil, ErrNoData
	}

	if e.extractor != nil {
		progress("enriching descriptions", 82)
		e.enrich(ctx, res.Articles)
	}

	progress("analyzing", 90)
	res.Opportunities = e.analyzer.Analyze(res.Articles)
	res.Duration = time.Since(start)

	logger.Log.Infof("扫描完成 [%s]: %d 篇文章, %d 个机会, 耗时 %s", id, len(res.Articles), len(res.Opportunities), res.Duration.Round(time.Millisecond))
	progress("completed", 100)
	return res, nil
}

func (e *Engine) fetch(ctx context.Context, scope model.Scope) ([]model.Article, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}
	return e.fetcher.FetchNews(ctx, scope)
}

// enrich 为描述过短的文章抓取正文，失败时保留原描述
func (e *Engine) enrich(ctx context.Context, articles []model.Article) {
	var wg sync.WaitGroup
	for i := range articles {
		art := &articles[i]
		if art.URL == "" || utf8.RuneCountInString(art.Description) >= e.minLength {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if e.limiter != nil {
				if err := e.limiter.Wait(ctx); err != nil {
					return
				}
			}
			text, err := e.extractor.Extract(ctx, art.URL)
			if err != nil {
				logger.Log.Debugf("补全描述失败 [%s]: %v", art.URL, err)
				return
			}
			if utf8.RuneCountInString(text) <= utf8.RuneCountInString(art.Description) {
				return
			}
			art.Description = extract.Truncate(text, e.maxLength)
		}()
	}
	wg.Wait()
}

// StatusMessage 把扫描错误转换为面向用户的提示
func StatusMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, news.ErrConfigMissing):
		return "Configuration missing: set a news API key (NEWSAPI_KEY) or configure a news provider."
	case errors.Is(err, ErrEmptySelection):
		return "Empty selection: choose at least one scope (local, national, international)."
	case errors.Is(err, ErrNoData):
		return "No data: no articles were found for the selected scopes."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Scan canceled before it finished."
	default:
		return fmt.Sprintf("Transport/API error: %v", err)
	}
}
