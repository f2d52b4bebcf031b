package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/model"
)

// Config 项目配置结构体
type Config struct {
	News         NewsConfig        `yaml:"news"`
	Scopes       []string          `yaml:"scopes"`        // 默认扫描范围
	TaxonomyFile string            `yaml:"taxonomy_file"` // 为空时使用内置分类表
	Enrich       EnrichConfig      `yaml:"enrich"`
	Render       RenderConfig      `yaml:"render"`
	Log          LogConfig         `yaml:"log"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency"`
}

// NewsConfig 新闻来源配置
type NewsConfig struct {
	Provider string        `yaml:"provider"` // newsapi, tavily, searxng, rss
	NewsAPI  NewsAPIConfig `yaml:"newsapi"`
	Tavily   TavilyConfig  `yaml:"tavily"`
	SearXNG  SearXNGConfig `yaml:"searxng"`
	RSS      RSSConfig     `yaml:"rss"`
}

// NewsAPIConfig NewsAPI.org 配置
type NewsAPIConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url" validate:"omitempty,url"`
	Country    string `yaml:"country"`     // national 范围使用
	Language   string `yaml:"language"`    // local / international 范围使用
	LocalQuery string `yaml:"local_query"` // local 范围的搜索词
	PageSize   int    `yaml:"page_size" validate:"min=1,max=100"`
	Timeout    int    `yaml:"timeout" validate:"min=1"` // 秒
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey     string            `yaml:"api_key"`
	BaseURL    string            `yaml:"base_url" validate:"omitempty,url"`
	MaxResults int               `yaml:"max_results" validate:"min=1,max=20"`
	DaysBack   int               `yaml:"days_back" validate:"min=1"`
	Timeout    int               `yaml:"timeout" validate:"min=1"` // 秒
	Queries    map[string]string `yaml:"queries"` // scope -> query
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string            `yaml:"base_url" validate:"omitempty,url"`
	Timeout int               `yaml:"timeout" validate:"min=1"`
	Queries map[string]string `yaml:"queries"`
}

// RSSConfig RSS 配置
type RSSConfig struct {
	Feeds   map[string][]string `yaml:"feeds" validate:"dive,dive,url"` // scope -> feed urls
	Timeout int                 `yaml:"timeout" validate:"min=1"`
}

// EnrichConfig 正文补全配置
type EnrichConfig struct {
	Enabled   bool `yaml:"enabled"`
	MinLength int  `yaml:"min_length"` // 描述短于该长度（rune）时尝试补全
	MaxLength int  `yaml:"max_length"`
	Timeout   int  `yaml:"timeout"`
}

// RenderConfig 输出配置
type RenderConfig struct {
	Theme       string `yaml:"theme" validate:"oneof=light dark"`
	MaxArticles int    `yaml:"max_articles" validate:"min=1"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps" validate:"min=1"`
	RPM int `yaml:"rpm" validate:"min=1"`
}

// 支持的 provider
const (
	ProviderNewsAPI = "newsapi"
	ProviderTavily  = "tavily"
	ProviderSearXNG = "searxng"
	ProviderRSS     = "rss"
)

var defaultQueries = map[string]string{
	string(model.ScopeLocal):         "local business news",
	string(model.ScopeNational):      "national business news",
	string(model.ScopeInternational): "international business news",
}

// DefaultConfigPath 默认配置文件路径
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "opportunity_radar", "config.yaml")
}

// Default 返回只包含默认值的配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig 从指定路径加载配置。path 为空时读取默认路径，默认路径不存在则使用默认值。
// 环境变量 NEWSAPI_KEY、TAVILY_API_KEY、SEARXNG_BASE_URL 覆盖文件中的值。
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// 首次运行没有配置文件，完全依赖默认值和环境变量
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("NEWSAPI_KEY"); v != "" {
		c.News.NewsAPI.APIKey = v
	}
	if v := os.Getenv("TAVILY_API_KEY"); v != "" {
		c.News.Tavily.APIKey = v
	}
	if v := os.Getenv("SEARXNG_BASE_URL"); v != "" {
		c.News.SearXNG.BaseURL = v
	}
}

func (c *Config) applyDefaults() {
	c.News.Provider = strings.ToLower(strings.TrimSpace(c.News.Provider))
	if len(c.Scopes) == 0 {
		for _, s := range model.AllScopes() {
			c.Scopes = append(c.Scopes, string(s))
		}
	}

	n := &c.News.NewsAPI
	if n.BaseURL == "" {
		n.BaseURL = "https://newsapi.org"
	}
	if n.Country == "" {
		n.Country = "us"
	}
	if n.Language == "" {
		n.Language = "en"
	}
	if n.LocalQuery == "" {
		n.LocalQuery = "local business"
	}
	if n.PageSize <= 0 {
		n.PageSize = 20
	}
	if n.Timeout <= 0 {
		n.Timeout = 30
	}

	tv := &c.News.Tavily
	if tv.BaseURL == "" {
		tv.BaseURL = "https://api.tavily.com"
	}
	if tv.MaxResults <= 0 {
		tv.MaxResults = 10
	}
	if tv.DaysBack <= 0 {
		tv.DaysBack = 3
	}
	if tv.Timeout <= 0 {
		tv.Timeout = 30
	}
	tv.Queries = withDefaultQueries(tv.Queries)

	sx := &c.News.SearXNG
	if sx.Timeout <= 0 {
		sx.Timeout = 30
	}
	sx.Queries = withDefaultQueries(sx.Queries)

	if c.News.RSS.Timeout <= 0 {
		c.News.RSS.Timeout = 30
	}

	if c.Enrich.MinLength <= 0 {
		c.Enrich.MinLength = 80
	}
	if c.Enrich.MaxLength <= 0 {
		c.Enrich.MaxLength = 600
	}
	if c.Enrich.Timeout <= 0 {
		c.Enrich.Timeout = 15
	}

	c.Render.Theme = strings.ToLower(strings.TrimSpace(c.Render.Theme))
	if c.Render.Theme == "" {
		c.Render.Theme = "dark"
	}
	if c.Render.MaxArticles <= 0 {
		c.Render.MaxArticles = 10
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = 60
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 3
	}
}

func withDefaultQueries(q map[string]string) map[string]string {
	out := make(map[string]string, len(defaultQueries))
	for k, v := range defaultQueries {
		out[k] = v
	}
	for k, v := range q {
		if strings.TrimSpace(v) != "" {
			out[strings.ToLower(k)] = v
		}
	}
	return out
}

// Validate 校验配置。API key 缺失不在这里报错，由 provider 初始化时返回 news.ErrConfigMissing。
func (c *Config) Validate() error {
	switch c.News.Provider {
	case "", ProviderNewsAPI, ProviderTavily, ProviderSearXNG, ProviderRSS:
	default:
		return fmt.Errorf("unknown news provider %q (valid: newsapi, tavily, searxng, rss)", c.News.Provider)
	}

	if _, err := model.ParseScopes(c.Scopes); err != nil {
		return fmt.Errorf("scopes: %w", err)
	}
	for scope := range c.News.RSS.Feeds {
		if _, err := model.ParseScope(scope); err != nil {
			return fmt.Errorf("rss feeds: %w", err)
		}
	}

	if err := validate.Struct(c); err != nil {
		return validationError(err)
	}
	if c.Enrich.MaxLength < c.Enrich.MinLength {
		return fmt.Errorf("enrich max_length (%d) must not be less than min_length (%d)", c.Enrich.MaxLength, c.Enrich.MinLength)
	}
	return nil
}

// DefaultScopes 返回配置中的默认扫描范围
func (c *Config) DefaultScopes() []model.Scope {
	scopes, err := model.ParseScopes(c.Scopes)
	if err != nil {
		return model.AllScopes()
	}
	return scopes
}

// ScopeQueries 把 scope -> query 配置转换为 map[model.Scope]string
func ScopeQueries(q map[string]string) map[model.Scope]string {
	out := make(map[model.Scope]string, len(q))
	for k, v := range q {
		out[model.Scope(strings.ToLower(k))] = v
	}
	return out
}

var validate = newValidator()

// 校验错误里使用 yaml 字段名，和配置文件保持一致
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be >= %s, got %v", field, fe.Param(), fe.Value()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be <= %s, got %v", field, fe.Param(), fe.Value()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s is not a valid url: %q", field, fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q validation", field, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
