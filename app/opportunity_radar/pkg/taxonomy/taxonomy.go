package taxonomy

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// 内置分类名
const (
	Technology = "technology"
	Market     = "market"
	Investment = "investment"
	Shortage   = "shortage"
	Crisis     = "crisis"
	Regulation = "regulation"
	NewSector  = "newSector"
	Consumer   = "consumer"
)

// Category 一个分类及其触发关键词（小写、去重、保持首次出现的顺序）
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Taxonomy 指标分类表，构造后只读，可并发使用
type Taxonomy struct {
	categories []Category
}

// New 构造分类表。关键词按集合处理：重复项与空白项被丢弃，
// 同名分类合并到第一次出现的位置。
func New(categories ...Category) *Taxonomy {
	t := &Taxonomy{}
	index := make(map[string]int)
	seen := make(map[string]map[string]bool)

	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		i, ok := index[name]
		if !ok {
			i = len(t.categories)
			index[name] = i
			seen[name] = make(map[string]bool)
			t.categories = append(t.categories, Category{Name: name})
		}
		for _, kw := range c.Keywords {
			kw = Normalize(strings.TrimSpace(kw))
			if kw == "" || seen[name][kw] {
				continue
			}
			seen[name][kw] = true
			t.categories[i].Keywords = append(t.categories[i].Keywords, kw)
		}
	}
	return t
}

// Normalize 匹配前对文本和关键词做同样的处理：NFC 后转小写
func Normalize(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// Categories 返回分类副本
func (t *Taxonomy) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = Category{Name: c.Name, Keywords: append([]string(nil), c.Keywords...)}
	}
	return out
}

// Names 返回分类名，按表中顺序
func (t *Taxonomy) Names() []string {
	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.Name
	}
	return names
}

// Keywords 返回指定分类的关键词，不存在时返回 nil
func (t *Taxonomy) Keywords(name string) []string {
	for _, c := range t.categories {
		if c.Name == name {
			return append([]string(nil), c.Keywords...)
		}
	}
	return nil
}

// Len 分类数量
func (t *Taxonomy) Len() int {
	return len(t.categories)
}

// Each 按顺序遍历每个 (category, keyword)，fn 不得修改分类表
func (t *Taxonomy) Each(fn func(category, keyword string)) {
	for _, c := range t.categories {
		for _, kw := range c.Keywords {
			fn(c.Name, kw)
		}
	}
}

var defaultCategories = []Category{
	{Name: Technology, Keywords: []string{
		"tech", "ai", "artificial intelligence", "software", "platform", "digital",
		"automation", "robot", "startup", "cloud", "data",
	}},
	{Name: Market, Keywords: []string{
		"market", "demand", "growth", "trend", "sales", "revenue", "price",
	}},
	{Name: Investment, Keywords: []string{
		"investment", "funding", "venture", "capital", "raises", "investor", "ipo", "acquisition",
	}},
	{Name: Shortage, Keywords: []string{
		"shortage", "scarcity", "lack of", "supply chain", "deficit", "shortage", "backlog",
	}},
	{Name: Crisis, Keywords: []string{
		"crisis", "collapse", "disruption", "emergency", "recession", "layoffs", "inflation",
	}},
	{Name: Regulation, Keywords: []string{
		"regulation", "policy", "law", "compliance", "sanction", "license", "government",
	}},
	{Name: NewSector, Keywords: []string{
		"emerging", "new industry", "renewable", "clean energy", "electric vehicle", "biotech", "space", "green",
	}},
	{Name: Consumer, Keywords: []string{
		"consumer", "customers", "shopping", "retail", "lifestyle", "subscription", "e-commerce",
	}},
}

var defaultTaxonomy = New(defaultCategories...)

// Default 返回内置分类表
func Default() *Taxonomy {
	return defaultTaxonomy
}

type file struct {
	Categories []Category `yaml:"categories"`
}

// Load 从 YAML 文件加载分类表
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy: %w", err)
	}
	return Parse(data)
}

// Parse 解析 YAML 格式的分类表
func Parse(data []byte) (*Taxonomy, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing taxonomy: %w", err)
	}
	t := New(f.Categories...)
	if t.Len() == 0 {
		return nil, fmt.Errorf("taxonomy has no categories")
	}
	return t, nil
}

// FromFile 未配置路径时返回内置分类表
func FromFile(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
