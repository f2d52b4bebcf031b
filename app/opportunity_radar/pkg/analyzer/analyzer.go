// Package analyzer 根据指标分类表为新闻打分、分类并排序，得出机会列表。
// Analyze 是纯函数：不持有状态，同一输入多次调用结果相同。
package analyzer

import (
	"sort"
	"strings"

	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/model"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/taxonomy"
)

// MinScore 入选机会所需的最少指标命中数
const MinScore = 2

// 分类标签
const (
	LabelTechMarket      = "Tech Market Opportunity"
	LabelProblemSolution = "Problem-Solution Opportunity"
	LabelInvestment      = "Investment Opportunity"
	LabelRegulatory      = "Regulatory Opportunity"
	LabelEmergingSector  = "Emerging Sector"
	LabelConsumerTrend   = "Consumer Trend Opportunity"
	LabelBusiness        = "Business Opportunity"
)

const (
	highValueWeight = 2.0
	actionWeight    = 1.5
)

var (
	highValueTerms = []string{"startup", "company", "business", "market", "industry", "sector"}
	actionTerms    = []string{"launch", "expand", "invest", "develop", "create", "build"}
)

// Analyzer 机会分析器
type Analyzer struct {
	taxonomy *taxonomy.Taxonomy
}

// New 创建分析器，tax 为 nil 时使用内置分类表
func New(tax *taxonomy.Taxonomy) *Analyzer {
	if tax == nil {
		tax = taxonomy.Default()
	}
	return &Analyzer{taxonomy: tax}
}

// Analyze 使用内置分类表分析文章
func Analyze(articles []model.Article) []model.Opportunity {
	return New(nil).Analyze(articles)
}

// Analyze 对每篇文章匹配指标，保留命中数 >= MinScore 的文章，
// 按 Score 降序、Relevance 降序稳定排序。空输入返回空切片。
func (a *Analyzer) Analyze(articles []model.Article) []model.Opportunity {
	opportunities := make([]model.Opportunity, 0)

	for _, art := range articles {
		text := SearchText(art)

		var matches []model.Match
		a.taxonomy.Each(func(category, keyword string) {
			if strings.Contains(text, keyword) {
				matches = append(matches, model.Match{Category: category, Keyword: keyword})
			}
		})

		score := len(matches)
		if score < MinScore {
			continue
		}

		categories := uniqueCategories(matches)
		opportunities = append(opportunities, model.Opportunity{
			Article:        art,
			Score:          score,
			Categories:     categories,
			Classification: Classify(categories),
			Matches:        matches,
			Relevance:      Relevance(text),
		})
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		if opportunities[i].Score != opportunities[j].Score {
			return opportunities[i].Score > opportunities[j].Score
		}
		return opportunities[i].Relevance > opportunities[j].Relevance
	})

	return opportunities
}

// SearchText 返回用于匹配的规范化文本：title + " " + description，NFC 后转小写
func SearchText(art model.Article) string {
	return taxonomy.Normalize(art.Title + " " + art.Description)
}

// Classify 按固定优先级从命中的分类得出标签，自上而下第一条成立者生效
func Classify(categories []string) string {
	has := make(map[string]bool, len(categories))
	for _, c := range categories {
		has[c] = true
	}

	switch {
	case has[taxonomy.Technology] && has[taxonomy.Market]:
		return LabelTechMarket
	case has[taxonomy.Shortage] || has[taxonomy.Crisis]:
		return LabelProblemSolution
	case has[taxonomy.Investment]:
		return LabelInvestment
	case has[taxonomy.Regulation]:
		return LabelRegulatory
	case has[taxonomy.NewSector]:
		return LabelEmergingSector
	case has[taxonomy.Consumer]:
		return LabelConsumerTrend
	default:
		return LabelBusiness
	}
}

// Relevance 计算次级排序信号。text 需已规范化；每个词只看是否出现，不计次数。
func Relevance(text string) float64 {
	var score float64
	for _, term := range highValueTerms {
		if strings.Contains(text, term) {
			score += highValueWeight
		}
	}
	for _, term := range actionTerms {
		if strings.Contains(text, term) {
			score += actionWeight
		}
	}
	return score
}

func uniqueCategories(matches []model.Match) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, m := range matches {
		if seen[m.Category] {
			continue
		}
		seen[m.Category] = true
		categories = append(categories, m.Category)
	}
	return categories
}
