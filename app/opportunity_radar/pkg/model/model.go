package model

import (
	"fmt"
	"strings"
	"time"
)

// Scope 新闻范围
type Scope string

const (
	ScopeLocal         Scope = "local"
	ScopeNational      Scope = "national"
	ScopeInternational Scope = "international"
)

// AllScopes 返回全部范围，按界面上的默认顺序
func AllScopes() []Scope {
	return []Scope{ScopeLocal, ScopeNational, ScopeInternational}
}

// Valid 是否为已知范围
func (s Scope) Valid() bool {
	switch s {
	case ScopeLocal, ScopeNational, ScopeInternational:
		return true
	}
	return false
}

// ParseScope 解析单个范围（大小写不敏感）
func ParseScope(s string) (Scope, error) {
	scope := Scope(strings.ToLower(strings.TrimSpace(s)))
	if !scope.Valid() {
		return "", fmt.Errorf("unknown scope %q (valid: local, national, international)", s)
	}
	return scope, nil
}

// ParseScopes 解析逗号分隔或多值的范围列表，去重并保持顺序
func ParseScopes(values []string) ([]Scope, error) {
	var scopes []Scope
	seen := make(map[Scope]bool)
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			scope, err := ParseScope(part)
			if err != nil {
				return nil, err
			}
			if seen[scope] {
				continue
			}
			seen[scope] = true
			scopes = append(scopes, scope)
		}
	}
	return scopes, nil
}

// Article 抓取到的新闻记录，返回后不再修改。序列化形态由 render 的视图模型负责。
type Article struct {
	Title       string
	Description string
	URL         string
	PublishedAt time.Time
	SourceName  string
	Scope       Scope
}

// Match 命中的指标 (category, keyword)
type Match struct {
	Category string
	Keyword  string
}

// Opportunity 由单篇文章得出的机会判断
type Opportunity struct {
	Article        Article
	Score          int
	Categories     []string
	Classification string
	Matches        []Match
	Relevance      float64
}
