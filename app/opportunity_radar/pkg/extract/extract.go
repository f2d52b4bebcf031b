package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

// ContentExtractor 抓取网页正文
type ContentExtractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Readability 基于 go-readability 的正文抽取
type Readability struct {
	Timeout time.Duration
}

// NewReadability 创建正文抽取器，timeout 单位为秒
func NewReadability(timeout int) *Readability {
	t := time.Duration(timeout) * time.Second
	if t == 0 {
		t = 15 * time.Second
	}
	return &Readability{Timeout: t}
}

var _ ContentExtractor = (*Readability)(nil)

// Extract 下载并解析页面，返回纯文本正文
func (r *Readability) Extract(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	article, err := readability.FromURL(url, r.Timeout)
	if err != nil {
		return "", fmt.Errorf("readability %s: %w", url, err)
	}
	return Clean(article.TextContent), nil
}

// Clean 合并连续空白
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate 截取前 n 个字符（按 rune 计），在单词边界处截断并追加省略号
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	cut := string(runes[:n])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "…"
}
