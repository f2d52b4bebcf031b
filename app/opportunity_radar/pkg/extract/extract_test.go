package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const page = `<!DOCTYPE html>
<html><head><title>Port expansion</title></head>
<body>
<nav>Home | About</nav>
<article>
<h1>Port expansion draws new investment</h1>
<p>The regional port authority announced a major expansion on Monday, citing a shortage of container capacity across the coast.</p>
<p>Officials said the project would attract venture capital and create hundreds of jobs in logistics and automation over the next five years.</p>
<p>Local businesses expect demand for warehousing and transport services to grow steadily as the new terminals come online.</p>
</article>
</body></html>`

func TestReadabilityExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}))
	defer srv.Close()

	text, err := NewReadability(5).Extract(context.Background(), srv.URL+"/port")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(text, "shortage of container capacity") {
		t.Errorf("Extract() = %q, want article body", text)
	}
	if strings.Contains(text, "  ") {
		t.Errorf("Extract() left repeated spaces: %q", text)
	}
}

func TestReadabilityExtractCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewReadability(5).Extract(ctx, "http://unused.invalid"); err == nil {
		t.Error("Extract() with canceled context should fail")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"word boundary", "hello brave new world", 13, "hello brave…"},
		{"no space", "abcdefghij", 4, "abcd…"},
		{"multibyte", "数据中心扩建计划", 4, "数据中心…"},
		{"disabled", "hello world", 0, "hello world"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.n); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
			}
		})
	}
}
