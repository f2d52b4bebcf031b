package render

import (
	"embed"
	"html/template"
	"io"
	"strings"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var reportTpl = template.Must(template.New("report.html.tmpl").Funcs(template.FuncMap{
	"join": strings.Join,
	"scoreClass": func(score int) string {
		switch {
		case score >= 5:
			return "score-high"
		case score >= 3:
			return "score-mid"
		}
		return ""
	},
}).ParseFS(templateFS, "templates/report.html.tmpl"))

// WriteHTML 渲染 HTML 报告
func WriteHTML(w io.Writer, p *Page) error {
	return reportTpl.Execute(w, p)
}
