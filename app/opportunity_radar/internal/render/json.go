package render

import (
	"encoding/json"
	"io"
)

// WriteJSON 以缩进 JSON 输出页面
func WriteJSON(w io.Writer, p *Page) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(p)
}
