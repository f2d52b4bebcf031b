package news

import "testing"

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "  ", ""},
		{"plain", "Factory orders rise", "Factory orders rise"},
		{"heading and emphasis", "## Markets\n\nChip **shortage** eases", "Markets Chip shortage eases"},
		{"link", "Read [the report](https://example.com/r) today", "Read the report today"},
		{"list", "- solar\n- wind", "solar wind"},
		{"image dropped", "![chart](https://example.com/c.png) Sales up", "Sales up"},
		{"html dropped", "Prices <span>jump</span> again", "Prices jump again"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.input); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
