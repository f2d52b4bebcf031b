package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor = lipgloss.Color("#0969DA")
	accentColor  = lipgloss.Color("#2DA44E")
	warningColor = lipgloss.Color("#D29922")
	errorColor   = lipgloss.Color("#CF222E")
	dimColor     = lipgloss.Color("#6E7681")
	linkColor    = lipgloss.Color("#58A6FF")
	scoreColor   = lipgloss.Color("#F778BA")
	dateColor    = lipgloss.Color("#A371F7")
	sourceColor  = lipgloss.Color("#FFA657")

	HeaderStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accentColor)

	SectionStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			MarginTop(1)

	TitleStyle = lipgloss.NewStyle().Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	ScoreStyle = lipgloss.NewStyle().
			Foreground(scoreColor).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	LinkStyle = lipgloss.NewStyle().
			Foreground(linkColor).
			Underline(true)

	DateStyle = lipgloss.NewStyle().
			Foreground(dateColor).
			Italic(true)

	SourceStyle = lipgloss.NewStyle().
			Foreground(sourceColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	badgeStyle = lipgloss.NewStyle().Bold(true)
)

var badgeColors = map[string]lipgloss.Color{
	"local":         accentColor,
	"national":      primaryColor,
	"international": dateColor,
}

func badge(scope, text string) string {
	return badgeStyle.Foreground(badgeColors[scope]).Render("[" + text + "]")
}

// WriteTerminal 输出终端彩色列表
func WriteTerminal(w io.Writer, p *Page) error {
	var b strings.Builder

	header := fmt.Sprintf("📡 %s  %s", p.Title, DimStyle.Render(p.GeneratedAt))
	b.WriteString(HeaderStyle.Render(header))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n", DimStyle.Render(fmt.Sprintf("scopes: %s • %d opportunities from %d articles",
		strings.Join(p.Scopes, ", "), len(p.Opportunities), p.TotalArticles)))

	for _, f := range p.Failures {
		fmt.Fprintf(&b, "%s %s\n", WarningStyle.Render("! "+f.Scope), f.Message)
	}

	b.WriteString(SectionStyle.Render("Opportunities"))
	b.WriteString("\n")
	if len(p.Opportunities) == 0 {
		b.WriteString(DimStyle.Render("  No opportunities found in this scan."))
		b.WriteString("\n")
	}
	for i, o := range p.Opportunities {
		fmt.Fprintf(&b, "%2d. %s %s\n", i+1, ScoreStyle.Render(fmt.Sprintf("[%d]", o.Score)), TitleStyle.Render(o.Title))
		fmt.Fprintf(&b, "    %s %s  %s • %s\n",
			badge(o.Scope, o.ScopeBadge), LabelStyle.Render(o.Classification),
			SourceStyle.Render(o.Source), DateStyle.Render(o.Date))
		fmt.Fprintf(&b, "    %s\n", DimStyle.Render(fmt.Sprintf("relevance %.1f • %s", o.Relevance, strings.Join(o.Categories, ", "))))
		if o.URL != "" {
			fmt.Fprintf(&b, "    %s\n", LinkStyle.Render(o.URL))
		}
	}

	b.WriteString(SectionStyle.Render(fmt.Sprintf("Latest Articles (%d of %d)", len(p.Articles), p.TotalArticles)))
	b.WriteString("\n")
	for _, a := range p.Articles {
		fmt.Fprintf(&b, "  %s %s\n", badge(a.Scope, a.ScopeBadge), a.Title)
		fmt.Fprintf(&b, "    %s • %s\n", SourceStyle.Render(a.Source), DateStyle.Render(a.Date))
	}

	if p.ScanID != "" {
		fmt.Fprintf(&b, "\n%s\n", DimStyle.Render("scan "+p.ScanID))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
