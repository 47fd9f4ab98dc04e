package cli

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown styles understood by RenderMarkdown.
const (
	MarkdownDark  = "dark"
	MarkdownLight = "light"
	MarkdownPlain = "notty"
)

// RenderMarkdown renders AI answers for the terminal, wrapping at width. The
// input is returned unchanged if it cannot be rendered.
func RenderMarkdown(text string, width int, style string) string {
	if style == "" {
		style = MarkdownDark
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
