package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders descriptions and quiz questions. It re-creates
// the glamour renderer when the wrap width changes.
type MarkdownRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// NewMarkdownRenderer returns a renderer for the given theme name ("dark",
// "light", "notty", or anything else for auto-detection).
func NewMarkdownRenderer(style string) *MarkdownRenderer {
	return &MarkdownRenderer{style: style}
}

func (r *MarkdownRenderer) options(width int) []glamour.TermRendererOption {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	switch r.style {
	case "dark", "light", "notty", "ascii":
		opts = append(opts, glamour.WithStandardStyle(r.style))
	default:
		opts = append(opts, glamour.WithAutoStyle())
	}
	return opts
}

// Render renders md wrapped at width. When glamour fails the source text is
// returned unchanged.
func (r *MarkdownRenderer) Render(md string, width int) string {
	if width < 20 {
		width = 20
	}
	if r.renderer == nil || r.width != width {
		tr, err := glamour.NewTermRenderer(r.options(width)...)
		if err != nil {
			return md
		}
		r.renderer = tr
		r.width = width
	}
	out, err := r.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
