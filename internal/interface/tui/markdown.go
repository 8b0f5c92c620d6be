package tui

import (
	"github.com/charmbracelet/glamour"
)

// markdownRenderer caches a glamour renderer keyed on wrap width, since
// rebuilding one per frame is expensive.
type markdownRenderer struct {
	theme    string
	width    int
	renderer *glamour.TermRenderer
}

func newMarkdownRenderer(theme string) *markdownRenderer {
	return &markdownRenderer{theme: theme}
}

// render formats Markdown for the given wrap width, falling back to the raw
// text when the renderer cannot be built.
func (m *markdownRenderer) render(text string, width int) string {
	if width < 10 {
		width = 10
	}
	if m.renderer == nil || m.width != width {
		opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
		if m.theme == "" || m.theme == "auto" {
			opts = append(opts, glamour.WithAutoStyle())
		} else {
			opts = append(opts, glamour.WithStandardStyle(m.theme))
		}
		r, err := glamour.NewTermRenderer(opts...)
		if err != nil {
			return text
		}
		m.renderer = r
		m.width = width
	}

	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return out
}
