package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// minMarkdownWrap keeps glamour output readable on compact canvases.
const minMarkdownWrap = 28

// markdownRenderer renders card details for the info modal. Glamour renderers
// are wrap-width specific, so one is cached per width and rebuilt on change.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// render converts markdown details into ANSI-styled terminal text wrapped at
// width. Any glamour failure degrades to the raw text instead of an error.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	if err := r.ensure(max(width, minMarkdownWrap)); err != nil {
		return markdown
	}
	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}

// ensure rebuilds the cached renderer when the wrap width changed.
func (r *markdownRenderer) ensure(wrapWidth int) error {
	if r.renderer != nil && r.width == wrapWidth {
		return nil
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return err
	}
	r.renderer = renderer
	r.width = wrapWidth
	return nil
}
