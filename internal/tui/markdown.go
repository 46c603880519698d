package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	log "github.com/sirupsen/logrus"
)

// markdownRenderers caches one glamour renderer per wrap width.
var markdownRenderers = struct {
	sync.Mutex
	byWidth map[int]*glamour.TermRenderer
}{byWidth: make(map[int]*glamour.TermRenderer)}

func markdownRenderer(width int) *glamour.TermRenderer {
	markdownRenderers.Lock()
	defer markdownRenderers.Unlock()

	if r, ok := markdownRenderers.byWidth[width]; ok {
		return r
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		log.WithError(err).Warn("markdown renderer unavailable")
		return nil
	}
	markdownRenderers.byWidth[width] = r
	return r
}

// renderMarkdown falls back to plain wrapping when glamour fails.
func renderMarkdown(md string, width int) string {
	if width < 20 {
		width = 20
	}
	if r := markdownRenderer(width); r != nil {
		if out, err := r.Render(md); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return wrapToWidth(md, width)
}
