package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// wrapToWidth soft-wraps each line of text to width cells, breaking long
// words, and drops trailing padding lipgloss adds.
func wrapToWidth(text string, width int) string {
	return wrapWithPrefix("", text, width)
}

// wrapWithPrefix puts prefix in front of the first line and indents the
// continuation lines to line up under it.
func wrapWithPrefix(prefix, content string, width int) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if width <= 0 {
		return prefix + content
	}

	prefixWidth := lipgloss.Width(prefix)
	if prefixWidth >= width {
		return wrapLines(prefix+content, width)
	}

	lines := strings.Split(wrapLines(content, width-prefixWidth), "\n")
	indent := strings.Repeat(" ", prefixWidth)
	for i := range lines {
		if i == 0 {
			lines[i] = prefix + lines[i]
		} else {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func wrapLines(text string, width int) string {
	wrapper := lipgloss.NewStyle().Width(width)
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			out = append(out, "")
			continue
		}
		for _, wrapped := range strings.Split(wrapper.Render(line), "\n") {
			out = append(out, strings.TrimRight(wrapped, " "))
		}
	}
	return strings.Join(out, "\n")
}

// placeOverlay centers a modal over the screen when its size is known.
func placeOverlay(width, height int, overlay string) string {
	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	}
	return overlay
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
