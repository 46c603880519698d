package tui

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yubzen/quickvibe/internal/state"
)

//go:embed about.md
var aboutMarkdown string

var (
	textModalBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("75")).
				Background(lipgloss.Color("235")).
				Padding(1, 2)
	textModalTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	textModalHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	textModalBodyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// TextModal is a scrollable read-only pager.
type TextModal struct {
	Visible  bool
	Title    string
	body     string
	markdown bool
	viewport viewport.Model
}

func NewTextModal() *TextModal {
	return &TextModal{viewport: viewport.New(70, 14)}
}

func (m *TextModal) SetSize(width, height int) {
	if m == nil || width <= 0 || height <= 0 {
		return
	}
	bodyWidth := width - 12
	if bodyWidth < 36 {
		bodyWidth = 36
	}
	bodyHeight := height - 12
	if bodyHeight < 6 {
		bodyHeight = 6
	}
	m.viewport.Width = bodyWidth
	m.viewport.Height = bodyHeight
	m.refresh()
}

func (m *TextModal) OpenText(title, body string) {
	m.open(title, body, false)
}

func (m *TextModal) OpenMarkdown(title, body string) {
	m.open(title, body, true)
}

func (m *TextModal) open(title, body string, markdown bool) {
	if m == nil {
		return
	}
	m.Visible = true
	m.Title = strings.TrimSpace(title)
	m.body = body
	m.markdown = markdown
	m.refresh()
	m.viewport.GotoTop()
}

func (m *TextModal) Close() {
	if m == nil {
		return
	}
	m.Visible = false
	m.Title = ""
	m.body = ""
	m.viewport.SetContent("")
}

func (m *TextModal) Update(msg tea.Msg) tea.Cmd {
	if m == nil || !m.Visible {
		return nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *TextModal) View() string {
	if m == nil || !m.Visible {
		return ""
	}
	titleView := textModalTitleStyle.Render(m.Title)
	body := textModalBodyStyle.Render(m.viewport.View())
	hint := textModalHintStyle.Render("up/down/pgup/pgdn: scroll  esc: close")
	return textModalBoxStyle.Render(fmt.Sprintf("%s\n\n%s\n\n%s", titleView, body, hint))
}

func (m *TextModal) refresh() {
	width := m.viewport.Width
	if width <= 0 {
		width = 70
	}
	if m.markdown {
		m.viewport.SetContent(renderMarkdown(m.body, width))
		return
	}
	m.viewport.SetContent(wrapToWidth(m.body, width))
}

// formatErrorLog renders entries oldest first, one per line.
func formatErrorLog(entries []state.ErrorLogEntry) string {
	if len(entries) == 0 {
		return "No errors this session. Clean vibes only. ✨"
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s] %s", e.At.Format(time.TimeOnly), e.Message)
	}
	return b.String()
}
