package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yubzen/quickvibe/internal/providers"
)

var (
	connectModalBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("205")).
				Background(lipgloss.Color("235")).
				Padding(1, 2)
	connectTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	connectHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	connectSelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true)
	connectItemStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	connectOffStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	connectErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type SelectOption struct {
	Label   string
	Enabled bool
}

type SelectModal struct {
	Title    string
	Hint     string
	Visible  bool
	Selected int
	Options  []SelectOption
	MaxWidth int
}

func NewSelectModal(title, hint string) *SelectModal {
	return &SelectModal{
		Title:    title,
		Hint:     hint,
		Visible:  false,
		Selected: -1,
	}
}

func (m *SelectModal) SetOptions(options []SelectOption) {
	m.Options = append([]SelectOption(nil), options...)
	m.Selected = m.firstEnabledIndex()
}

func (m *SelectModal) firstEnabledIndex() int {
	for i, opt := range m.Options {
		if opt.Enabled {
			return i
		}
	}
	return -1
}

func (m *SelectModal) Open() {
	m.Visible = true
	if m.Selected < 0 || m.Selected >= len(m.Options) || !m.Options[m.Selected].Enabled {
		m.Selected = m.firstEnabledIndex()
	}
}

func (m *SelectModal) SetWidth(width int) {
	m.MaxWidth = width
}

func (m *SelectModal) Close() {
	m.Visible = false
}

func (m *SelectModal) Move(delta int) {
	if len(m.Options) == 0 || m.Selected < 0 {
		return
	}
	next := m.Selected
	for {
		next += delta
		if next < 0 || next >= len(m.Options) {
			return
		}
		if m.Options[next].Enabled {
			m.Selected = next
			return
		}
	}
}

// SelectValue moves the cursor to the enabled option with the given label.
func (m *SelectModal) SelectValue(label string) {
	for i, opt := range m.Options {
		if opt.Enabled && opt.Label == label {
			m.Selected = i
			return
		}
	}
}

func (m *SelectModal) SelectedOption() (SelectOption, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Options) {
		return SelectOption{}, false
	}
	opt := m.Options[m.Selected]
	if !opt.Enabled {
		return SelectOption{}, false
	}
	return opt, true
}

func (m *SelectModal) View() string {
	if !m.Visible {
		return ""
	}
	contentWidth := m.modalContentWidth()
	var lines []string
	for i, opt := range m.Options {
		prefix := "  "
		style := connectItemStyle
		if !opt.Enabled {
			style = connectOffStyle
		}
		if i == m.Selected {
			prefix = "> "
			style = connectSelStyle
		}
		line := prefix + opt.Label
		if contentWidth > 0 {
			line = wrapWithPrefix(prefix, opt.Label, contentWidth)
		}
		lines = append(lines, style.Render(line))
	}

	title := m.Title
	hint := m.Hint
	if contentWidth > 0 {
		title = wrapToWidth(title, contentWidth)
		hint = wrapToWidth(hint, contentWidth)
	}

	boxStyle := connectModalBoxStyle
	if m.MaxWidth > 0 {
		boxStyle = boxStyle.MaxWidth(m.MaxWidth)
	}

	return boxStyle.Render(fmt.Sprintf("%s\n\n%s\n\n%s",
		connectTitleStyle.Render(title),
		strings.Join(lines, "\n"),
		connectHintStyle.Render(hint),
	))
}

// APIKeyModal collects a Groq key. The value is never drawn in clear.
type APIKeyModal struct {
	Visible      bool
	Value        string
	Connecting   bool
	Status       string
	ErrorMessage string
	MaxWidth     int
}

func (m *APIKeyModal) Open() {
	m.Visible = true
	m.Value = ""
	m.Connecting = false
	m.Status = ""
	m.ErrorMessage = ""
}

func (m *APIKeyModal) Close() {
	m.Visible = false
	m.Value = ""
	m.Connecting = false
	m.Status = ""
	m.ErrorMessage = ""
}

func (m *APIKeyModal) BeginConnecting(status string) {
	m.Connecting = true
	m.Status = strings.TrimSpace(status)
	m.ErrorMessage = ""
}

func (m *APIKeyModal) SetError(errMsg string) {
	m.Connecting = false
	m.Status = ""
	m.ErrorMessage = strings.TrimSpace(errMsg)
}

func (m *APIKeyModal) SetWidth(width int) {
	m.MaxWidth = width
}

// Update edits the pending value. submit reports enter on a non-empty key.
func (m *APIKeyModal) Update(msg tea.KeyMsg) (submit bool) {
	if m.Connecting {
		return false
	}
	switch msg.Type {
	case tea.KeyEnter:
		if strings.TrimSpace(m.Value) == "" {
			m.SetError("Bruh, API key first. 🙄")
			return false
		}
		return true
	case tea.KeyBackspace, tea.KeyCtrlH:
		m.Value = trimLastRune(m.Value)
	case tea.KeyCtrlU:
		m.Value = ""
	case tea.KeyRunes:
		m.Value += strings.TrimSpace(string(msg.Runes))
		m.ErrorMessage = ""
	}
	return false
}

func (m *APIKeyModal) View() string {
	if !m.Visible {
		return ""
	}
	contentWidth := m.modalContentWidth()
	wrap := func(text string) string {
		if contentWidth <= 0 {
			return text
		}
		return wrapToWidth(text, contentWidth)
	}

	title := connectTitleStyle.Render(wrap("🔑 Groq API Key"))
	subtitle := connectHintStyle.Render(wrap("Paste a key from console.groq.com. It starts with gsk_ and stays in memory only."))
	cursor := lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Render("█")
	inputValue := cursor
	if m.Value != "" {
		inputValue = providers.MaskCredential(m.Value) + cursor
	}
	statusLine := ""
	if m.Connecting {
		statusLine = connectHintStyle.Render(wrap("Connecting... " + m.Status))
	} else if m.ErrorMessage != "" {
		statusLine = connectErrStyle.Render(wrap(m.ErrorMessage))
	}
	footer := "enter: connect  ctrl+u: clear  esc: cancel"
	if m.Connecting {
		footer = "esc: close"
	}

	parts := []string{
		title,
		subtitle,
		"",
		wrap(inputValue),
	}
	if statusLine != "" {
		parts = append(parts, "", statusLine)
	}
	parts = append(parts, "", connectHintStyle.Render(wrap(footer)))

	boxStyle := connectModalBoxStyle
	if m.MaxWidth > 0 {
		boxStyle = boxStyle.MaxWidth(m.MaxWidth)
	}
	return boxStyle.Render(strings.Join(parts, "\n"))
}

func (m *SelectModal) modalContentWidth() int {
	if m == nil || m.MaxWidth <= 0 {
		return 0
	}
	width := m.MaxWidth - 8
	if width < 20 {
		width = 20
	}
	return width
}

func (m *APIKeyModal) modalContentWidth() int {
	if m == nil || m.MaxWidth <= 0 {
		return 0
	}
	width := m.MaxWidth - 8
	if width < 20 {
		width = 20
	}
	return width
}
