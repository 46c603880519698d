package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yubzen/quickvibe/internal/chat"
)

var (
	sbBaseStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("235")).Padding(0, 1)
	sbVibeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	sbModelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	sbLiveStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	sbPendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	sbOfflineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	sbErrCountStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type StatusBarModel struct {
	Status      chat.ConnectionStatus
	Vibe        string
	NextModel   string
	ModelCount  int
	Temperature float64
	ErrorCount  int
	width       int
}

func NewStatusBarModel() *StatusBarModel {
	return &StatusBarModel{Status: chat.StatusNoKey}
}

func (m *StatusBarModel) Init() tea.Cmd { return nil }

func (m *StatusBarModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// Apply copies the fields the bar shows from a render.
func (m *StatusBarModel) Apply(r chat.Render) {
	m.Status = r.Status
	m.Vibe = r.Vibe
	m.NextModel = r.NextModel()
	m.ModelCount = len(r.Models)
	m.Temperature = r.Temperature
	m.ErrorCount = len(r.ErrorLog)
}

func (m *StatusBarModel) View() string {
	statusStyle := sbOfflineStyle
	switch m.Status {
	case chat.StatusLive:
		statusStyle = sbLiveStyle
	case chat.StatusUnvalidated:
		statusStyle = sbPendingStyle
	}

	next := m.NextModel
	if strings.TrimSpace(next) == "" {
		next = "(none)"
	}
	parts := []string{
		statusStyle.Render(m.Status.String()),
		sbVibeStyle.Render(fmt.Sprintf("[VIBE: %s]", m.Vibe)),
		sbModelStyle.Render(fmt.Sprintf("[NEXT: %s]", next)),
		sbModelStyle.Render(fmt.Sprintf("[MODELS: %d]", m.ModelCount)),
		sbModelStyle.Render(fmt.Sprintf("[TEMP: %.2f]", m.Temperature)),
	}
	if m.ErrorCount > 0 {
		parts = append(parts, sbErrCountStyle.Render(fmt.Sprintf("[ERRORS: %d]", m.ErrorCount)))
	}
	return sbBaseStyle.Width(m.width).Render(strings.Join(parts, " | "))
}
