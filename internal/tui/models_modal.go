package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var modelModalBG = lipgloss.Color("235")

var (
	modelModalBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")).
				Background(modelModalBG).
				Padding(1, 2)
	modelModalTitleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Background(modelModalBG).Bold(true)
	modelModalHintStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Background(modelModalBG)
	modelModalItemStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(modelModalBG)
	modelModalSearchLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Background(modelModalBG).Bold(true)
	modelModalSearchValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(modelModalBG)
	modelModalSearchHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Background(modelModalBG)
	modelModalSearchCursor     = lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Background(modelModalBG)
)

const currentModelMarker = "🎯 Current"

// RotationEntry is one model in the round-robin order.
type RotationEntry struct {
	Position int
	ModelID  string
	Current  bool
}

func (e RotationEntry) FilterValue() string {
	return strings.TrimSpace(e.ModelID)
}

func (e RotationEntry) Title() string {
	if e.Current {
		return fmt.Sprintf("%s  %s", e.ModelID, currentModelMarker)
	}
	return e.ModelID
}

func (e RotationEntry) Description() string {
	return fmt.Sprintf("#%d in rotation", e.Position+1)
}

// ModelsModal lists the rotation read-only. The cursor is owned by the
// session; this view only marks it.
type ModelsModal struct {
	Visible  bool
	entries  []RotationEntry
	filtered []RotationEntry
	list     list.Model
	query    string
}

func NewModelsModal() *ModelsModal {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("252")).Background(modelModalBG)
	delegate.Styles.NormalDesc = delegate.Styles.NormalDesc.Foreground(lipgloss.Color("244")).Background(modelModalBG)
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(lipgloss.Color("213")).Background(modelModalBG).Bold(true)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(lipgloss.Color("183")).Background(modelModalBG).Bold(true)
	delegate.Styles.DimmedTitle = delegate.Styles.DimmedTitle.Background(modelModalBG)
	delegate.Styles.DimmedDesc = delegate.Styles.DimmedDesc.Background(modelModalBG)

	l := list.New(nil, delegate, 72, 14)
	l.Styles.TitleBar = l.Styles.TitleBar.Background(modelModalBG)
	l.Styles.NoItems = l.Styles.NoItems.Background(modelModalBG)
	l.Styles.PaginationStyle = l.Styles.PaginationStyle.Background(modelModalBG)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return &ModelsModal{list: l}
}

// SetRotation replaces the listed models and marks the one at cursor.
func (m *ModelsModal) SetRotation(models []string, cursor int) {
	if m == nil {
		return
	}
	m.entries = make([]RotationEntry, 0, len(models))
	for i, id := range models {
		m.entries = append(m.entries, RotationEntry{Position: i, ModelID: id, Current: i == cursor})
	}
	m.applyFilter()
}

func (m *ModelsModal) SetSize(width, height int) {
	if m == nil || width <= 0 || height <= 0 {
		return
	}
	innerWidth := width - 10
	if innerWidth < 44 {
		innerWidth = 44
	}
	innerHeight := height - 14
	if innerHeight < 6 {
		innerHeight = 6
	}
	m.list.SetWidth(innerWidth)
	m.list.SetHeight(innerHeight)
}

func (m *ModelsModal) Open() {
	if m == nil {
		return
	}
	m.Visible = true
	m.query = ""
	m.applyFilter()
}

func (m *ModelsModal) Close() {
	if m == nil {
		return
	}
	m.Visible = false
}

func (m *ModelsModal) Update(msg tea.Msg) tea.Cmd {
	if m == nil {
		return nil
	}
	if typed, ok := msg.(tea.KeyMsg); ok {
		switch typed.String() {
		case "backspace", "ctrl+h":
			if m.query != "" {
				m.query = trimLastRune(m.query)
				m.applyFilter()
			}
			return nil
		case "ctrl+u":
			m.query = ""
			m.applyFilter()
			return nil
		}
		if typed.Type == tea.KeyRunes && len(typed.Runes) > 0 && !typed.Alt {
			m.query += string(typed.Runes)
			m.applyFilter()
			return nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

// Visible entries after the search filter.
func (m *ModelsModal) Entries() []RotationEntry {
	if m == nil {
		return nil
	}
	return append([]RotationEntry(nil), m.filtered...)
}

func (m *ModelsModal) View() string {
	if m == nil || !m.Visible {
		return ""
	}
	title := modelModalTitleStyle.Render(fmt.Sprintf("Model Rotation (%d)", len(m.entries)))
	if len(m.entries) == 0 {
		body := modelModalItemStyle.Render("No models loaded. Hit /connect first.")
		hint := modelModalHintStyle.Render("esc: close")
		return modelModalBoxStyle.Render(fmt.Sprintf("%s\n\n%s\n\n%s", title, body, hint))
	}

	body := m.list.View()
	if len(m.filtered) == 0 {
		body = modelModalItemStyle.Render("No models match the search.")
	}

	searchText := strings.TrimSpace(m.query)
	if searchText == "" {
		searchText = modelModalSearchHintStyle.Render("type to search models")
	} else {
		searchText = modelModalSearchValueStyle.Render(searchText)
	}
	hint := modelModalHintStyle.Render("type: search  up/down: scroll  esc: close")

	return modelModalBoxStyle.Render(fmt.Sprintf("%s\n%s %s%s\n\n%s\n\n%s",
		title,
		modelModalSearchLabelStyle.Render("Search:"),
		searchText,
		modelModalSearchCursor.Render("█"),
		body,
		hint,
	))
}

func (m *ModelsModal) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.query))
	filtered := make([]RotationEntry, 0, len(m.entries))
	current := -1
	for _, e := range m.entries {
		if query != "" && !strings.Contains(strings.ToLower(e.ModelID), query) {
			continue
		}
		if e.Current {
			current = len(filtered)
		}
		filtered = append(filtered, e)
	}
	m.filtered = filtered

	items := make([]list.Item, 0, len(filtered))
	for _, e := range filtered {
		items = append(items, e)
	}
	m.list.SetItems(items)
	switch {
	case current >= 0:
		m.list.Select(current)
	case len(filtered) > 0:
		m.list.Select(0)
	}
}

func trimLastRune(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return ""
	}
	return string(runes[:len(runes)-1])
}
