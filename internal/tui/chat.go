package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yubzen/quickvibe/internal/chat"
	"github.com/yubzen/quickvibe/internal/sanitize"
	"github.com/yubzen/quickvibe/internal/state"
)

var (
	chatViewportStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, true, false).BorderForeground(lipgloss.Color("238"))
	modelLabelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	replyErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	suggestBoxStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	suggestDescStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	suggestSelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true)
	splashLogoDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Bold(true)
	splashLogoBright  = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	splashCardStyle   = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(lipgloss.Color("205")).
				Padding(1, 2).
				Background(lipgloss.Color("236"))
	splashPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	splashCursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	splashTipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	loadingStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	loadingTimerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	placeholderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	promptIndicator   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)

	noticeStyles = map[chat.Level]lipgloss.Style{
		chat.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		chat.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		chat.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		chat.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
	}
)

const inputPlaceholder = "Paste a text or spill the situation..."

type ChatModel struct {
	viewport         viewport.Model
	textInput        textinput.Model
	spinner          spinner.Model
	transcript       []state.TranscriptEntry
	rendered         map[string]string
	renderedWidth    int
	notice           string
	noticeLevel      chat.Level
	tip              string
	slashSuggestions []slashCommand
	selectedSlashIdx int
	lastSuggestInput string
	width            int
	height           int
	isLoading        bool
	loadingStarted   time.Time
	loadingModel     string
	stickToBottom    bool
}

func NewChatModel() *ChatModel {
	ti := textinput.New()
	ti.Placeholder = ""
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = sanitize.MaxInputRunes
	ti.Width = 50

	vp := viewport.New(0, 0)
	vp.SetContent("")

	return &ChatModel{
		viewport:         vp,
		textInput:        ti,
		spinner:          spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(loadingStyle)),
		rendered:         make(map[string]string),
		selectedSlashIdx: -1,
		stickToBottom:    true,
		tip:              "Tip: Run /connect to add your Groq API key",
	}
}

func (m *ChatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		if !m.isLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		return m, cmd
	}

	var cmd tea.Cmd
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if isScrollKey(typed) {
			m.viewport, cmd = m.viewport.Update(msg)
			m.stickToBottom = m.viewport.AtBottom()
			return m, cmd
		}
	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		m.stickToBottom = m.viewport.AtBottom()
		return m, cmd
	}

	m.textInput, cmd = m.textInput.Update(msg)
	m.updateSlashSuggestions()
	return m, cmd
}

func isScrollKey(k tea.KeyMsg) bool {
	switch k.Type {
	case tea.KeyPgUp, tea.KeyPgDown:
		return true
	}
	return false
}

func (m *ChatModel) SetSize(w, h int) {
	if w == 0 || h == 0 {
		return
	}
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.textInput.Width = m.inputWrapWidth()
	m.reflow()

	m.renderMessages()
}

// SetLoading toggles the in-flight indicator. Starting returns the spinner
// tick that keeps it animated.
func (m *ChatModel) SetLoading(loading bool, model string) tea.Cmd {
	wasLoading := m.isLoading
	m.isLoading = loading
	m.loadingModel = strings.TrimSpace(model)
	m.reflow()
	if loading && !wasLoading {
		m.loadingStarted = time.Now()
		return m.spinner.Tick
	}
	return nil
}

func (m *ChatModel) IsLoading() bool {
	return m.isLoading
}

// SetTranscript replaces the rendered conversation.
func (m *ChatModel) SetTranscript(entries []state.TranscriptEntry) {
	m.transcript = append([]state.TranscriptEntry(nil), entries...)
	m.renderMessages()
	if m.stickToBottom {
		m.viewport.GotoBottom()
	}
}

func (m *ChatModel) SetNotice(level chat.Level, notice string) {
	m.noticeLevel = level
	m.notice = strings.TrimSpace(notice)
	m.reflow()
}

func (m *ChatModel) Notice() string {
	return m.notice
}

// SetTip sets the hint shown under the empty-state card.
func (m *ChatModel) SetTip(tip string) {
	m.tip = strings.TrimSpace(tip)
}

func (m *ChatModel) renderMessages() {
	contentWidth := m.viewport.Width
	if contentWidth <= 0 {
		contentWidth = m.width
	}
	if contentWidth <= 0 {
		contentWidth = 80
	}
	if contentWidth != m.renderedWidth {
		m.rendered = make(map[string]string)
		m.renderedWidth = contentWidth
	}

	blocks := make([]string, 0, len(m.transcript))
	for _, e := range m.transcript {
		blocks = append(blocks, m.renderEntry(e, contentWidth))
	}
	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
}

func (m *ChatModel) renderEntry(e state.TranscriptEntry, width int) string {
	content := strings.TrimSpace(e.Content)
	switch {
	case e.Role == state.RoleUser:
		return promptIndicator.Render("> ") + wrapToWidth(content, width-2)
	case e.Error:
		return replyErrorStyle.Render(wrapToWidth(content, width))
	}

	body, ok := m.rendered[content]
	if !ok {
		body = renderMarkdown(content, width)
		m.rendered[content] = body
	}
	if e.Model == "" {
		return body
	}
	return body + "\n" + modelLabelStyle.Render("🧠: "+e.Model)
}

func (m *ChatModel) View() string {
	if len(m.transcript) == 0 && !m.isLoading {
		return m.emptyStateView()
	}

	vpView := chatViewportStyle.Width(m.width).Render(m.viewport.View())

	parts := []string{vpView}
	if m.isLoading {
		parts = append(parts, m.renderLoadingIndicator())
	}
	if line := m.renderNotice(); line != "" {
		parts = append(parts, line)
	}
	if len(m.slashSuggestions) > 0 {
		lines := m.renderSuggestionsForWidth(maxInt(16, m.width-4))
		parts = append(parts, suggestBoxStyle.Width(m.width).Padding(0, 1).Render(strings.Join(lines, "\n")))
	}
	parts = append(parts, lipgloss.NewStyle().Padding(0, 1).Render(m.renderInputForView()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *ChatModel) renderNotice() string {
	if m.notice == "" {
		return ""
	}
	style, ok := noticeStyles[m.noticeLevel]
	if !ok {
		style = noticeStyles[chat.LevelInfo]
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(style.Render(wrapToWidth(m.notice, maxInt(16, m.width-2))))
}

func (m *ChatModel) renderLoadingIndicator() string {
	elapsed := time.Since(m.loadingStarted).Round(time.Second)
	who := "QuickVibe"
	if m.loadingModel != "" {
		who = m.loadingModel
	}
	return " " + m.spinner.View() + loadingStyle.Render(" "+who+" is cooking...") + " " + loadingTimerStyle.Render(formatElapsed(elapsed))
}

func formatElapsed(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	mins := secs / 60
	secs = secs % 60
	return fmt.Sprintf("%dm%ds", mins, secs)
}

func (m *ChatModel) emptyStateView() string {
	cardWidth := m.width - 24
	if cardWidth > 96 {
		cardWidth = 96
	}
	maxByScreen := m.width - 4
	if maxByScreen > 0 && cardWidth > maxByScreen {
		cardWidth = maxByScreen
	}
	if cardWidth < 24 {
		cardWidth = 24
	}

	ti := m.textInput
	if cardWidth > 10 {
		ti.Width = cardWidth - 8
	}

	cardLines := []string{
		splashPromptStyle.Render("Drop the deets & I'll craft some A+ replies 🔥💯"),
		"",
	}
	inputLines := strings.Split(m.renderSimpleInput(ti), "\n")
	inputLines[0] = promptIndicator.Render("> ") + inputLines[0]
	for i := 1; i < len(inputLines); i++ {
		inputLines[i] = "  " + inputLines[i]
	}
	cardLines = append(cardLines, strings.Join(inputLines, "\n"))
	if len(m.slashSuggestions) > 0 {
		cardLines = append(cardLines, "", strings.Join(m.renderSuggestionsForWidth(maxInt(16, cardWidth-6)), "\n"))
	}

	card := splashCardStyle.Width(cardWidth).Render(strings.Join(cardLines, "\n"))
	parts := []string{m.renderLogo(), "", card}
	if notice := m.renderNotice(); notice != "" {
		parts = append(parts, "", notice)
	}
	if m.tip != "" {
		parts = append(parts, "", splashTipStyle.Render(m.tip))
	}
	body := lipgloss.JoinVertical(lipgloss.Center, parts...)
	return placeOverlay(m.width, m.height, body)
}

func (m *ChatModel) renderLogo() string {
	chars := []rune("quickvibe")
	var b strings.Builder
	for i, ch := range chars {
		if i >= len(chars)-4 {
			b.WriteString(splashLogoBright.Render(strings.ToUpper(string(ch))))
		} else {
			b.WriteString(splashLogoDim.Render(strings.ToUpper(string(ch))))
		}
		b.WriteRune(' ')
	}
	b.WriteString("⚡️")
	return b.String()
}

func (m *ChatModel) renderSimpleInput(ti textinput.Model) string {
	valueRunes := []rune(ti.Value())
	pos := clampPosition(ti.Position(), len(valueRunes))
	cursor := splashCursorStyle.Render("█")
	width := ti.Width
	if width <= 0 {
		width = 32
	}
	if len(valueRunes) == 0 {
		return cursor + placeholderStyle.Render(inputPlaceholder)
	}
	return wrapToWidth(string(valueRunes[:pos])+cursor+string(valueRunes[pos:]), width)
}

func (m *ChatModel) GetInputValue() string {
	return m.textInput.Value()
}

func (m *ChatModel) SetInputValue(value string) {
	m.textInput.SetValue(value)
	m.textInput.CursorEnd()
	m.updateSlashSuggestions()
}

func (m *ChatModel) ClearInput() {
	m.textInput.SetValue("")
	m.updateSlashSuggestions()
}

func (m *ChatModel) ApplyTopSlashSuggestion() bool {
	suggestion, ok := m.SelectedSlashSuggestion()
	if !ok {
		return false
	}
	m.textInput.SetValue(suggestion.Name)
	// SetValue keeps the previous cursor in some cases; force the cursor to
	// command end so continued typing appends after autocomplete.
	m.textInput.CursorEnd()
	m.updateSlashSuggestions()
	return true
}

func (m *ChatModel) SelectedSlashSuggestion() (slashCommand, bool) {
	if m.selectedSlashIdx < 0 || m.selectedSlashIdx >= len(m.slashSuggestions) {
		return slashCommand{}, false
	}
	return m.slashSuggestions[m.selectedSlashIdx], true
}

func (m *ChatModel) MoveSlashSelection(delta int) bool {
	if len(m.slashSuggestions) == 0 {
		return false
	}
	if m.selectedSlashIdx < 0 || m.selectedSlashIdx >= len(m.slashSuggestions) {
		m.selectedSlashIdx = 0
		return true
	}

	next := m.selectedSlashIdx + delta
	if next < 0 {
		next = 0
	}
	if next >= len(m.slashSuggestions) {
		next = len(m.slashSuggestions) - 1
	}
	m.selectedSlashIdx = next
	return true
}

func (m *ChatModel) updateSlashSuggestions() {
	input := m.textInput.Value()
	inputChanged := input != m.lastSuggestInput
	m.lastSuggestInput = input

	m.slashSuggestions = filterSlashCommands(input, 6)
	switch {
	case len(m.slashSuggestions) == 0:
		m.selectedSlashIdx = -1
	case inputChanged:
		m.selectedSlashIdx = 0
	default:
		// Preserve manual selection on non-input events (blink, redraw, etc).
		if m.selectedSlashIdx < 0 {
			m.selectedSlashIdx = 0
		}
		if m.selectedSlashIdx >= len(m.slashSuggestions) {
			m.selectedSlashIdx = len(m.slashSuggestions) - 1
		}
	}
	m.reflow()
}

func (m *ChatModel) reflow() {
	if m.height == 0 {
		return
	}

	used := m.inputHeight() + m.suggestionsHeight() + 1
	if m.isLoading {
		used++
	}
	if m.notice != "" {
		used += lipgloss.Height(m.renderNotice())
	}
	vpHeight := m.height - used
	if vpHeight < 0 {
		vpHeight = 0
	}
	m.viewport.Height = vpHeight
}

func (m *ChatModel) inputWrapWidth() int {
	width := m.width - 4
	if width <= 0 {
		width = 48
	}
	if width < 8 {
		width = 8
	}
	return width
}

func (m *ChatModel) renderInputForView() string {
	valueRunes := []rune(m.textInput.Value())
	if len(valueRunes) == 0 {
		return promptIndicator.Render("> ") + "█ " + placeholderStyle.Render(inputPlaceholder)
	}
	pos := clampPosition(m.textInput.Position(), len(valueRunes))

	wrapped := wrapToWidth(string(valueRunes[:pos])+"█"+string(valueRunes[pos:]), m.inputWrapWidth())
	lines := strings.Split(wrapped, "\n")
	lines[0] = promptIndicator.Render("> ") + lines[0]
	for i := 1; i < len(lines); i++ {
		lines[i] = "  " + lines[i]
	}
	return strings.Join(lines, "\n")
}

func (m *ChatModel) renderSuggestionsForWidth(width int) []string {
	if width <= 0 {
		width = 16
	}
	lines := make([]string, 0, len(m.slashSuggestions))
	for i, c := range m.slashSuggestions {
		line := wrapWithPrefix("  ", c.Name+"  "+c.Description, width)
		style := suggestDescStyle
		if i == m.selectedSlashIdx {
			line = wrapWithPrefix("> ", c.Name+"  "+c.Description, width)
			style = suggestSelStyle
		}
		lines = append(lines, style.Render(line))
	}
	return lines
}

func (m *ChatModel) inputHeight() int {
	return maxInt(1, lipgloss.Height(m.renderInputForView()))
}

func (m *ChatModel) suggestionsHeight() int {
	if len(m.slashSuggestions) == 0 {
		return 0
	}
	return lipgloss.Height(strings.Join(m.renderSuggestionsForWidth(maxInt(16, m.width-4)), "\n"))
}

func clampPosition(pos, n int) int {
	if pos < 0 {
		return 0
	}
	if pos > n {
		return n
	}
	return pos
}

func (m *ChatModel) HasVisibleSuggestions() bool {
	return len(m.slashSuggestions) > 0
}
