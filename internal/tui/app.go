package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/yubzen/quickvibe/internal/chat"
	"github.com/yubzen/quickvibe/internal/config"
	"github.com/yubzen/quickvibe/internal/providers"
	"github.com/yubzen/quickvibe/internal/state"
	"github.com/yubzen/quickvibe/internal/vibe"
)

var appStyle = lipgloss.NewStyle().Margin(0, 0)

var writeClipboard = clipboard.WriteAll

// ActionResultMsg carries the render produced by one handler action.
type ActionResultMsg struct {
	Action chat.Action
	Render chat.Render
}

// ConnectResultMsg is the outcome of the key modal's set-and-connect.
type ConnectResultMsg struct {
	Render chat.Render
}

type AutoconnectMsg struct {
	Render    chat.Render
	Attempted bool
}

// ConfigReloadedMsg is sent by the config watcher after the file changes.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

const (
	tipNoKey       = "Tip: Run /connect to add your Groq API key"
	tipUnvalidated = "Tip: Hit /connect to validate your key"
	tipLive        = "Tip: /vibe switches styles, /about shows examples"
)

type AppModel struct {
	ctx             context.Context
	cancel          context.CancelFunc
	cfg             *config.Config
	db              *state.DB
	sessionID       string
	handler         *chat.Handler
	last            chat.Render
	chat            *ChatModel
	statusbar       *StatusBarModel
	modelsModal     *ModelsModal
	vibeModal       *SelectModal
	apiKeyModal     *APIKeyModal
	textModal       *TextModal
	recallDepth     int
	inputDraft      string
	width           int
	height          int
	sending         bool
	pendingMessages []string
}

func NewAppModel(cfg *config.Config, db *state.DB, sessionID string, handler *chat.Handler) *AppModel {
	if cfg == nil {
		cfg = config.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	vibeModal := NewSelectModal("🎚️ ResponseVibe", "up/down: navigate  enter: select  esc: close")
	options := make([]SelectOption, 0, len(vibe.Labels()))
	for _, label := range vibe.Labels() {
		options = append(options, SelectOption{Label: label, Enabled: true})
	}
	vibeModal.SetOptions(options)

	m := &AppModel{
		ctx:         ctx,
		cancel:      cancel,
		cfg:         cfg,
		db:          db,
		sessionID:   sessionID,
		handler:     handler,
		chat:        NewChatModel(),
		statusbar:   NewStatusBarModel(),
		modelsModal: NewModelsModal(),
		vibeModal:   vibeModal,
		apiKeyModal: &APIKeyModal{},
		textModal:   NewTextModal(),
	}
	m.applyRender(handler.Snapshot())
	if m.last.Status != chat.StatusNoKey {
		m.chat.SetNotice(chat.LevelInfo, "🔄 Checking your API key...")
	}
	return m
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(m.chat.Init(), m.statusbar.Init(), textinput.Blink, m.autoconnectCmd())
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.handleCtrlC()
		}

		if m.apiKeyModal.Visible {
			switch msg.String() {
			case "esc":
				m.apiKeyModal.Close()
				return m, nil
			}
			if !m.apiKeyModal.Update(msg) {
				return m, nil
			}
			credential := strings.TrimSpace(m.apiKeyModal.Value)
			if err := providers.ValidateCredential(credential); err != nil {
				m.apiKeyModal.SetError(err.Error())
				return m, nil
			}
			m.apiKeyModal.BeginConnecting("validating key and loading models")
			return m, m.connectCmd(credential)
		}

		if handled, cmd := m.dispatchUpDownKey(msg); handled {
			return m, cmd
		}

		if m.vibeModal.Visible {
			switch msg.String() {
			case "esc":
				m.vibeModal.Close()
			case "enter":
				opt, ok := m.vibeModal.SelectedOption()
				m.vibeModal.Close()
				if ok {
					return m, m.runAction(chat.Action{Kind: chat.ActionSelectVibe, Text: opt.Label})
				}
			}
			return m, nil
		}

		if m.modelsModal.Visible {
			if msg.String() == "esc" {
				m.modelsModal.Close()
				return m, nil
			}
			return m, m.modelsModal.Update(msg)
		}

		if m.textModal.Visible {
			switch msg.String() {
			case "esc", "q", "enter":
				m.textModal.Close()
				return m, nil
			}
			return m, m.textModal.Update(msg)
		}

		if msg.String() == "tab" && m.chat.ApplyTopSlashSuggestion() {
			return m, nil
		}
		if msg.String() == "enter" {
			return m, m.submitInput()
		}
		if shouldResetHistoryNavigation(msg) {
			m.resetInputHistoryNavigation()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusbar.SetWidth(msg.Width)
		m.chat.SetSize(msg.Width, msg.Height-1)
		modalWidth := maxInt(32, msg.Width-4)
		m.vibeModal.SetWidth(modalWidth)
		m.apiKeyModal.SetWidth(modalWidth)
		m.modelsModal.SetSize(msg.Width, msg.Height)
		m.textModal.SetSize(msg.Width, msg.Height)

	case AutoconnectMsg:
		if msg.Attempted {
			m.applyRender(msg.Render)
		}
		return m, nil

	case ConnectResultMsg:
		m.applyRender(msg.Render)
		if msg.Render.Failure != nil {
			m.apiKeyModal.SetError(msg.Render.Notice)
		} else {
			m.apiKeyModal.Close()
		}
		return m, nil

	case ActionResultMsg:
		m.applyRender(msg.Render)
		if msg.Action.Kind == chat.ActionSend {
			m.sending = false
			m.chat.SetLoading(false, "")
			if len(m.pendingMessages) > 0 {
				next := m.pendingMessages[0]
				m.pendingMessages = m.pendingMessages[1:]
				return m, m.startSend(next)
			}
		}
		return m, nil

	case ConfigReloadedMsg:
		return m, m.applyConfig(msg.Config, msg.Err)

	case CommandResultMsg:
		m.chat.SetNotice(chat.LevelInfo, msg.Msg)
		return m, nil

	case OpenConnectModalMsg:
		m.apiKeyModal.Open()
		return m, nil

	case ReconnectMsg:
		return m, m.runAction(chat.Action{Kind: chat.ActionConnect})

	case OpenVibeModalMsg:
		m.vibeModal.SelectValue(m.last.Vibe)
		m.vibeModal.Open()
		return m, nil

	case SelectVibeMsg:
		return m, m.runAction(chat.Action{Kind: chat.ActionSelectVibe, Text: msg.Input})

	case SetTemperatureMsg:
		return m, m.runAction(chat.Action{Kind: chat.ActionSetTemperature, Temperature: msg.Value})

	case OpenModelsModalMsg:
		m.modelsModal.SetRotation(m.last.Models, m.last.Cursor)
		m.modelsModal.Open()
		return m, nil

	case CopyReplyMsg:
		m.copyLastReply()
		return m, nil

	case ClearTranscriptMsg:
		return m, m.runAction(chat.Action{Kind: chat.ActionClear})

	case OpenErrorLogMsg:
		m.textModal.OpenText(fmt.Sprintf("🧾 Error Log (%d)", len(m.last.ErrorLog)), formatErrorLog(m.last.ErrorLog))
		return m, nil

	case OpenAboutMsg:
		m.textModal.OpenMarkdown("✨ exampleVibes", aboutMarkdown)
		return m, nil
	}

	chatModel, cmd := m.chat.Update(msg)
	m.chat = chatModel.(*ChatModel)
	cmds = append(cmds, cmd)

	sbModel, cmd := m.statusbar.Update(msg)
	m.statusbar = sbModel.(*StatusBarModel)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *AppModel) submitInput() tea.Cmd {
	if selected, ok := m.chat.SelectedSlashSuggestion(); ok {
		m.rememberInput(selected.Name)
		m.chat.ClearInput()
		return handleSlashCommand(selected.Name)
	}

	trimmedInput, isCommand := classifyUserInput(m.chat.GetInputValue())
	if trimmedInput == "" {
		return nil
	}
	m.rememberInput(trimmedInput)
	m.chat.ClearInput()
	if isCommand {
		return handleSlashCommand(trimmedInput)
	}
	if m.sending {
		m.pendingMessages = append(m.pendingMessages, trimmedInput)
		m.chat.SetNotice(chat.LevelInfo, "⏳ Queued. Will send after the current reply.")
		return nil
	}
	return m.startSend(trimmedInput)
}

func (m *AppModel) startSend(text string) tea.Cmd {
	m.sending = true
	if m.last.Status == chat.StatusLive && len(m.last.Models) > 0 {
		// Echo the message until the handler's render replaces the transcript.
		echo := append(append([]state.TranscriptEntry(nil), m.last.Transcript...), state.TranscriptEntry{Role: state.RoleUser, Content: text})
		m.chat.SetTranscript(echo)
	}
	m.chat.SetNotice(chat.LevelNone, "")
	spin := m.chat.SetLoading(true, m.last.NextModel())
	return tea.Batch(spin, m.runAction(chat.Action{Kind: chat.ActionSend, Text: text}))
}

func (m *AppModel) runAction(a chat.Action) tea.Cmd {
	return m.runActions(a)
}

// runActions applies actions in order and reports the last render.
func (m *AppModel) runActions(actions ...chat.Action) tea.Cmd {
	ctx, h := m.ctx, m.handler
	return func() tea.Msg {
		var res ActionResultMsg
		for _, a := range actions {
			res = ActionResultMsg{Action: a, Render: h.Handle(ctx, a)}
		}
		return res
	}
}

func (m *AppModel) connectCmd(credential string) tea.Cmd {
	ctx, h := m.ctx, m.handler
	return func() tea.Msg {
		h.Handle(ctx, chat.Action{Kind: chat.ActionSetCredential, Text: credential})
		return ConnectResultMsg{Render: h.Handle(ctx, chat.Action{Kind: chat.ActionConnect})}
	}
}

func (m *AppModel) autoconnectCmd() tea.Cmd {
	ctx, h := m.ctx, m.handler
	return func() tea.Msg {
		r, attempted := h.Autoconnect(ctx)
		return AutoconnectMsg{Render: r, Attempted: attempted}
	}
}

// applyRender draws r unless a newer render has already been applied.
func (m *AppModel) applyRender(r chat.Render) {
	if r.Seq < m.last.Seq {
		return
	}
	m.last = r
	m.chat.SetTranscript(r.Transcript)
	m.chat.SetNotice(r.Level, r.Notice)
	m.statusbar.Apply(r)
	if m.modelsModal.Visible {
		m.modelsModal.SetRotation(r.Models, r.Cursor)
	}
	switch r.Status {
	case chat.StatusLive:
		m.chat.SetTip(tipLive)
	case chat.StatusUnvalidated:
		m.chat.SetTip(tipUnvalidated)
	default:
		m.chat.SetTip(tipNoKey)
	}
}

func (m *AppModel) applyConfig(cfg *config.Config, err error) tea.Cmd {
	if err != nil {
		log.WithError(err).Warn("config reload failed")
		m.chat.SetNotice(chat.LevelWarning, "Config reload failed: "+err.Error())
		return nil
	}
	if cfg == nil {
		return nil
	}
	prev := m.cfg
	m.cfg = cfg

	var actions []chat.Action
	if cfg.Defaults.Vibe != prev.Defaults.Vibe {
		actions = append(actions, chat.Action{Kind: chat.ActionSelectVibe, Text: cfg.Defaults.Vibe})
	}
	if cfg.Defaults.Temperature != prev.Defaults.Temperature {
		actions = append(actions, chat.Action{Kind: chat.ActionSetTemperature, Temperature: cfg.Defaults.Temperature})
	}
	if len(actions) == 0 {
		m.chat.SetNotice(chat.LevelInfo, "Config reloaded.")
		return nil
	}
	return m.runActions(actions...)
}

func (m *AppModel) copyLastReply() {
	reply, ok := m.last.LastReply()
	if !ok {
		m.chat.SetNotice(chat.LevelWarning, "Nothing to copy yet. Send a message first.")
		return
	}
	if err := writeClipboard(reply); err != nil {
		log.WithError(err).Warn("clipboard write failed")
		m.chat.SetNotice(chat.LevelWarning, "Clipboard unavailable: "+err.Error())
		return
	}
	m.chat.SetNotice(chat.LevelSuccess, "📋 Copied the last reply!")
}

func (m *AppModel) handleCtrlC() (tea.Model, tea.Cmd) {
	if strings.TrimSpace(m.chat.GetInputValue()) != "" {
		m.chat.ClearInput()
		return m, nil
	}
	m.cancel()
	return m, tea.Quit
}

func (m *AppModel) View() string {
	base := appStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.chat.View(),
		m.statusbar.View(),
	))

	switch {
	case m.apiKeyModal.Visible:
		return placeOverlay(m.width, m.height, m.apiKeyModal.View())
	case m.vibeModal.Visible:
		return placeOverlay(m.width, m.height, m.vibeModal.View())
	case m.modelsModal.Visible:
		return placeOverlay(m.width, m.height, m.modelsModal.View())
	case m.textModal.Visible:
		return placeOverlay(m.width, m.height, m.textModal.View())
	}
	return base
}

// rememberInput stores a submitted line in the recall store, which is the
// only source up/down recall reads from.
func (m *AppModel) rememberInput(line string) {
	m.resetInputHistoryNavigation()
	if m.db == nil || m.sessionID == "" {
		return
	}
	if err := m.db.RememberInput(m.ctx, m.sessionID, line); err != nil {
		log.WithError(err).Warn("failed to remember input")
	}
}

func (m *AppModel) resetInputHistoryNavigation() {
	m.recallDepth = 0
	m.inputDraft = ""
}

// navigateInputHistory moves through recalled lines. Up goes further back;
// down past the newest line restores the draft.
func (m *AppModel) navigateInputHistory(delta int) bool {
	if m.db == nil || m.sessionID == "" || delta == 0 {
		return false
	}

	want := m.recallDepth - delta
	if want <= 0 {
		if m.recallDepth == 0 {
			return false
		}
		m.chat.SetInputValue(m.inputDraft)
		m.resetInputHistoryNavigation()
		return true
	}

	line, depth, err := m.db.RecallInput(m.ctx, m.sessionID, want)
	if err != nil {
		log.WithError(err).Warn("failed to recall input")
		return false
	}
	if depth == 0 {
		return false
	}
	if m.recallDepth == 0 {
		m.inputDraft = m.chat.GetInputValue()
	}
	m.recallDepth = depth
	m.chat.SetInputValue(line)
	return true
}

func (m *AppModel) dispatchUpDownKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	delta, ok := upDownDelta(msg)
	if !ok {
		return false, nil
	}

	// Modal navigation always has highest priority.
	switch {
	case m.modelsModal.Visible:
		return true, m.modelsModal.Update(msg)
	case m.vibeModal.Visible:
		m.vibeModal.Move(delta)
		return true, nil
	case m.textModal.Visible:
		return true, m.textModal.Update(msg)
	case m.apiKeyModal.Visible:
		return true, nil
	}

	// Command suggestions win over input history.
	if m.chat.HasVisibleSuggestions() {
		m.chat.MoveSlashSelection(delta)
		return true, nil
	}

	m.navigateInputHistory(delta)
	return true, nil
}

func upDownDelta(msg tea.KeyMsg) (int, bool) {
	switch msg.String() {
	case "up":
		return -1, true
	case "down":
		return 1, true
	default:
		return 0, false
	}
}

func classifyUserInput(raw string) (trimmed string, isCommand bool) {
	trimmed = strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	return trimmed, strings.HasPrefix(trimmed, "/")
}

func shouldResetHistoryNavigation(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "up", "down", "enter":
		return false
	}
	switch msg.Type {
	case tea.KeyRunes, tea.KeyBackspace, tea.KeyDelete:
		return true
	default:
		return false
	}
}
