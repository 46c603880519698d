package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/yubzen/quickvibe/internal/vibe"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	itemStyle  = lipgloss.NewStyle().PaddingLeft(2)
	focusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const (
	fieldVibe = iota
	fieldTemperature
	fieldBaseURL
	fieldTimeout
	fieldMaxTranscript
	fieldLogLevel
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Default vibe",
	"Temperature",
	"Groq base URL",
	"Request timeout",
	"Transcript cap",
	"Log level",
}

type FormModel struct {
	cfg    *Config
	path   string
	inputs [fieldCount]textinput.Model
	focus  int
	status string
	err    error
	saved  bool
}

func NewFormModel(cfg *Config, path string) *FormModel {
	m := &FormModel{cfg: cfg, path: path}
	values := [fieldCount]string{
		cfg.Defaults.Vibe,
		strconv.FormatFloat(cfg.Defaults.Temperature, 'f', -1, 64),
		cfg.Groq.BaseURL,
		cfg.Timeout().String(),
		strconv.Itoa(cfg.Session.MaxTranscript),
		cfg.Log.Level,
	}
	for i := range m.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		in.SetValue(values[i])
		m.inputs[i] = in
	}
	m.inputs[0].Focus()
	return m
}

func (m *FormModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down":
			m.setFocus((m.focus + 1) % fieldCount)
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, nil
		case "ctrl+s", "enter":
			if err := m.apply(); err != nil {
				m.err = err
				m.status = ""
				return m, nil
			}
			if err := m.cfg.SaveTo(m.path); err != nil {
				m.err = err
				return m, nil
			}
			log.WithField("path", m.path).Info("config saved")
			m.err = nil
			m.saved = true
			m.status = "Saved to " + m.path
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *FormModel) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

// apply validates every field and writes them into cfg only when all pass.
func (m *FormModel) apply() error {
	next := *m.cfg

	label, ok := vibe.Resolve(m.inputs[fieldVibe].Value())
	if !ok {
		return fmt.Errorf("unknown vibe %q", m.inputs[fieldVibe].Value())
	}
	next.Defaults.Vibe = label

	temp, err := strconv.ParseFloat(strings.TrimSpace(m.inputs[fieldTemperature].Value()), 64)
	if err != nil || temp < 0 || temp > 2 {
		return fmt.Errorf("temperature must be a number between 0 and 2")
	}
	next.Defaults.Temperature = temp

	next.Groq.BaseURL = strings.TrimSpace(m.inputs[fieldBaseURL].Value())

	timeout, err := time.ParseDuration(strings.TrimSpace(m.inputs[fieldTimeout].Value()))
	if err != nil || timeout <= 0 {
		return fmt.Errorf("timeout must be a positive duration such as 30s")
	}
	next.Groq.Timeout = timeout.String()

	maxTranscript, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldMaxTranscript].Value()))
	if err != nil || maxTranscript <= 0 {
		return fmt.Errorf("transcript cap must be a positive integer")
	}
	next.Session.MaxTranscript = maxTranscript

	level := strings.TrimSpace(m.inputs[fieldLogLevel].Value())
	if _, err := log.ParseLevel(level); err != nil {
		return fmt.Errorf("unknown log level %q", level)
	}
	next.Log.Level = level

	next.normalize()
	*m.cfg = next
	return nil
}

func (m *FormModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("QuickVibe Configuration") + "\n\n")
	for i, in := range m.inputs {
		label := fmt.Sprintf("%-16s", fieldLabels[i])
		if i == m.focus {
			label = focusStyle.Render("> " + label)
		} else {
			label = "  " + label
		}
		b.WriteString(itemStyle.Render(label+" "+in.View()) + "\n")
	}
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	b.WriteString(hintStyle.Render("tab/shift+tab move  enter save  esc quit") + "\n")
	b.WriteString(hintStyle.Render("The API key is read from GROQ_API_KEY or the OS keyring and is never written here.") + "\n")
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func RunConfigForm(cfg *Config, path string) error {
	p := tea.NewProgram(NewFormModel(cfg, path))
	_, err := p.Run()
	return err
}
