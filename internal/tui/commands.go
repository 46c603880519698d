package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type CommandResultMsg struct {
	Msg string
}

type OpenConnectModalMsg struct{}
type OpenVibeModalMsg struct{}
type OpenModelsModalMsg struct{}
type OpenErrorLogMsg struct{}
type OpenAboutMsg struct{}
type CopyReplyMsg struct{}
type ClearTranscriptMsg struct{}
type ReconnectMsg struct{}

type SelectVibeMsg struct {
	Input string
}

type SetTemperatureMsg struct {
	Value float64
}

type slashCommand struct {
	Name        string
	Description string
}

var slashCommands = []slashCommand{
	{Name: "/connect", Description: "Add your Groq API key and load models"},
	{Name: "/vibe", Description: "Pick the reply vibe"},
	{Name: "/models", Description: "Show the models in rotation"},
	{Name: "/temp", Description: "Set sampling temperature (0-2)"},
	{Name: "/copy", Description: "Copy the last reply"},
	{Name: "/clear", Description: "Clear the conversation"},
	{Name: "/errors", Description: "Show the session error log"},
	{Name: "/reconnect", Description: "Reload models with the current key"},
	{Name: "/about", Description: "Example vibes and how to use QuickVibe"},
}

func filterSlashCommands(input string, limit int) []slashCommand {
	if limit <= 0 {
		limit = len(slashCommands)
	}

	raw := strings.TrimSpace(input)
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return nil
	}
	// Once arguments are being typed the command is settled.
	if strings.ContainsAny(strings.TrimLeft(input, " \t"), " \t") {
		return nil
	}

	query := strings.ToLower(strings.TrimPrefix(strings.Fields(raw)[0], "/"))
	if query == "" {
		if limit > len(slashCommands) {
			limit = len(slashCommands)
		}
		return slashCommands[:limit]
	}

	matches := make([]slashCommand, 0, limit)
	add := func(c slashCommand) bool {
		if len(matches) >= limit {
			return false
		}
		matches = append(matches, c)
		return true
	}

	// Prefix matches first for intuitive command completion.
	for _, c := range slashCommands {
		if strings.HasPrefix(strings.TrimPrefix(c.Name, "/"), query) {
			if !add(c) {
				return matches
			}
		}
	}
	for _, c := range slashCommands {
		name := strings.TrimPrefix(c.Name, "/")
		if !strings.HasPrefix(name, query) && strings.Contains(name, query) {
			if !add(c) {
				return matches
			}
		}
	}
	return matches
}

func splitSlashCommand(input string) (name, arg string) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", ""
	}
	name, arg, _ = strings.Cut(trimmed, " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

func handleSlashCommand(cmdStr string) tea.Cmd {
	return func() tea.Msg {
		name, arg := splitSlashCommand(cmdStr)
		switch name {
		case "/connect", "/key":
			return OpenConnectModalMsg{}
		case "/reconnect":
			return ReconnectMsg{}
		case "/vibe":
			if arg == "" {
				return OpenVibeModalMsg{}
			}
			return SelectVibeMsg{Input: arg}
		case "/models":
			return OpenModelsModalMsg{}
		case "/temp", "/temperature":
			value, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return CommandResultMsg{Msg: "Usage: /temp <0-2>, e.g. /temp 0.9"}
			}
			return SetTemperatureMsg{Value: value}
		case "/copy":
			return CopyReplyMsg{}
		case "/clear":
			return ClearTranscriptMsg{}
		case "/errors":
			return OpenErrorLogMsg{}
		case "/about", "/help":
			return OpenAboutMsg{}
		default:
			if suggestions := filterSlashCommands(name, 1); len(suggestions) == 1 {
				return CommandResultMsg{Msg: fmt.Sprintf("Unknown command: %s. Did you mean %s?", name, suggestions[0].Name)}
			}
			return CommandResultMsg{Msg: fmt.Sprintf("Unknown command: %s", name)}
		}
	}
}
