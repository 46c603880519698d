package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yubzen/quickvibe/internal/state"
)

func TestFormatErrorLog(t *testing.T) {
	t.Parallel()

	assert.Contains(t, formatErrorLog(nil), "No errors")

	at := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	out := formatErrorLog([]state.ErrorLogEntry{
		{At: at, Message: "Failed to fetch models: bad key"},
		{At: at.Add(time.Second), Message: "💀 Yikes, got empty response: No response content generated"},
	})
	lines := strings.Split(out, "\n")
	if assert.Len(t, lines, 2) {
		assert.Equal(t, "[15:04:05] Failed to fetch models: bad key", lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "[15:04:06] 💀 Yikes"))
	}
}

func TestTextModalOpenClose(t *testing.T) {
	t.Parallel()

	modal := NewTextModal()
	modal.SetSize(100, 40)
	modal.OpenText("Error Log", "line one\nline two")
	assert.True(t, modal.Visible)
	view := modal.View()
	assert.Contains(t, view, "Error Log")
	assert.Contains(t, view, "line two")

	modal.Close()
	assert.False(t, modal.Visible)
	assert.Empty(t, modal.View())
}

func TestAboutMarkdownListsEveryVibe(t *testing.T) {
	t.Parallel()

	for _, label := range []string{"Chill 😎", "Witty 😏", "Savage 🔥", "Supportive 🤗", "Dry 🧂", "Flirty 😘"} {
		assert.Contains(t, aboutMarkdown, label)
	}
	for _, c := range slashCommands {
		if c.Name == "/about" {
			continue
		}
		assert.Contains(t, aboutMarkdown, c.Name, "about page should document %s", c.Name)
	}
}
