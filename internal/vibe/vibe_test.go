package vibe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstructionsAreDistinctAndNonEmpty(t *testing.T) {
	labels := Labels()
	assert.Len(t, labels, 6)

	seen := make(map[string]string)
	for _, label := range labels {
		instruction := Instruction(label)
		if strings.TrimSpace(instruction) == "" {
			t.Fatalf("empty instruction for %q", label)
		}
		if prev, ok := seen[instruction]; ok {
			t.Fatalf("%q and %q share instruction %q", prev, label, instruction)
		}
		seen[instruction] = label
	}
}

func TestUnknownLabelFallsBackToFirst(t *testing.T) {
	first := Instruction(Labels()[0])
	for _, label := range []string{"", "Unhinged 🤪", "witty", "Chill"} {
		assert.Equal(t, first, Instruction(label), "label %q", label)
		assert.Equal(t, Default, Normalize(label))
		assert.Zero(t, Index(label))
	}
}

func TestSystemPromptEmbedsInstructionOnce(t *testing.T) {
	chill := Instruction("Chill 😎")
	assert.Equal(t, "Be relaxed, casual, and super laid-back.", chill)

	prompt := SystemPrompt(chill)
	assert.True(t, strings.HasPrefix(prompt, "You are QuickVibe AI"))
	assert.True(t, strings.HasSuffix(prompt, "\nVibe: "+chill))
	assert.Equal(t, 1, strings.Count(prompt, chill))
	assert.Equal(t, prompt, SystemPromptFor("Chill 😎"))
}

func TestSystemPromptIsDeterministic(t *testing.T) {
	for _, label := range Labels() {
		assert.Equal(t, SystemPromptFor(label), SystemPromptFor(label))
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"Savage 🔥", "Savage 🔥", true},
		{"savage", "Savage 🔥", true},
		{"  DRY ", "Dry 🧂", true},
		{"flirty😘", "Flirty 😘", true},
		{"spicy", "", false},
		{"🔥", "", false},
	}
	for _, tt := range tests {
		got, ok := Resolve(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}
