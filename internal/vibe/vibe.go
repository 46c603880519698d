// Package vibe maps reply-style presets to prompt instructions.
package vibe

import (
	"strings"
	"unicode"
)

type preset struct {
	Label       string
	Instruction string
}

var presets = []preset{
	{Label: "Witty 😏", Instruction: "Be clever, playful, and drop some wordplay or puns."},
	{Label: "Savage 🔥", Instruction: "Be bold, a little ruthless, and don't hold back."},
	{Label: "Supportive 🤗", Instruction: "Be kind, encouraging, and uplifting."},
	{Label: "Dry 🧂", Instruction: "Be deadpan, sarcastic, and a little salty."},
	{Label: "Flirty 😘", Instruction: "Be charming, a little cheeky, and playful."},
	{Label: "Chill 😎", Instruction: "Be relaxed, casual, and super laid-back."},
}

// Default is the label used when none is set or the set one is unknown.
var Default = presets[0].Label

const systemPromptTemplate = "You are QuickVibe AI, a super chill and funny AI that helps craft epic text message responses. " +
	"You talk like a zoomer or gen alpha kid on the internet - use slang, keep it short, be a bit edgy, " +
	"and use emojis. Make the user sound cool and witty. The user will give you a situation or a text " +
	"they received. Give them a few fire response options. Keep it brief, like a text. No cringe, only Ws. " +
	"⚡️😎💯\nVibe: "

// Labels returns the presets in display order.
func Labels() []string {
	out := make([]string, 0, len(presets))
	for _, p := range presets {
		out = append(out, p.Label)
	}
	return out
}

func lookup(label string) (preset, bool) {
	for _, p := range presets {
		if p.Label == label {
			return p, true
		}
	}
	return presets[0], false
}

// Instruction returns the instruction for label, falling back to the first
// preset.
func Instruction(label string) string {
	p, _ := lookup(label)
	return p.Instruction
}

func IsKnown(label string) bool {
	_, ok := lookup(label)
	return ok
}

// Normalize maps unknown labels to Default.
func Normalize(label string) string {
	p, _ := lookup(label)
	return p.Label
}

// Index is the position of label in Labels, or 0 for unknown labels.
func Index(label string) int {
	for i, p := range presets {
		if p.Label == label {
			return i
		}
	}
	return 0
}

// Resolve accepts a label or its bare word ("chill", "Savage") and returns
// the canonical label.
func Resolve(input string) (string, bool) {
	if IsKnown(input) {
		return input, true
	}
	word := normalizeWord(input)
	if word == "" {
		return "", false
	}
	for _, p := range presets {
		if normalizeWord(p.Label) == word {
			return p.Label, true
		}
	}
	return "", false
}

// SystemPrompt embeds a vibe instruction into the fixed QuickVibe prompt.
func SystemPrompt(instruction string) string {
	return systemPromptTemplate + instruction
}

// SystemPromptFor composes the prompt for a label in one step.
func SystemPromptFor(label string) string {
	return SystemPrompt(Instruction(label))
}

func normalizeWord(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}
