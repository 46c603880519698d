// Package sanitize cleans free text before it leaves the process.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxInputRunes caps user input sent to the model.
const MaxInputRunes = 2000

var (
	markupRegex = regexp.MustCompile(`<[^>]*>`)

	// Matches .env lines whose name ends in a secret-like word, e.g. GROQ_API_KEY=...
	// The $1 backreference keeps the VAR= part and replaces value with [REDACTED]
	envRegex = regexp.MustCompile(`(?m)^((?:[A-Z0-9]+_)*(?:KEY|TOKEN|SECRET|PASSWORD|PASSWD|CREDENTIALS?))=\S+$`)
	// JWT token heuristic
	jwtRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)
	// Groq keys
	gskRegex = regexp.MustCompile(`gsk_[a-zA-Z0-9_-]{20,}`)
	// OpenAI and generic sk- keys
	skRegex = regexp.MustCompile(`sk-[a-zA-Z0-9\-]{20,}`)
	// Google API keys
	aizaRegex = regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`)
	// GitHub personal access tokens
	ghpRegex = regexp.MustCompile(`ghp_[a-zA-Z0-9]{36}`)
)

// Input trims, strips markup and caps raw user text. Applying it twice gives
// the same result as applying it once.
func Input(raw string) string {
	s := markupRegex.ReplaceAllString(raw, "")
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	s = strings.TrimSpace(s)
	s = truncateRunes(s, MaxInputRunes)
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

// Clean scrubs secrets from the outbound text before sending it to the model.
func Clean(input string) string {
	input = envRegex.ReplaceAllString(input, "${1}=[REDACTED]")
	input = gskRegex.ReplaceAllString(input, "[REDACTED_KEY]")
	input = skRegex.ReplaceAllString(input, "[REDACTED_KEY]")
	input = jwtRegex.ReplaceAllString(input, "[REDACTED_JWT]")
	input = aizaRegex.ReplaceAllString(input, "[REDACTED_KEY]")
	input = ghpRegex.ReplaceAllString(input, "[REDACTED_KEY]")
	return input
}

// Outbound is what the dispatcher sends: secrets scrubbed, then sanitized so
// the length cap holds for the final text.
func Outbound(raw string) string {
	return Input(Clean(raw))
}

func truncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
