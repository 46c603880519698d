package chat

import (
	"time"

	"github.com/yubzen/quickvibe/internal/providers"
	"github.com/yubzen/quickvibe/internal/state"
)

type Level int

const (
	LevelNone Level = iota
	LevelInfo
	LevelSuccess
	LevelWarning
	LevelError
)

type ConnectionStatus int

const (
	StatusNoKey ConnectionStatus = iota
	StatusUnvalidated
	StatusLive
)

func (s ConnectionStatus) String() string {
	switch s {
	case StatusLive:
		return "🟢 API Live & Ready to Vibe!"
	case StatusUnvalidated:
		return "🟡 API key entered, but not validated. Hit /connect!"
	default:
		return "🔴 No API key. Add one to start vibing."
	}
}

// Render is everything a front end needs to draw the session after one
// action. It is a snapshot; holding it never aliases session state.
type Render struct {
	Notice      string
	Level       Level
	Status      ConnectionStatus
	Vibe        string
	Temperature float64
	Models      []string
	Cursor      int
	Transcript  []state.TranscriptEntry
	ErrorLog    []state.ErrorLogEntry
	Reply       *ReplyResult
	Failure     *providers.Failure
	At          time.Time
	// Seq orders renders produced by one Handler; a larger Seq is newer.
	Seq uint64
}

// NextModel is the model the next send would use, if any.
func (r Render) NextModel() string {
	if r.Cursor < 0 || r.Cursor >= len(r.Models) {
		return ""
	}
	return r.Models[r.Cursor]
}

// LastReply returns the newest successful assistant reply in the transcript.
func (r Render) LastReply() (string, bool) {
	for i := len(r.Transcript) - 1; i >= 0; i-- {
		e := r.Transcript[i]
		if e.Role == state.RoleAssistant && !e.Error {
			return e.Content, true
		}
	}
	return "", false
}

func snapshot(sess *state.Session) Render {
	status := StatusNoKey
	switch {
	case sess.Validated():
		status = StatusLive
	case sess.APIKey() != "":
		status = StatusUnvalidated
	}
	return Render{
		Status:      status,
		Vibe:        sess.Vibe(),
		Temperature: sess.Temperature(),
		Models:      sess.Models(),
		Cursor:      sess.ModelCursor(),
		Transcript:  sess.Transcript(),
		ErrorLog:    sess.ErrorLog(),
		At:          time.Now(),
	}
}
