package state

import (
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/yubzen/quickvibe/internal/vibe"
)

const (
	// MaxTranscript bounds the conversation kept in memory.
	MaxTranscript = 50
	// MaxErrorLog is the error-log high-water mark; past it the log is cut
	// back to the newest errorLogKeep entries.
	MaxErrorLog  = 100
	errorLogKeep = 50

	DefaultTemperature = 0.7
	MinTemperature     = 0.0
	MaxTemperature     = 2.0
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type TranscriptEntry struct {
	Role    Role
	Content string
	Model   string
	Error   bool
	At      time.Time
}

type ErrorLogEntry struct {
	At      time.Time
	Message string
}

type Options struct {
	APIKey        string
	Vibe          string
	Temperature   float64
	MaxTranscript int
}

// Session is the single-writer context every operation receives. It lives
// for one process and is never persisted.
type Session struct {
	ID        string
	CreatedAt time.Time

	apiKey        string
	validated     bool
	rotator       *Rotator
	vibe          string
	temperature   float64
	maxTranscript int
	transcript    []TranscriptEntry
	errorLog      []ErrorLogEntry
	now           func() time.Time
}

func NewSession(opts Options) *Session {
	maxTranscript := opts.MaxTranscript
	if maxTranscript <= 0 || maxTranscript > MaxTranscript {
		maxTranscript = MaxTranscript
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}
	now := time.Now
	return &Session{
		ID:            uuid.NewString(),
		CreatedAt:     now(),
		apiKey:        strings.TrimSpace(opts.APIKey),
		rotator:       NewRotator(nil),
		vibe:          vibe.Normalize(opts.Vibe),
		temperature:   ClampTemperature(temperature),
		maxTranscript: maxTranscript,
		now:           now,
	}
}

func ClampTemperature(t float64) float64 {
	if t < MinTemperature {
		return MinTemperature
	}
	if t > MaxTemperature {
		return MaxTemperature
	}
	return t
}

// Logger tags entries with the session id.
func (s *Session) Logger() *log.Entry {
	return log.WithField("session", s.ID)
}

func (s *Session) APIKey() string {
	return s.apiKey
}

// SetAPIKey replaces the credential. Any change drops validation and the
// model catalog until the next successful connect.
func (s *Session) SetAPIKey(key string) bool {
	key = strings.TrimSpace(key)
	if key == s.apiKey {
		return false
	}
	s.apiKey = key
	s.Invalidate()
	return true
}

func (s *Session) Validated() bool {
	return s.validated
}

// ApplyCatalog records a successful connect.
func (s *Session) ApplyCatalog(models []string) {
	s.rotator.Reset(models)
	s.validated = len(models) > 0
}

// Invalidate records a failed or stale connect.
func (s *Session) Invalidate() {
	s.validated = false
	s.rotator.Reset(nil)
}

// Configured reports whether the session can dispatch: validated, with
// models, with a key.
func (s *Session) Configured() bool {
	return s.validated && s.rotator.Len() > 0 && s.apiKey != ""
}

func (s *Session) NextModel() (string, bool) {
	return s.rotator.Next()
}

func (s *Session) Models() []string {
	return s.rotator.Models()
}

func (s *Session) ModelCursor() int {
	return s.rotator.Cursor()
}

func (s *Session) UpcomingModel() (string, bool) {
	return s.rotator.Peek()
}

func (s *Session) Vibe() string {
	return s.vibe
}

// SetVibe stores the label, mapping unknown labels to the default.
func (s *Session) SetVibe(label string) string {
	s.vibe = vibe.Normalize(label)
	return s.vibe
}

func (s *Session) Temperature() float64 {
	return s.temperature
}

func (s *Session) SetTemperature(t float64) float64 {
	s.temperature = ClampTemperature(t)
	return s.temperature
}

func (s *Session) AppendUser(content string) {
	s.appendEntry(TranscriptEntry{Role: RoleUser, Content: content})
}

func (s *Session) AppendAssistant(content, model string, isError bool) {
	s.appendEntry(TranscriptEntry{Role: RoleAssistant, Content: content, Model: model, Error: isError})
}

func (s *Session) appendEntry(e TranscriptEntry) {
	e.At = s.now()
	s.transcript = append(s.transcript, e)
	if over := len(s.transcript) - s.maxTranscript; over > 0 {
		s.transcript = append([]TranscriptEntry(nil), s.transcript[over:]...)
	}
}

func (s *Session) Transcript() []TranscriptEntry {
	return append([]TranscriptEntry(nil), s.transcript...)
}

// LastReply returns the newest successful assistant message.
func (s *Session) LastReply() (TranscriptEntry, bool) {
	for i := len(s.transcript) - 1; i >= 0; i-- {
		e := s.transcript[i]
		if e.Role == RoleAssistant && !e.Error {
			return e, true
		}
	}
	return TranscriptEntry{}, false
}

func (s *Session) ClearTranscript() {
	s.transcript = nil
}

// LogError records a failure with a timestamp and forwards it to the logger.
func (s *Session) LogError(msg string) {
	s.Logger().Error(msg)
	s.errorLog = append(s.errorLog, ErrorLogEntry{At: s.now(), Message: msg})
	if len(s.errorLog) > MaxErrorLog {
		s.errorLog = append([]ErrorLogEntry(nil), s.errorLog[len(s.errorLog)-errorLogKeep:]...)
	}
}

func (s *Session) ErrorLog() []ErrorLogEntry {
	return append([]ErrorLogEntry(nil), s.errorLog...)
}
