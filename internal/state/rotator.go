package state

import (
	log "github.com/sirupsen/logrus"
)

// Rotator hands out model ids round-robin. The cursor is private so nothing
// else can read or move it.
type Rotator struct {
	models []string
	cursor int
}

func NewRotator(models []string) *Rotator {
	r := &Rotator{}
	r.Reset(models)
	return r
}

// Reset replaces the sequence and rewinds the cursor.
func (r *Rotator) Reset(models []string) {
	r.models = append([]string(nil), models...)
	r.cursor = 0
}

// Next returns the model at the cursor and advances it. ok is false when no
// selection is possible.
func (r *Rotator) Next() (string, bool) {
	if r == nil || len(r.models) == 0 {
		log.Warn("no chat models available for rotation")
		return "", false
	}
	if r.cursor < 0 || r.cursor >= len(r.models) {
		log.WithField("cursor", r.cursor).Error("rotation cursor out of range, resetting")
		r.cursor = 0
		return "", false
	}

	model := r.models[r.cursor]
	r.cursor = (r.cursor + 1) % len(r.models)
	log.WithField("model", model).Debug("selected model")
	return model, true
}

// Peek reports the model the next call to Next would return, without moving.
func (r *Rotator) Peek() (string, bool) {
	if r == nil || len(r.models) == 0 || r.cursor < 0 || r.cursor >= len(r.models) {
		return "", false
	}
	return r.models[r.cursor], true
}

func (r *Rotator) Models() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.models...)
}

func (r *Rotator) Len() int {
	if r == nil {
		return 0
	}
	return len(r.models)
}

// Cursor is exposed for rendering the "current" marker only.
func (r *Rotator) Cursor() int {
	if r == nil {
		return 0
	}
	return r.cursor
}
