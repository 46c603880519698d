// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

const DefaultFileName = "quickvibe.log"

var userHomeDir = os.UserHomeDir

type Options struct {
	Level string
	// File is the log file path; empty means DefaultPath().
	File string
	// Stderr also writes entries to stderr. The TUI leaves it off so the
	// alt-screen is not corrupted.
	Stderr bool
}

func DefaultPath() string {
	home, err := userHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return DefaultFileName
	}
	return filepath.Join(home, ".config", "quickvibe", DefaultFileName)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup points the standard logrus logger at the configured outputs. The
// returned closer releases the log file.
func Setup(opts Options) (io.Closer, error) {
	level := log.InfoLevel
	if raw := strings.TrimSpace(opts.Level); raw != "" {
		parsed, err := log.ParseLevel(raw)
		if err != nil {
			return nopCloser{}, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: true})

	path := strings.TrimSpace(opts.File)
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nopCloser{}, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nopCloser{}, fmt.Errorf("open log file: %w", err)
	}

	if opts.Stderr {
		log.SetOutput(io.MultiWriter(f, os.Stderr))
	} else {
		log.SetOutput(f)
	}
	return f, nil
}

// Discard silences the logger; used before configuration is known.
func Discard() {
	log.SetOutput(io.Discard)
}
