package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/yubzen/quickvibe/internal/providers"
	"github.com/yubzen/quickvibe/internal/state"
	"github.com/yubzen/quickvibe/internal/vibe"
)

var userHomeDir = os.UserHomeDir

// Config holds non-secret settings. The API key is never stored here.
type Config struct {
	Defaults struct {
		Vibe        string  `toml:"vibe"`
		Temperature float64 `toml:"temperature"`
	} `toml:"defaults"`
	Groq struct {
		BaseURL string `toml:"base_url"`
		Timeout string `toml:"timeout"`
	} `toml:"groq"`
	Session struct {
		MaxTranscript int `toml:"max_transcript"`
	} `toml:"session"`
	Log struct {
		Level string `toml:"level"`
		File  string `toml:"file"`
	} `toml:"log"`
}

func GetConfigPath() string {
	home, _ := userHomeDir()
	return filepath.Join(home, ".config", "quickvibe", "config.toml")
}

func Default() *Config {
	var cfg Config
	cfg.Defaults.Vibe = vibe.Default
	cfg.Defaults.Temperature = state.DefaultTemperature
	cfg.Groq.BaseURL = providers.DefaultGroqBaseURL
	cfg.Groq.Timeout = providers.DefaultTimeout.String()
	cfg.Session.MaxTranscript = state.MaxTranscript
	cfg.Log.Level = "info"
	return &cfg
}

func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom overlays the file at path on the defaults. A missing file is not
// an error.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return Default(), fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.Defaults.Vibe = vibe.Normalize(c.Defaults.Vibe)
	c.Defaults.Temperature = state.ClampTemperature(c.Defaults.Temperature)
	c.Groq.BaseURL = strings.TrimRight(strings.TrimSpace(c.Groq.BaseURL), "/")
	if c.Groq.BaseURL == "" {
		c.Groq.BaseURL = providers.DefaultGroqBaseURL
	}
	if c.Session.MaxTranscript <= 0 || c.Session.MaxTranscript > state.MaxTranscript {
		c.Session.MaxTranscript = state.MaxTranscript
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Timeout parses the groq timeout, falling back to the default for empty or
// non-positive values.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.Groq.Timeout))
	if err != nil || d <= 0 {
		return providers.DefaultTimeout
	}
	return d
}

func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}
