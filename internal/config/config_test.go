package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yubzen/quickvibe/internal/providers"
	"github.com/yubzen/quickvibe/internal/state"
	"github.com/yubzen/quickvibe/internal/vibe"
)

func TestGetConfigPathUsesHome(t *testing.T) {
	orig := userHomeDir
	defer func() { userHomeDir = orig }()
	userHomeDir = func() (string, error) { return "/home/vibe", nil }

	assert.Equal(t, "/home/vibe/.config/quickvibe/config.toml", GetConfigPath())
}

func TestLoadFromMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, vibe.Default, cfg.Defaults.Vibe)
	assert.Equal(t, state.DefaultTemperature, cfg.Defaults.Temperature)
	assert.Equal(t, providers.DefaultGroqBaseURL, cfg.Groq.BaseURL)
	assert.Equal(t, providers.DefaultTimeout, cfg.Timeout())
	assert.Equal(t, state.MaxTranscript, cfg.Session.MaxTranscript)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromOverlaysAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[defaults]
vibe = "Savage 🔥"
temperature = 3.5

[groq]
base_url = "http://localhost:9999/v1/"
timeout = "5s"

[session]
max_transcript = 500

[log]
level = "DEBUG"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "Savage 🔥", cfg.Defaults.Vibe)
	assert.Equal(t, state.MaxTemperature, cfg.Defaults.Temperature)
	assert.Equal(t, "http://localhost:9999/v1", cfg.Groq.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, state.MaxTranscript, cfg.Session.MaxTranscript)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFromUnknownVibeFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[defaults]\nvibe = \"Unhinged\"\n"), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, vibe.Default, cfg.Defaults.Vibe)
}

func TestLoadFromBrokenFileReturnsDefaultsAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[defaults\nvibe = "), 0o644))

	cfg, err := LoadFrom(path)
	require.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, vibe.Default, cfg.Defaults.Vibe)
}

func TestTimeoutFallsBackOnGarbage(t *testing.T) {
	cfg := Default()
	for _, raw := range []string{"", "soon", "-3s", "0s"} {
		cfg.Groq.Timeout = raw
		assert.Equal(t, providers.DefaultTimeout, cfg.Timeout(), "raw %q", raw)
	}
}

func TestConfiguredTimeoutReachesGroqClient(t *testing.T) {
	cfg := Default()
	cfg.Groq.Timeout = "7s"
	cfg.Groq.BaseURL = "https://proxy.test/openai/v1"

	p := providers.NewGroqFactory(cfg.Groq.BaseURL, cfg.Timeout())(" gsk_test ")
	g, ok := p.(*providers.Groq)
	require.True(t, ok, "factory built %T", p)
	assert.Equal(t, 7*time.Second, g.Client.Timeout)
	assert.Equal(t, cfg.Groq.BaseURL, g.BaseURL)
}

func TestSaveToThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := Default()
	cfg.Defaults.Vibe = "Dry 🧂"
	cfg.Defaults.Temperature = 1.2
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "Dry 🧂", loaded.Defaults.Vibe)
	assert.Equal(t, 1.2, loaded.Defaults.Temperature)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "gsk_")
}
