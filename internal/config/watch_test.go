package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	orig := watchDebounce
	watchDebounce = 20 * time.Millisecond
	defer func() { watchDebounce = orig }()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[defaults]\nvibe = \"Witty 😏\"\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	reloaded := make(chan *Config, 4)
	done, err := Watch(ctx, path, func(cfg *Config, err error) {
		if err == nil {
			reloaded <- cfg
		}
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[defaults]\nvibe = \"Chill 😎\"\n"), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "Chill 😎", cfg.Defaults.Vibe)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestWatchIgnoresSiblingFiles(t *testing.T) {
	orig := watchDebounce
	watchDebounce = 20 * time.Millisecond
	defer func() { watchDebounce = orig }()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := make(chan struct{}, 4)
	_, err := Watch(ctx, path, func(*Config, error) { calls <- struct{}{} })
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "quickvibe.log"), []byte("noise"), 0o644))

	select {
	case <-calls:
		t.Fatal("unexpected reload for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}
