package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesToFile(t *testing.T) {
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	}()

	path := filepath.Join(t.TempDir(), "nested", "qv.log")
	closer, err := Setup(Options{Level: "debug", File: path})
	require.NoError(t, err)

	log.WithField("model", "llama-70b").Debug("selected model")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "selected model")
	assert.Contains(t, out, "model=llama-70b")
	assert.Equal(t, log.DebugLevel, log.GetLevel())
}

func TestSetupAppends(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	path := filepath.Join(t.TempDir(), "qv.log")
	for _, msg := range []string{"first", "second"} {
		closer, err := Setup(Options{File: path})
		require.NoError(t, err)
		log.Info(msg)
		require.NoError(t, closer.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "level=info"))
}

func TestSetupRejectsBadLevel(t *testing.T) {
	_, err := Setup(Options{Level: "loud", File: filepath.Join(t.TempDir(), "x.log")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}

func TestDefaultPathUsesHome(t *testing.T) {
	orig := userHomeDir
	defer func() { userHomeDir = orig }()

	userHomeDir = func() (string, error) { return "/home/vibe", nil }
	assert.Equal(t, filepath.Join("/home/vibe", ".config", "quickvibe", DefaultFileName), DefaultPath())
}
