package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/yubzen/quickvibe/internal/config"
	"github.com/yubzen/quickvibe/internal/providers"
)

const testKey = "gsk_0123456789abcdefghijklmnopqrstuvwxyzABCD"

type stubProvider struct {
	models   []providers.ModelDescriptor
	listErr  error
	reply    string
	err      error
	requests []providers.CompletionRequest
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) ListModels(context.Context) ([]providers.ModelDescriptor, error) {
	return p.models, p.listErr
}

func (p *stubProvider) Complete(_ context.Context, req providers.CompletionRequest) (string, error) {
	p.requests = append(p.requests, req)
	return p.reply, p.err
}

// withStubs swaps the package seams for the duration of a test.
func withStubs(t *testing.T, p *stubProvider, key string) {
	t.Helper()
	origLoad, origResolve, origFactory, origStdin := loadConfig, resolveCredential, newFactory, stdin
	t.Cleanup(func() {
		loadConfig, resolveCredential, newFactory, stdin = origLoad, origResolve, origFactory, origStdin
	})

	loadConfig = func() (*config.Config, error) { return config.Default(), nil }
	resolveCredential = func(explicit string) (string, providers.CredentialSource, error) {
		if strings.TrimSpace(explicit) != "" {
			return strings.TrimSpace(explicit), providers.SourceExplicit, nil
		}
		if key == "" {
			return "", providers.SourceNone, providers.ErrCredentialNotFound
		}
		return key, providers.SourceEnv, nil
	}
	newFactory = func(*config.Config) providers.ProviderFactory {
		return func(string) providers.Provider { return p }
	}
}

func run(cmd *cobra.Command, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func descriptors(ids ...string) []providers.ModelDescriptor {
	out := make([]providers.ModelDescriptor, 0, len(ids))
	for _, id := range ids {
		out = append(out, providers.ModelDescriptor{ID: id, OwnedBy: "Meta"})
	}
	return out
}

func TestAskPrintsReply(t *testing.T) {
	p := &stubProvider{models: descriptors("llama-70b", "whisper-large"), reply: "no cap 🔥"}
	withStubs(t, p, testKey)

	out, errOut, err := run(NewAskCmd(), "--vibe", "savage", "  she left me on read  ")
	require.NoError(t, err)

	assert.Equal(t, "no cap 🔥\n", out)
	assert.Contains(t, errOut, "llama-70b")
	require.Len(t, p.requests, 1)
	assert.Equal(t, "she left me on read", p.requests[0].Messages[1].Content)
	assert.Contains(t, p.requests[0].Messages[0].Content, "Be bold, a little ruthless")
}

func TestAskReadsStdin(t *testing.T) {
	p := &stubProvider{models: descriptors("gemma-7b"), reply: "ok"}
	withStubs(t, p, testKey)
	stdin = strings.NewReader("from a pipe\n")

	_, _, err := run(NewAskCmd())
	require.NoError(t, err)
	require.Len(t, p.requests, 1)
	assert.Equal(t, "from a pipe", p.requests[0].Messages[1].Content)
}

func TestAskFailures(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		p       *stubProvider
		args    []string
		wantErr string
	}{
		{name: "no key", key: "", p: &stubProvider{}, args: []string{"hi"}, wantErr: "no API key found"},
		{name: "bad key", key: "abc123", p: &stubProvider{}, args: []string{"hi"}, wantErr: "too short"},
		{name: "unknown vibe", key: testKey, p: &stubProvider{}, args: []string{"--vibe", "spicy", "hi"}, wantErr: "unknown vibe"},
		{name: "no chat models", key: testKey, p: &stubProvider{models: descriptors("whisper-large")}, args: []string{"hi"}, wantErr: "No suitable chat models"},
		{name: "empty reply", key: testKey, p: &stubProvider{models: descriptors("llama")}, args: []string{"hi"}, wantErr: "got empty response"},
		{name: "server error", key: testKey, p: &stubProvider{models: descriptors("llama"), err: errors.New("over capacity")}, args: []string{"hi"}, wantErr: "server's trippin': over capacity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withStubs(t, tt.p, tt.key)
			stdin = strings.NewReader("")
			_, _, err := run(NewAskCmd(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestModelsTableListsFilteredRotation(t *testing.T) {
	withStubs(t, &stubProvider{models: descriptors("llama-70b", "whisper-large", "llama-guard-2")}, testKey)

	out, _, err := run(NewModelsCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "llama-70b")
	assert.NotContains(t, out, "whisper")
	assert.NotContains(t, out, "guard")
}

func TestModelsAllShowsReasons(t *testing.T) {
	withStubs(t, &stubProvider{models: descriptors("llama-70b", "whisper-large", "qwen-32b")}, testKey)

	out, _, err := run(NewModelsCmd(), "--all", "--format", "json")
	require.NoError(t, err)

	var rows []modelRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Chat)
	assert.Equal(t, "excluded keyword whisper", rows[1].Reason)
	assert.Equal(t, "no chat family keyword", rows[2].Reason)
}

func TestModelsYAML(t *testing.T) {
	withStubs(t, &stubProvider{models: descriptors("mixtral-8x7b")}, testKey)

	out, _, err := run(NewModelsCmd(), "--format", "yaml")
	require.NoError(t, err)

	var rows []modelRow
	require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "mixtral-8x7b", rows[0].ID)
}

func TestModelsRejectsUnknownFormat(t *testing.T) {
	withStubs(t, &stubProvider{models: descriptors("llama")}, testKey)
	_, _, err := run(NewModelsCmd(), "--format", "xml")
	require.Error(t, err)
}

func TestVibesListsAllSix(t *testing.T) {
	withStubs(t, &stubProvider{}, "")

	out, _, err := run(NewVibesCmd(), "--format", "yaml")
	require.NoError(t, err)

	var rows []vibeRow
	require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 6)
	assert.Equal(t, "Witty 😏", rows[0].Label)
	assert.True(t, rows[0].Default)
}

func TestAuthNeverPrintsKey(t *testing.T) {
	withStubs(t, &stubProvider{models: descriptors("llama")}, testKey)

	out, _, err := run(NewAuthCmd(), "--check")
	require.NoError(t, err)
	assert.NotContains(t, out, testKey)
	assert.Contains(t, out, "env")
	assert.Contains(t, out, "valid")
	assert.Contains(t, out, "1 chat models")
}

func TestAuthWithoutKey(t *testing.T) {
	withStubs(t, &stubProvider{}, "")

	out, _, err := run(NewAuthCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "No API key")
}
