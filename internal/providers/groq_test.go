package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     header,
	}
}

func stubClient(fn roundTripFunc) *http.Client {
	return &http.Client{Transport: fn}
}

func TestGroqListModelsKeepsServiceOrder(t *testing.T) {
	t.Parallel()

	client := stubClient(func(r *http.Request) (*http.Response, error) {
		if got := r.Header.Get("Authorization"); got != "Bearer gsk_test" {
			t.Fatalf("unexpected auth header: %q", got)
		}
		if r.Method != http.MethodGet || r.URL.Path != "/openai/v1/models" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		return jsonResponse(http.StatusOK,
			`{"object":"list","data":[{"id":"llama-70b","object":"model","owned_by":"Meta","created":1},{"id":"","object":"model"},{"id":"whisper-large","object":"model","owned_by":"OpenAI"}]}`), nil
	})

	models, err := NewGroq("", "gsk_test", client).ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "llama-70b", models[0].ID)
	assert.Equal(t, "Meta", models[0].OwnedBy)
	assert.Equal(t, int64(1), models[0].Created)
	assert.Equal(t, "model", models[0].Object)
	assert.Equal(t, "whisper-large", models[1].ID)
}

func TestGroqFactoryCarriesTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{name: "configured", timeout: 5 * time.Second, want: 5 * time.Second},
		{name: "zero falls back", timeout: 0, want: DefaultTimeout},
		{name: "negative falls back", timeout: -time.Second, want: DefaultTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewGroqFactory("https://example.test/v1/", tt.timeout)(" gsk_test ")
			g, ok := p.(*Groq)
			require.True(t, ok, "factory built %T", p)
			require.NotNil(t, g.Client)
			assert.Equal(t, tt.want, g.Client.Timeout)
			assert.Equal(t, "https://example.test/v1", g.BaseURL)
		})
	}
}

func TestGroqListModelsUnauthorized(t *testing.T) {
	t.Parallel()

	client := stubClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized,
			`{"error":{"message":"Invalid API Key","type":"invalid_request_error","code":"invalid_api_key"}}`), nil
	})

	_, err := NewGroq("https://example.test/v1/", "gsk_bad", client).ListModels(context.Background())
	require.Error(t, err)
	var authErr *ProviderAuthError
	require.True(t, errors.As(err, &authErr), "expected ProviderAuthError, got %T", err)
	assert.Equal(t, "groq", authErr.ProviderName)
}

func TestGroqCompleteSendsPayload(t *testing.T) {
	t.Parallel()

	var payload struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
	}
	client := stubClient(func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/openai/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		return jsonResponse(http.StatusOK,
			`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"no cap 💯"},"finish_reason":"stop"}]}`), nil
	})

	reply, err := NewGroq("", "gsk_test", client).Complete(context.Background(), CompletionRequest{
		Model: "llama-70b",
		Messages: []Message{
			{Role: "system", Content: "be chill"},
			{Role: "user", Content: "hi there"},
		},
		Temperature: 0.7,
		MaxTokens:   150,
	})
	require.NoError(t, err)
	assert.Equal(t, "no cap 💯", reply)
	assert.Equal(t, "llama-70b", payload.Model)
	require.Len(t, payload.Messages, 2)
	assert.Equal(t, "system", payload.Messages[0].Role)
	assert.Equal(t, "hi there", payload.Messages[1].Content)
	assert.InDelta(t, 0.7, payload.Temperature, 1e-6)
	assert.Equal(t, 150, payload.MaxTokens)
}

func TestGroqCompleteKeepsZeroTemperatureOnTheWire(t *testing.T) {
	t.Parallel()

	var raw map[string]any
	client := stubClient(func(r *http.Request) (*http.Response, error) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		return jsonResponse(http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`), nil
	})

	_, err := NewGroq("", "gsk_test", client).Complete(context.Background(), CompletionRequest{
		Model:    "llama-70b",
		Messages: []Message{{Role: "user", Content: "x"}},
	})
	require.NoError(t, err)
	_, present := raw["temperature"]
	assert.True(t, present, "temperature should be sent even when zero")
}

func TestGroqCompleteNoChoicesIsEmptyReply(t *testing.T) {
	t.Parallel()

	client := stubClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"choices":[]}`), nil
	})

	reply, err := NewGroq("", "gsk_test", client).Complete(context.Background(), CompletionRequest{Model: "llama-70b"})
	require.NoError(t, err)
	assert.Empty(t, reply)
}

func TestGroqCompleteServerError(t *testing.T) {
	t.Parallel()

	client := stubClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusServiceUnavailable, `{"error":{"message":"over capacity"}}`), nil
	})

	_, err := NewGroq("", "gsk_test", client).Complete(context.Background(), CompletionRequest{Model: "llama-70b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "over capacity")
}

func TestGroqTransportErrorSurfaces(t *testing.T) {
	t.Parallel()

	client := stubClient(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})

	_, err := NewGroq("", "gsk_test", client).ListModels(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
