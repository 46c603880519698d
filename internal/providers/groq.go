package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	DefaultTimeout     = 30 * time.Second
)

// Groq talks to Groq's OpenAI-compatible endpoints with one fixed credential.
type Groq struct {
	BaseURL string
	Client  *http.Client
	client  *openai.Client
}

func NewGroq(baseURL, apiKey string, httpClient *http.Client) *Groq {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultGroqBaseURL
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	cfg.BaseURL = baseURL
	cfg.HTTPClient = httpClient

	return &Groq{
		BaseURL: baseURL,
		Client:  httpClient,
		client:  openai.NewClientWithConfig(cfg),
	}
}

// NewGroqFactory binds base URL and timeout so callers only supply the key.
func NewGroqFactory(baseURL string, timeout time.Duration) ProviderFactory {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return func(apiKey string) Provider {
		return NewGroq(baseURL, apiKey, &http.Client{Timeout: timeout})
	}
}

func (p *Groq) Name() string {
	return "groq"
}

func (p *Groq) ListModels(ctx context.Context) ([]ModelDescriptor, error) {
	list, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, p.translateErr(err)
	}

	models := make([]ModelDescriptor, 0, len(list.Models))
	for _, m := range list.Models {
		id := strings.TrimSpace(m.ID)
		if id == "" {
			continue
		}
		models = append(models, ModelDescriptor{
			ID:      id,
			OwnedBy: m.OwnedBy,
			Created: m.CreatedAt,
			Object:  m.Object,
		})
	}
	return models, nil
}

func (p *Groq) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	// go-openai drops a zero temperature as omitempty; the smallest non-zero
	// float keeps the request deterministic instead of falling back to the
	// server default.
	temperature := float32(req.Temperature)
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", p.translateErr(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *Groq) translateErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusUnauthorized {
			return &ProviderAuthError{ProviderName: p.Name(), Msg: "Unauthorized: invalid Groq API key"}
		}
		return fmt.Errorf("groq error: %s (status %d)", apiErr.Message, apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusUnauthorized {
			return &ProviderAuthError{ProviderName: p.Name(), Msg: "Unauthorized: invalid Groq API key"}
		}
		return fmt.Errorf("groq request failed (status %d): %w", reqErr.HTTPStatusCode, reqErr.Err)
	}
	return err
}
