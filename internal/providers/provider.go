package providers

import (
	"context"
	"errors"
)

type Message struct {
	Role    string // "user" | "assistant" | "system"
	Content string
}

// ModelDescriptor is one entry of the service's model listing. Only ID drives
// behaviour; the rest is carried for display.
type ModelDescriptor struct {
	ID      string `json:"id" yaml:"id"`
	OwnedBy string `json:"owned_by,omitempty" yaml:"owned_by,omitempty"`
	Created int64  `json:"created,omitempty" yaml:"created,omitempty"`
	Object  string `json:"object,omitempty" yaml:"object,omitempty"`
}

type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

type Provider interface {
	Name() string
	ListModels(ctx context.Context) ([]ModelDescriptor, error)
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ProviderFactory builds a client bound to one credential.
type ProviderFactory func(apiKey string) Provider

type ProviderAuthError struct {
	ProviderName string
	Msg          string
}

func (e *ProviderAuthError) Error() string {
	return e.Msg
}

// ErrorDetail is the user-facing text for err: the bare message for auth
// failures, the full chain otherwise.
func ErrorDetail(err error) string {
	if err == nil {
		return ""
	}
	var authErr *ProviderAuthError
	if errors.As(err, &authErr) {
		return authErr.Msg
	}
	return err.Error()
}
