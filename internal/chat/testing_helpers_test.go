package chat

import (
	"context"
	"strings"

	"github.com/yubzen/quickvibe/internal/providers"
)

const testKey = "gsk_0123456789abcdefghijklmnopqrstuvwxyzABCD"

type captureProvider struct {
	models    []providers.ModelDescriptor
	listErr   error
	reply     string
	err       error
	requests  []providers.CompletionRequest
	listCalls int
}

func (p *captureProvider) Name() string { return "capture" }

func (p *captureProvider) ListModels(context.Context) ([]providers.ModelDescriptor, error) {
	p.listCalls++
	return p.models, p.listErr
}

func (p *captureProvider) Complete(_ context.Context, req providers.CompletionRequest) (string, error) {
	p.requests = append(p.requests, req)
	return p.reply, p.err
}

func (p *captureProvider) factory() providers.ProviderFactory {
	return func(string) providers.Provider { return p }
}

func descriptors(ids ...string) []providers.ModelDescriptor {
	out := make([]providers.ModelDescriptor, 0, len(ids))
	for _, id := range ids {
		out = append(out, providers.ModelDescriptor{ID: strings.TrimSpace(id)})
	}
	return out
}
