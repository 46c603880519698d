package providers

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
)

var (
	// Non-text modalities and guard/safety variants.
	excludedModelKeywords = []string{
		"tts", "whisper", "vision", "audio", "image", "speech",
		"scout", "maverick", "playai", "llama-guard", "guard",
	}
	// Families known to support chat. Inclusion is opt-in.
	includedModelKeywords = []string{"llama", "mixtral", "gemma"}
)

// CatalogResult is the outcome of one catalog fetch. Exactly one of Models
// (non-empty) or Failure is set.
type CatalogResult struct {
	Models  []ModelDescriptor
	Failure *Failure
}

func (r CatalogResult) OK() bool {
	return r.Failure == nil
}

// IDs returns the model identifiers in service order.
func (r CatalogResult) IDs() []string {
	ids := make([]string, 0, len(r.Models))
	for _, m := range r.Models {
		ids = append(ids, m.ID)
	}
	return ids
}

// IsChatModel applies the keyword policy: exclusions win, then the id must
// name a chat-capable family.
func IsChatModel(modelID string) bool {
	return RejectReason(modelID) == ""
}

// RejectReason explains why IsChatModel would refuse an id, or "" when it
// would accept it.
func RejectReason(modelID string) string {
	lower := strings.ToLower(strings.TrimSpace(modelID))
	if lower == "" {
		return "empty id"
	}
	for _, kw := range excludedModelKeywords {
		if strings.Contains(lower, kw) {
			return "excluded keyword " + kw
		}
	}
	for _, kw := range includedModelKeywords {
		if strings.Contains(lower, kw) {
			return ""
		}
	}
	return "no chat family keyword"
}

// FetchChatModels validates the key, lists the service's models once and
// keeps the chat-suitable ones. It never returns a raw error.
func FetchChatModels(ctx context.Context, apiKey string, build ProviderFactory) CatalogResult {
	if ok, reason := ValidateAPIKey(apiKey); !ok {
		return CatalogResult{Failure: NewFailure(KindValidation, "API key validation failed: "+reason, reason)}
	}
	if build == nil {
		return CatalogResult{Failure: NewFailure(KindCatalog, "Failed to fetch models: no provider configured", "nil provider factory")}
	}

	all, err := build(strings.TrimSpace(apiKey)).ListModels(ctx)
	if err != nil {
		log.WithError(err).Error("model catalog fetch failed")
		return CatalogResult{Failure: NewFailure(KindCatalog, "Failed to fetch models: "+ErrorDetail(err), err.Error())}
	}
	if len(all) == 0 {
		return CatalogResult{Failure: NewFailure(KindCatalog, "No models returned from API", "empty model listing")}
	}

	chat := make([]ModelDescriptor, 0, len(all))
	for _, m := range all {
		if IsChatModel(m.ID) {
			chat = append(chat, m)
		}
	}
	if len(chat) == 0 {
		return CatalogResult{Failure: NewFailure(KindCatalog,
			"No suitable chat models found. QuickVibe needs models like Llama, Mixtral, or Gemma.",
			"all listed models were filtered out")}
	}

	log.WithField("count", len(chat)).Info("fetched chat models")
	return CatalogResult{Models: chat}
}
