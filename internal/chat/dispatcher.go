// Package chat turns user actions into session mutations and completion
// requests against the configured provider.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/yubzen/quickvibe/internal/providers"
	"github.com/yubzen/quickvibe/internal/sanitize"
	"github.com/yubzen/quickvibe/internal/state"
	"github.com/yubzen/quickvibe/internal/vibe"
)

// MaxReplyTokens bounds the length of each generated reply.
const MaxReplyTokens = 150

const (
	msgMissingInput   = "Model and message are required."
	msgMissingKey     = "No API key configured. Add one with /connect or GROQ_API_KEY."
	msgEmptySanitized = "Invalid or empty message after sanitization."
	emptyReplyDetail  = "No response content generated"
)

// ReplyResult is the outcome of one dispatch. Failure is nil on success.
type ReplyResult struct {
	Text    string
	Model   string
	Failure *providers.Failure
}

func (r ReplyResult) OK() bool {
	return r.Failure == nil
}

type Dispatcher struct {
	Build providers.ProviderFactory
}

func NewDispatcher(build providers.ProviderFactory) *Dispatcher {
	return &Dispatcher{Build: build}
}

// Dispatch sends the vibe-flavoured system prompt plus the sanitized message
// to model and returns the first reply. Remote errors never escape; they come
// back as a tagged Failure and one error-log entry on sess.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *state.Session, model, message string, temperature float64) ReplyResult {
	if ctx == nil {
		ctx = context.Background()
	}
	model = strings.TrimSpace(model)
	result := ReplyResult{Model: model}

	if model == "" || message == "" {
		result.Failure = providers.NewFailure(providers.KindValidation, msgMissingInput, "")
		return result
	}
	if sess == nil || sess.APIKey() == "" {
		result.Failure = providers.NewFailure(providers.KindValidation, msgMissingKey, "")
		return result
	}
	clean := sanitize.Outbound(message)
	if clean == "" {
		result.Failure = providers.NewFailure(providers.KindValidation, msgEmptySanitized, "")
		return result
	}

	req := providers.CompletionRequest{
		Model: model,
		Messages: []providers.Message{
			{Role: "system", Content: vibe.SystemPromptFor(sess.Vibe())},
			{Role: "user", Content: clean},
		},
		Temperature: state.ClampTemperature(temperature),
		MaxTokens:   MaxReplyTokens,
	}

	if d == nil || d.Build == nil {
		return d.fail(sess, result, fmt.Errorf("no provider configured"))
	}
	reply, err := d.Build(sess.APIKey()).Complete(ctx, req)
	if err != nil {
		return d.fail(sess, result, normalizeCancellationErr(err))
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		sess.LogError(emptyReplyDetail)
		result.Failure = providers.NewFailure(providers.KindEmptyReply,
			"💀 Yikes, got empty response: "+emptyReplyDetail, emptyReplyDetail)
		return result
	}

	sess.Logger().WithField("model", model).Info("reply generated")
	result.Text = reply
	return result
}

func (d *Dispatcher) fail(sess *state.Session, result ReplyResult, err error) ReplyResult {
	detail := providers.ErrorDetail(err)
	sess.LogError(fmt.Sprintf("QuickVibe chat failed with model %s: %s", result.Model, detail))
	result.Failure = providers.NewFailure(providers.KindDispatch, "💀 Yikes, server's trippin': "+detail, detail)
	return result
}
