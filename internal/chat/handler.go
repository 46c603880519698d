package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/yubzen/quickvibe/internal/providers"
	"github.com/yubzen/quickvibe/internal/state"
	"github.com/yubzen/quickvibe/internal/vibe"
)

type ActionKind int

const (
	ActionSetCredential ActionKind = iota
	ActionConnect
	ActionSelectVibe
	ActionSetTemperature
	ActionSend
	ActionClear
)

func (k ActionKind) String() string {
	switch k {
	case ActionSetCredential:
		return "set_credential"
	case ActionConnect:
		return "connect"
	case ActionSelectVibe:
		return "select_vibe"
	case ActionSetTemperature:
		return "set_temperature"
	case ActionSend:
		return "send"
	case ActionClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Action is one discrete user interaction.
type Action struct {
	Kind        ActionKind
	Text        string
	Temperature float64
}

const (
	MsgRotationExhausted = "💀 No models loaded. Can't vibe. Check API key & models."
	MsgNotConfigured     = "⚠️ Yo, plug in your API key and /connect to start vibing! 🔑"
	MsgKeyRequired       = "Bruh, API key first. 🙄"
)

// nextModel picks the model for a send. Swapped in tests to simulate a
// rotator that cannot select.
var nextModel = (*state.Session).NextModel

// Handler applies actions to a session one at a time and returns a Render
// snapshot after each.
type Handler struct {
	mu         sync.Mutex
	seq        uint64
	session    *state.Session
	build      providers.ProviderFactory
	dispatcher *Dispatcher
}

func NewHandler(sess *state.Session, build providers.ProviderFactory) *Handler {
	return &Handler{
		session:    sess,
		build:      build,
		dispatcher: NewDispatcher(build),
	}
}

// Snapshot renders the current session without changing it.
func (h *Handler) Snapshot() Render {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := snapshot(h.session)
	r.Seq = h.seq
	return r
}

func (h *Handler) Handle(ctx context.Context, a Action) Render {
	if ctx == nil {
		ctx = context.Background()
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.session.Logger().WithField("action", a.Kind.String()).Debug("handling action")
	h.seq++
	r := h.apply(ctx, a)
	r.Seq = h.seq
	return r
}

func (h *Handler) apply(ctx context.Context, a Action) Render {
	switch a.Kind {
	case ActionSetCredential:
		return h.setCredential(a.Text)
	case ActionConnect:
		return h.connect(ctx)
	case ActionSelectVibe:
		return h.selectVibe(a.Text)
	case ActionSetTemperature:
		t := h.session.SetTemperature(a.Temperature)
		return withNotice(snapshot(h.session), LevelInfo, fmt.Sprintf("Temperature set to %.2f", t))
	case ActionSend:
		return h.send(ctx, a.Text)
	case ActionClear:
		h.session.ClearTranscript()
		return withNotice(snapshot(h.session), LevelInfo, "Transcript cleared.")
	default:
		return withNotice(snapshot(h.session), LevelWarning, fmt.Sprintf("Unknown action %d", a.Kind))
	}
}

// Autoconnect validates a credential supplied at startup. It reports false
// when there was nothing to connect with.
func (h *Handler) Autoconnect(ctx context.Context) (Render, bool) {
	h.mu.Lock()
	hasKey := h.session.APIKey() != ""
	h.mu.Unlock()
	if !hasKey {
		return h.Snapshot(), false
	}
	r := h.Handle(ctx, Action{Kind: ActionConnect})
	if r.Failure != nil {
		h.session.Logger().WithField("reason", r.Failure.Message).Warn("API key auto-validation failed")
	} else {
		h.session.Logger().Info("API key auto-validated")
	}
	return r, true
}

func (h *Handler) setCredential(key string) Render {
	changed := h.session.SetAPIKey(key)
	r := snapshot(h.session)
	switch {
	case h.session.APIKey() == "":
		return withNotice(r, LevelWarning, "API key cleared.")
	case !changed:
		return withNotice(r, LevelInfo, "API key unchanged.")
	}
	if ok, reason := providers.ValidateAPIKey(key); !ok {
		return withNotice(r, LevelWarning, reason)
	}
	return withNotice(r, LevelInfo, "API key set. Hit /connect to load models.")
}

func (h *Handler) connect(ctx context.Context) Render {
	if strings.TrimSpace(h.session.APIKey()) == "" {
		return withNotice(snapshot(h.session), LevelError, MsgKeyRequired)
	}

	result := providers.FetchChatModels(ctx, h.session.APIKey(), h.build)
	if !result.OK() {
		h.session.Invalidate()
		h.session.LogError(result.Failure.Message)
		r := snapshot(h.session)
		r.Failure = result.Failure
		return withNotice(r, LevelError, "❌ Connection failed: "+result.Failure.Message)
	}

	ids := result.IDs()
	h.session.ApplyCatalog(ids)
	return withNotice(snapshot(h.session), LevelSuccess,
		fmt.Sprintf("✅ Connected! Found %d chat models. Let's gooo! 🔥", len(ids)))
}

func (h *Handler) selectVibe(input string) Render {
	label, ok := vibe.Resolve(input)
	if !ok {
		return withNotice(snapshot(h.session), LevelWarning,
			fmt.Sprintf("Unknown vibe %q. Pick one of: %s", strings.TrimSpace(input), strings.Join(vibe.Labels(), ", ")))
	}
	h.session.SetVibe(label)
	h.session.Logger().WithField("vibe", label).Info("vibe selected")
	return withNotice(snapshot(h.session), LevelInfo, "Vibe set to "+label)
}

func (h *Handler) send(ctx context.Context, text string) Render {
	if strings.TrimSpace(text) == "" {
		return snapshot(h.session)
	}
	if !h.session.Configured() {
		return withNotice(snapshot(h.session), LevelWarning, MsgNotConfigured)
	}

	h.session.AppendUser(text)

	model, ok := nextModel(h.session)
	if !ok {
		h.session.AppendAssistant(MsgRotationExhausted, "", true)
		h.session.LogError(MsgRotationExhausted)
		r := snapshot(h.session)
		r.Failure = providers.NewFailure(providers.KindRotationExhausted, MsgRotationExhausted, "")
		return withNotice(r, LevelError, MsgRotationExhausted)
	}

	result := h.dispatcher.Dispatch(ctx, h.session, model, text, h.session.Temperature())
	if result.OK() {
		h.session.AppendAssistant(result.Text, model, false)
		r := snapshot(h.session)
		r.Reply = &result
		return r
	}

	h.session.AppendAssistant(result.Failure.Message, model, true)
	r := snapshot(h.session)
	r.Reply = &result
	r.Failure = result.Failure
	return withNotice(r, LevelError, result.Failure.Message)
}

func withNotice(r Render, level Level, notice string) Render {
	r.Level = level
	r.Notice = notice
	return r
}
