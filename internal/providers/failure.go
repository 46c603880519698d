package providers

import "strings"

// Kind tags a failure with its place in the error taxonomy.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindCatalog           Kind = "catalog"
	KindDispatch          Kind = "dispatch"
	KindEmptyReply        Kind = "empty_reply"
	KindRotationExhausted Kind = "rotation_exhausted"
)

// Failure is the tagged result returned at the catalog and dispatch
// boundaries instead of a raw error. Message is user-facing; Detail keeps the
// underlying cause for diagnostics.
type Failure struct {
	Kind    Kind
	Message string
	Detail  string
}

func NewFailure(kind Kind, message, detail string) *Failure {
	return &Failure{
		Kind:    kind,
		Message: strings.TrimSpace(message),
		Detail:  strings.TrimSpace(detail),
	}
}

// IsDispatch reports whether the failure came from the completion call,
// including an empty reply.
func (f *Failure) IsDispatch() bool {
	return f != nil && (f.Kind == KindDispatch || f.Kind == KindEmptyReply)
}

func (f *Failure) String() string {
	if f == nil {
		return ""
	}
	return f.Message
}
