package daytona

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies errors returned by the SDK.
type Kind string

const (
	// KindInvalidArgument indicates malformed local input detected before
	// any remote call was made.
	KindInvalidArgument Kind = "invalid_argument"
	// KindMissingCredentials indicates required configuration was absent
	// when the client was constructed.
	KindMissingCredentials Kind = "missing_credentials"
	// KindAPIError indicates a structured failure reported by the Daytona
	// server.
	KindAPIError Kind = "api_error"
	// KindTimeout indicates a guarded blocking operation did not complete
	// in time.
	KindTimeout Kind = "timeout"
	// KindWorkspaceFailed indicates the remote workspace entered the error
	// state while the SDK was waiting on it.
	KindWorkspaceFailed Kind = "workspace_failed"
	// KindUnsupportedLanguage indicates a code toolbox language the SDK
	// does not support.
	KindUnsupportedLanguage Kind = "unsupported_language"
	// KindPreconditionFailed indicates an operation was invoked before the
	// state it depends on was available.
	KindPreconditionFailed Kind = "precondition_failed"
	// KindUnknown covers transport failures and anything else.
	KindUnknown Kind = "unknown"
)

// Error is the single error type surfaced by every public SDK operation.
// Callers match on Kind; Message carries the operation-prefixed detail.
type Error struct {
	Kind    Kind
	Message string

	// StatusCode is the HTTP status, set when Kind is KindAPIError.
	StatusCode int

	// WorkspaceID and State are set when Kind is KindWorkspaceFailed.
	WorkspaceID string
	State       WorkspaceState
}

func (e *Error) Error() string {
	return e.Message
}

func newInvalidArgument(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func newUnsupportedLanguage(language string) *Error {
	return &Error{Kind: KindUnsupportedLanguage, Message: fmt.Sprintf("unsupported language: %s", language)}
}

func newWorkspaceFailed(workspaceID string, state WorkspaceState, format string, args ...interface{}) *Error {
	return &Error{
		Kind:        KindWorkspaceFailed,
		Message:     fmt.Sprintf(format, args...),
		WorkspaceID: workspaceID,
		State:       state,
	}
}

// apiError is the raw structured failure produced by the transport. It is
// internal: interceptError converts it into *Error before anything escapes
// a public method.
type apiError struct {
	StatusCode int
	Body       []byte
}

func (e *apiError) Error() string {
	return fmt.Sprintf("API error [%d]: %s", e.StatusCode, e.message())
}

// message extracts the most informative text from the response body: the
// JSON "message" field when present, the raw body otherwise, and the HTTP
// status text when the body is empty.
func (e *apiError) message() string {
	if len(e.Body) == 0 {
		return http.StatusText(e.StatusCode)
	}
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return string(e.Body)
}

// interceptError normalizes a failure into *Error with the operation's
// message prefix. Already-normalized errors pass through unchanged so each
// failure is wrapped exactly once, at the call site that produced it.
func interceptError(prefix string, err error) error {
	if err == nil {
		return nil
	}
	var norm *Error
	if errors.As(err, &norm) {
		return norm
	}
	var api *apiError
	if errors.As(err, &api) {
		return &Error{
			Kind:       KindAPIError,
			Message:    prefix + api.message(),
			StatusCode: api.StatusCode,
		}
	}
	return &Error{Kind: KindUnknown, Message: prefix + err.Error()}
}

func isKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsInvalidArgument reports whether err is a local validation failure.
func IsInvalidArgument(err error) bool { return isKind(err, KindInvalidArgument) }

// IsMissingCredentials reports whether err is a missing configuration failure.
func IsMissingCredentials(err error) bool { return isKind(err, KindMissingCredentials) }

// IsAPIError reports whether err is a structured failure from the server.
func IsAPIError(err error) bool { return isKind(err, KindAPIError) }

// IsTimeout reports whether err is a guard timeout.
func IsTimeout(err error) bool { return isKind(err, KindTimeout) }

// IsWorkspaceFailed reports whether err means the workspace entered the
// error state.
func IsWorkspaceFailed(err error) bool { return isKind(err, KindWorkspaceFailed) }

// IsUnsupportedLanguage reports whether err is an unsupported toolbox
// language failure.
func IsUnsupportedLanguage(err error) bool { return isKind(err, KindUnsupportedLanguage) }

// IsPreconditionFailed reports whether err is a precondition failure.
func IsPreconditionFailed(err error) bool { return isKind(err, KindPreconditionFailed) }

// IsNotFound reports whether err is a server 404 for a missing resource.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindAPIError && e.StatusCode == http.StatusNotFound
}
