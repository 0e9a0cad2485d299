package daytona

import (
	"errors"
	"net/http"
	"testing"
)

func TestAPIErrorMessage(t *testing.T) {
	t.Run("JSONMessageField", func(t *testing.T) {
		e := &apiError{StatusCode: 400, Body: []byte(`{"message": "workspace quota exceeded"}`)}
		if got := e.message(); got != "workspace quota exceeded" {
			t.Errorf("expected message field, got %q", got)
		}
	})

	t.Run("NonJSONBody", func(t *testing.T) {
		e := &apiError{StatusCode: 500, Body: []byte("upstream exploded")}
		if got := e.message(); got != "upstream exploded" {
			t.Errorf("expected raw body, got %q", got)
		}
	})

	t.Run("JSONWithoutMessageField", func(t *testing.T) {
		e := &apiError{StatusCode: 400, Body: []byte(`{"error": "nope"}`)}
		if got := e.message(); got != `{"error": "nope"}` {
			t.Errorf("expected raw body, got %q", got)
		}
	})

	t.Run("EmptyBody", func(t *testing.T) {
		e := &apiError{StatusCode: 404}
		if got := e.message(); got != "Not Found" {
			t.Errorf("expected status text, got %q", got)
		}
	})
}

func TestInterceptError(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		if err := interceptError("Failed to frob: ", nil); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("WrapsAPIError", func(t *testing.T) {
		err := interceptError("Failed to get workspace: ",
			&apiError{StatusCode: 404, Body: []byte(`{"message": "workspace not found"}`)})
		if !IsAPIError(err) {
			t.Fatalf("expected API error, got %v", err)
		}
		if !IsNotFound(err) {
			t.Errorf("expected 404 to report not-found, got %v", err)
		}
		if err.Error() != "Failed to get workspace: workspace not found" {
			t.Errorf("expected prefixed message, got %q", err.Error())
		}
	})

	t.Run("WrapsUnknownError", func(t *testing.T) {
		err := interceptError("Failed to get workspace: ", errors.New("connection refused"))
		var e *Error
		if !errors.As(err, &e) || e.Kind != KindUnknown {
			t.Fatalf("expected unknown-kind error, got %v", err)
		}
		if err.Error() != "Failed to get workspace: connection refused" {
			t.Errorf("expected prefixed message, got %q", err.Error())
		}
	})

	t.Run("PassesNormalizedThrough", func(t *testing.T) {
		inner := newInvalidArgument("timeout must be a non-negative duration")
		err := interceptError("Failed to create workspace: ", inner)
		var e *Error
		if !errors.As(err, &e) || e != inner {
			t.Fatalf("expected the original error unchanged, got %v", err)
		}
	})
}

func TestKindHelpers(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"InvalidArgument", newInvalidArgument("bad"), IsInvalidArgument},
		{"MissingCredentials", &Error{Kind: KindMissingCredentials, Message: "API key is required"}, IsMissingCredentials},
		{"Timeout", &Error{Kind: KindTimeout, Message: "too slow"}, IsTimeout},
		{"WorkspaceFailed", newWorkspaceFailed("ws", WorkspaceStateError, "failed"), IsWorkspaceFailed},
		{"UnsupportedLanguage", newUnsupportedLanguage("ruby"), IsUnsupportedLanguage},
		{"PreconditionFailed", &Error{Kind: KindPreconditionFailed, Message: "not ready"}, IsPreconditionFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.check(tc.err) {
				t.Errorf("expected helper to match %v", tc.err)
			}
			if tc.check(errors.New("plain")) {
				t.Error("expected helper not to match a plain error")
			}
		})
	}
}

func TestIsNotFoundRequiresStatus(t *testing.T) {
	err := &Error{Kind: KindAPIError, Message: "server error", StatusCode: http.StatusInternalServerError}
	if IsNotFound(err) {
		t.Error("expected a 500 not to report not-found")
	}
}
