package daytona

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestDaytona(t *testing.T, handler http.Handler) *Daytona {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(&Config{
		APIKey:    "test-key",
		ServerURL: srv.URL,
		Target:    TargetRegionLocal,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestNewMissingCredentials(t *testing.T) {
	t.Setenv("DAYTONA_API_KEY", "")
	t.Setenv("DAYTONA_SERVER_URL", "")

	if _, err := New(nil); !IsMissingCredentials(err) {
		t.Fatalf("expected missing-credentials error, got %v", err)
	}
}

func TestCreateValidatesBeforeRemoteCalls(t *testing.T) {
	var calls int32
	client := newTestDaytona(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))

	t.Run("NegativeTimeout", func(t *testing.T) {
		timeout := -1 * time.Second
		_, err := client.Create(context.Background(), &CreateWorkspaceParams{Timeout: &timeout})
		if !IsInvalidArgument(err) {
			t.Fatalf("expected invalid-argument error, got %v", err)
		}
	})

	t.Run("NegativeAutoStopInterval", func(t *testing.T) {
		interval := -5
		_, err := client.Create(context.Background(), &CreateWorkspaceParams{AutoStopInterval: &interval})
		if !IsInvalidArgument(err) {
			t.Fatalf("expected invalid-argument error, got %v", err)
		}
	})

	t.Run("UnsupportedLanguage", func(t *testing.T) {
		_, err := client.Create(context.Background(), &CreateWorkspaceParams{Language: "ruby"})
		if !IsUnsupportedLanguage(err) {
			t.Fatalf("expected unsupported-language error, got %v", err)
		}
	})

	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("expected no remote calls for invalid input, got %d", atomic.LoadInt32(&calls))
	}
}

func TestCreateDefaults(t *testing.T) {
	var created createWorkspaceRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/workspace" {
			if err := json.NewDecoder(r.Body).Decode(&created); err != nil {
				t.Fatalf("failed to decode create request: %v", err)
			}
			writeJSON(t, w, workspaceJSON(created.ID, map[string]interface{}{"state": "started"}))
			return
		}
		// State polls during the post-create wait.
		writeJSON(t, w, workspaceJSON(created.ID, map[string]interface{}{"state": "started"}))
	})

	client := newTestDaytona(t, handler)
	ws, err := client.Create(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}

	if !strings.HasPrefix(created.ID, "sandbox-") {
		t.Errorf("expected generated id with sandbox- prefix, got %q", created.ID)
	}
	if created.Name != created.ID {
		t.Errorf("expected name to default to id, got %q", created.Name)
	}
	if created.User != "daytona" {
		t.Errorf("expected default user daytona, got %q", created.User)
	}
	if created.Target != string(TargetRegionLocal) {
		t.Errorf("expected client default target, got %q", created.Target)
	}
	if ws.ID != created.ID {
		t.Errorf("expected handle id %q, got %q", created.ID, ws.ID)
	}
}

func TestCreateCleansUpOnWaitFailure(t *testing.T) {
	var deletes int32
	var deletePath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/workspace":
			writeJSON(t, w, workspaceJSON("sandbox-doomed", map[string]interface{}{"state": "creating"}))
		case r.Method == http.MethodDelete:
			atomic.AddInt32(&deletes, 1)
			deletePath = r.URL.Path + "?" + r.URL.RawQuery
			w.WriteHeader(http.StatusOK)
		default:
			writeJSON(t, w, workspaceJSON("sandbox-doomed", map[string]interface{}{"state": "error"}))
		}
	})

	client := newTestDaytona(t, handler)
	_, err := client.Create(context.Background(), &CreateWorkspaceParams{ID: "sandbox-doomed"})
	if !IsWorkspaceFailed(err) {
		t.Fatalf("expected workspace-failed error, got %v", err)
	}
	if n := atomic.LoadInt32(&deletes); n != 1 {
		t.Fatalf("expected exactly one cleanup delete, got %d", n)
	}
	if deletePath != "/workspace/sandbox-doomed?force=true" {
		t.Errorf("expected forced delete, got %s", deletePath)
	}
}

func TestGetRequiresID(t *testing.T) {
	client := newTestDaytona(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("expected no remote call")
	}))
	if _, err := client.Get(context.Background(), ""); !IsInvalidArgument(err) {
		t.Fatalf("expected invalid-argument error, got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	client := newTestDaytona(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "workspace not found"}`))
	}))
	_, err := client.Get(context.Background(), "sandbox-missing")
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "Failed to get workspace: ") {
		t.Errorf("expected operation prefix, got %q", err.Error())
	}
}

func TestListInfersToolboxLanguage(t *testing.T) {
	records := []map[string]interface{}{
		{"id": "ws-python", "name": "ws-python", "labels": map[string]string{toolboxLanguageLabel: "python"}},
		{"id": "ws-ts", "name": "ws-ts", "labels": map[string]string{toolboxLanguageLabel: "typescript"}},
		{"id": "ws-unlabeled", "name": "ws-unlabeled"},
	}
	client := newTestDaytona(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, records)
	}))

	workspaces, err := client.List(context.Background())
	if err != nil {
		t.Fatalf("failed to list workspaces: %v", err)
	}
	if len(workspaces) != 3 {
		t.Fatalf("expected 3 workspaces, got %d", len(workspaces))
	}

	// The unlabeled workspace falls back to the Python toolbox.
	if _, ok := workspaces[0].toolbox.(pythonCodeToolbox); !ok {
		t.Errorf("expected python toolbox for ws-python, got %T", workspaces[0].toolbox)
	}
	if _, ok := workspaces[1].toolbox.(tsCodeToolbox); !ok {
		t.Errorf("expected ts toolbox for ws-ts, got %T", workspaces[1].toolbox)
	}
	if _, ok := workspaces[2].toolbox.(pythonCodeToolbox); !ok {
		t.Errorf("expected python toolbox for ws-unlabeled, got %T", workspaces[2].toolbox)
	}
}

func TestListFailsOnUnrecognizedLanguageLabel(t *testing.T) {
	records := []map[string]interface{}{
		{"id": "ws-ruby", "name": "ws-ruby", "labels": map[string]string{toolboxLanguageLabel: "ruby"}},
	}
	client := newTestDaytona(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, records)
	}))

	if _, err := client.List(context.Background()); !IsUnsupportedLanguage(err) {
		t.Fatalf("expected unsupported-language error, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	var deletePath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deletePath = r.URL.Path + "?" + r.URL.RawQuery
			w.WriteHeader(http.StatusOK)
			return
		}
		writeJSON(t, w, workspaceJSON("sandbox-rm", map[string]interface{}{"state": "started"}))
	})

	client := newTestDaytona(t, handler)
	ws, err := client.Get(context.Background(), "sandbox-rm")
	if err != nil {
		t.Fatalf("failed to get workspace: %v", err)
	}
	if err := client.Remove(context.Background(), ws); err != nil {
		t.Fatalf("failed to remove workspace: %v", err)
	}
	if deletePath != "/workspace/sandbox-rm?force=true" {
		t.Errorf("expected forced delete, got %s", deletePath)
	}
}
