package daytona

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

func TestFileUploadDownload(t *testing.T) {
	content := []byte("package main\n\nfunc main() {}\n")
	stored := map[string][]byte{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("path")
		switch r.Method {
		case http.MethodPost:
			if ct := r.Header.Get("Content-Type"); ct != "application/octet-stream" {
				t.Errorf("expected octet-stream upload, got %q", ct)
			}
			body, err := io.ReadAll(r.Body)
			if err != nil {
				t.Fatalf("failed to read upload: %v", err)
			}
			stored[path] = body
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			body, ok := stored[path]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"message": "file not found"}`))
				return
			}
			w.Write(body)
		}
	})

	ws := newTestWorkspace(t, handler)
	ctx := context.Background()

	if err := ws.FS.UploadFile(ctx, "/workspace/main.go", content); err != nil {
		t.Fatalf("failed to upload file: %v", err)
	}

	got, err := ws.FS.DownloadFile(ctx, "/workspace/main.go")
	if err != nil {
		t.Fatalf("failed to download file: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("downloaded content does not match upload")
	}

	if _, err := ws.FS.DownloadFile(ctx, "/workspace/missing.go"); !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestListFiles(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("path") != "/workspace" {
			t.Errorf("expected path query, got %q", r.URL.RawQuery)
		}
		writeJSON(t, w, []FileInfo{
			{Name: "main.go", Size: 120},
			{Name: "src", IsDir: true},
		})
	})

	ws := newTestWorkspace(t, handler)
	files, err := ws.FS.ListFiles(context.Background(), "/workspace")
	if err != nil {
		t.Fatalf("failed to list files: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(files))
	}
	if files[0].Name != "main.go" || files[1].IsDir != true {
		t.Errorf("unexpected listing: %+v", files)
	}
}

func TestReplaceInFiles(t *testing.T) {
	var received struct {
		Files    []string `json:"files"`
		Pattern  string   `json:"pattern"`
		NewValue string   `json:"newValue"`
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		writeJSON(t, w, []ReplaceResult{
			{File: "/workspace/a.go", Success: true},
			{File: "/workspace/b.go", Success: false, Error: "permission denied"},
		})
	})

	ws := newTestWorkspace(t, handler)
	results, err := ws.FS.ReplaceInFiles(context.Background(),
		[]string{"/workspace/a.go", "/workspace/b.go"}, "foo", "bar")
	if err != nil {
		t.Fatalf("failed to replace in files: %v", err)
	}
	if received.Pattern != "foo" || received.NewValue != "bar" {
		t.Errorf("unexpected wire request: %+v", received)
	}
	if len(results) != 2 || results[1].Error != "permission denied" {
		t.Errorf("unexpected results: %+v", results)
	}
}
