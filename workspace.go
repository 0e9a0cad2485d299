package daytona

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// pollInterval is the fixed delay between state checks while waiting for a
// workspace to reach a target state.
const pollInterval = 100 * time.Millisecond

// Workspace is a handle to one remote workspace. It combines the immutable
// identity assigned at creation with a cached metadata snapshot, and exposes
// the toolbox surface through its FS, Git and Process sub-clients.
//
// Handles are constructed by the Daytona client only, always from a
// server-confirmed record.
type Workspace struct {
	// ID is the stable workspace identifier.
	ID string
	// Name is the human-readable workspace name.
	Name string

	// FS provides filesystem operations inside the workspace.
	FS *FileSystem
	// Git provides git operations inside the workspace.
	Git *Git
	// Process provides command and code execution inside the workspace.
	Process *Process

	client  *apiClient
	toolbox CodeToolbox
	log     *zap.Logger

	// cached holds the last-fetched metadata snapshot. It is replaced
	// wholesale, never mutated in place.
	cached atomic.Pointer[WorkspaceInfo]
}

func newWorkspace(client *apiClient, record *apiWorkspace, toolbox CodeToolbox) *Workspace {
	w := &Workspace{
		ID:      record.ID,
		Name:    record.Name,
		client:  client,
		toolbox: toolbox,
		log:     client.log.With(zap.String("workspace_id", record.ID)),
	}
	info := toWorkspaceInfo(record)
	w.cached.Store(&info)

	w.FS = &FileSystem{workspaceID: record.ID, client: client}
	w.Git = &Git{workspaceID: record.ID, client: client}
	w.Process = &Process{workspaceID: record.ID, client: client, toolbox: toolbox}
	return w
}

// Info fetches fresh metadata from the server and returns it as a new
// snapshot. The handle's cached snapshot is replaced with the result; the
// returned value is independent of the cache and of any concurrent call.
func (w *Workspace) Info(ctx context.Context) (*WorkspaceInfo, error) {
	var record apiWorkspace
	if err := w.client.doRequest(ctx, http.MethodGet, workspacePath(w.ID), nil, &record); err != nil {
		return nil, interceptError("Failed to get workspace info: ", err)
	}
	info := toWorkspaceInfo(&record)
	w.cached.Store(&info)
	snapshot := info
	return &snapshot, nil
}

// SetLabels replaces the workspace's labels. Values are coerced to their
// string form; booleans become lowercase "true"/"false". Returns the
// server-confirmed label map.
func (w *Workspace) SetLabels(ctx context.Context, labels map[string]interface{}) (map[string]string, error) {
	coerced := make(map[string]string, len(labels))
	for k, v := range labels {
		coerced[k] = labelValue(v)
	}
	payload := map[string]map[string]string{"labels": coerced}

	var result struct {
		Labels map[string]string `json:"labels"`
	}
	err := w.client.doRequest(ctx, http.MethodPut, workspacePath(w.ID, "labels"), payload, &result)
	if err != nil {
		return nil, interceptError("Failed to set labels: ", err)
	}
	return result.Labels, nil
}

func labelValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(t)
	}
}

// SetAutoStopInterval sets the idle interval in minutes after which the
// workspace stops automatically. Zero disables auto-stop. The cached
// snapshot is updated optimistically without a re-fetch.
func (w *Workspace) SetAutoStopInterval(ctx context.Context, interval int) error {
	if interval < 0 {
		return newInvalidArgument("auto-stop interval must be a non-negative integer")
	}
	path := workspacePath(w.ID, "autostop", fmt.Sprintf("%d", interval))
	if err := w.client.doRequest(ctx, http.MethodPost, path, nil, nil); err != nil {
		return interceptError("Failed to set auto-stop interval: ", err)
	}
	if cached := w.cached.Load(); cached != nil {
		updated := *cached
		updated.AutoStopInterval = interval
		w.cached.Store(&updated)
	}
	return nil
}

// GetPreviewLink builds the preview URL for a port from the last-fetched
// metadata. It fails when the node domain is not known yet; call Info first
// in that case.
func (w *Workspace) GetPreviewLink(port int) (string, error) {
	cached := w.cached.Load()
	if cached == nil || cached.NodeDomain == "" {
		return "", &Error{
			Kind:    KindPreconditionFailed,
			Message: "Failed to get preview link: node domain not found in workspace metadata, refresh with Info first",
		}
	}
	return fmt.Sprintf("https://%d-%s.%s", port, w.ID, cached.NodeDomain), nil
}

// GetWorkspaceRootDir returns the absolute path of the workspace's project
// root inside the sandbox.
func (w *Workspace) GetWorkspaceRootDir(ctx context.Context) (string, error) {
	var result struct {
		Dir string `json:"dir"`
	}
	err := w.client.doRequest(ctx, http.MethodGet, toolboxPath(w.ID, "project-dir"), nil, &result)
	if err != nil {
		return "", interceptError("Failed to get workspace root directory: ", err)
	}
	return result.Dir, nil
}

// CreateLspServer returns a handle to a language server for a project in
// the workspace. No remote call is made until the server is started.
func (w *Workspace) CreateLspServer(languageID LspLanguageID, pathToProject string) *LspServer {
	return &LspServer{
		languageID:    languageID,
		pathToProject: pathToProject,
		workspaceID:   w.ID,
		client:        w.client,
	}
}

// Start starts the workspace and waits for it to reach the started state.
// A zero timeout waits without a deadline.
func (w *Workspace) Start(ctx context.Context, timeout time.Duration) error {
	err := withTimeoutNoResult(ctx, timeout, func(t time.Duration) string {
		return fmt.Sprintf("Workspace %s failed to start within the %g seconds timeout period", w.ID, t.Seconds())
	}, func(ctx context.Context) error {
		if err := w.client.doRequest(ctx, http.MethodPost, workspacePath(w.ID, "start"), nil, nil); err != nil {
			return err
		}
		return w.waitForState(ctx, WorkspaceStateStarted)
	})
	return interceptError("Failed to start workspace: ", err)
}

// Stop stops the workspace and waits for it to reach the stopped state.
// A zero timeout waits without a deadline.
func (w *Workspace) Stop(ctx context.Context, timeout time.Duration) error {
	err := withTimeoutNoResult(ctx, timeout, func(t time.Duration) string {
		return fmt.Sprintf("Workspace %s failed to stop within the %g seconds timeout period", w.ID, t.Seconds())
	}, func(ctx context.Context) error {
		if err := w.client.doRequest(ctx, http.MethodPost, workspacePath(w.ID, "stop"), nil, nil); err != nil {
			return err
		}
		return w.waitForState(ctx, WorkspaceStateStopped)
	})
	return interceptError("Failed to stop workspace: ", err)
}

// WaitUntilStarted polls until the workspace reaches the started state. A
// zero timeout waits without a deadline.
func (w *Workspace) WaitUntilStarted(ctx context.Context, timeout time.Duration) error {
	err := withTimeoutNoResult(ctx, timeout, func(t time.Duration) string {
		return fmt.Sprintf("Workspace %s failed to become ready within the %g seconds timeout period", w.ID, t.Seconds())
	}, func(ctx context.Context) error {
		return w.waitForState(ctx, WorkspaceStateStarted)
	})
	return interceptError("Failure during waiting for workspace to start: ", err)
}

// WaitUntilStopped polls until the workspace reaches the stopped state. A
// zero timeout waits without a deadline.
func (w *Workspace) WaitUntilStopped(ctx context.Context, timeout time.Duration) error {
	err := withTimeoutNoResult(ctx, timeout, func(t time.Duration) string {
		return fmt.Sprintf("Workspace %s failed to become stopped within the %g seconds timeout period", w.ID, t.Seconds())
	}, func(ctx context.Context) error {
		return w.waitForState(ctx, WorkspaceStateStopped)
	})
	return interceptError("Failure during waiting for workspace to stop: ", err)
}

// waitForState polls the workspace record every pollInterval until it
// reports the target state. Observing the error state fails immediately.
//
// While waiting for stopped, read failures are tolerated and polling
// continues: a workspace being torn down can transiently fail reads. While
// waiting for started every read failure propagates. This asymmetry matches
// the server's observed behavior; unify it only with the service owners.
func (w *Workspace) waitForState(ctx context.Context, target WorkspaceState) error {
	for {
		var record apiWorkspace
		err := w.client.doRequest(ctx, http.MethodGet, workspacePath(w.ID), nil, &record)
		switch {
		case err != nil && (target != WorkspaceStateStopped || ctx.Err() != nil):
			return err
		case err != nil:
			w.log.Debug("tolerating read failure while waiting for stop", zap.Error(err))
		default:
			state := record.state()
			w.log.Debug("workspace state poll",
				zap.String("state", string(state)), zap.String("target", string(target)))
			if state == target {
				return nil
			}
			if state == WorkspaceStateError {
				return newWorkspaceFailed(w.ID, state,
					"workspace %s entered error state while waiting for %s", w.ID, target)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
