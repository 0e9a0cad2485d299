// Package daytona provides a Go SDK for the Daytona workspace service.
//
// The SDK provisions and controls remote workspace sandboxes and exposes
// their toolbox surface (filesystem, git, process execution, LSP) through a
// simple, idiomatic Go API.
//
// Basic usage:
//
//	client, err := daytona.New(nil) // reads DAYTONA_API_KEY, DAYTONA_SERVER_URL
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create a workspace and wait for it to start
//	ws, err := client.Create(context.Background(), &daytona.CreateWorkspaceParams{
//	    Language: daytona.CodeLanguagePython,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Remove(context.Background(), ws)
//
//	// Run code inside it
//	result, err := ws.Process.CodeRun(context.Background(), `print("hello")`, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Result)
package daytona

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Version is the SDK version.
const Version = "0.1.0"

// workspaceIDPrefix is prepended to generated workspace ids.
const workspaceIDPrefix = "sandbox-"

// toolboxLanguageLabel is the workspace label recording which code toolbox
// the workspace was created with.
const toolboxLanguageLabel = "code-toolbox-language"

// Daytona is the top-level client. It owns the authenticated transport and
// is the sole factory for workspace handles.
type Daytona struct {
	// Target is the default region new workspaces are provisioned in.
	Target TargetRegion

	client *apiClient
	log    *zap.Logger
}

// New creates a client from the given configuration. A nil config resolves
// everything from the environment; explicit fields override environment
// values. It fails when no API key or server URL can be resolved.
func New(config *Config) (*Daytona, error) {
	resolved, err := resolveConfig(config)
	if err != nil {
		return nil, err
	}
	client := newAPIClient(resolved)
	return &Daytona{
		Target: resolved.Target,
		client: client,
		log:    client.log,
	}, nil
}

// Create provisions a new workspace and waits for it to reach the started
// state. Nil params default to a Python workspace. If provisioning
// succeeded but the wait fails, the remote workspace is deleted best-effort
// before the original failure is returned, so no orphaned resource is left
// behind.
func (d *Daytona) Create(ctx context.Context, params *CreateWorkspaceParams) (*Workspace, error) {
	if params == nil {
		params = &CreateWorkspaceParams{Language: CodeLanguagePython}
	}

	// Local validation happens before any remote call.
	timeout := DefaultTimeout
	if params.Timeout != nil {
		if *params.Timeout < 0 {
			return nil, newInvalidArgument("timeout must be a non-negative duration")
		}
		timeout = *params.Timeout
	}
	if params.AutoStopInterval != nil && *params.AutoStopInterval < 0 {
		return nil, newInvalidArgument("auto-stop interval must be a non-negative integer")
	}
	toolbox, err := codeToolboxFor(params.Language)
	if err != nil {
		return nil, err
	}

	workspaceID := params.ID
	if workspaceID == "" {
		workspaceID = workspaceIDPrefix + uuid.NewString()[:8]
	}
	name := params.Name
	if name == "" {
		name = workspaceID
	}
	user := params.OSUser
	if user == "" {
		user = "daytona"
	}
	target := params.Target
	if target == "" {
		target = d.Target
	}
	env := params.EnvVars
	if env == nil {
		env = map[string]string{}
	}

	req := createWorkspaceRequest{
		ID:               workspaceID,
		Name:             name,
		Image:            params.Image,
		User:             user,
		Env:              env,
		Labels:           params.Labels,
		Public:           params.Public,
		Target:           string(target),
		AutoStopInterval: params.AutoStopInterval,
	}
	if params.Resources != nil {
		req.CPU = params.Resources.CPU
		req.Memory = params.Resources.Memory
		req.Disk = params.Resources.Disk
		req.GPU = params.Resources.GPU
	}

	d.log.Debug("creating workspace",
		zap.String("workspace_id", workspaceID), zap.String("target", string(target)))

	ws, err := func() (*Workspace, error) {
		var record apiWorkspace
		if err := d.client.doRequest(ctx, http.MethodPost, workspacePath(), req, &record); err != nil {
			return nil, err
		}
		w := newWorkspace(d.client, &record, toolbox)
		if err := w.WaitUntilStarted(ctx, timeout); err != nil {
			return nil, err
		}
		return w, nil
	}()
	if err != nil {
		// Compensating delete: the workspace may have been provisioned
		// before the failure. Cleanup failures are swallowed; only the
		// original failure propagates.
		if delErr := d.forceDelete(context.WithoutCancel(ctx), workspaceID); delErr != nil {
			d.log.Debug("cleanup of failed workspace creation failed",
				zap.String("workspace_id", workspaceID), zap.Error(delErr))
		}
		return nil, interceptError("Failed to create workspace: ", err)
	}

	return ws, nil
}

// Get returns a handle to an existing workspace by id. The handle's code
// toolbox defaults to Python.
func (d *Daytona) Get(ctx context.Context, workspaceID string) (*Workspace, error) {
	if workspaceID == "" {
		return nil, newInvalidArgument("workspace id is required")
	}
	var record apiWorkspace
	if err := d.client.doRequest(ctx, http.MethodGet, workspacePath(workspaceID), nil, &record); err != nil {
		return nil, interceptError("Failed to get workspace: ", err)
	}
	toolbox, _ := codeToolboxFor(CodeLanguagePython)
	return newWorkspace(d.client, &record, toolbox), nil
}

// List returns handles to all workspaces. Each handle's toolbox language is
// inferred from the code-toolbox-language label; a missing label defaults
// to Python, an unrecognized one fails the whole listing.
func (d *Daytona) List(ctx context.Context) ([]*Workspace, error) {
	var records []apiWorkspace
	if err := d.client.doRequest(ctx, http.MethodGet, workspacePath(), nil, &records); err != nil {
		return nil, interceptError("Failed to list workspaces: ", err)
	}

	workspaces := make([]*Workspace, 0, len(records))
	for i := range records {
		record := &records[i]
		language := CodeLanguagePython
		if label := record.Labels[toolboxLanguageLabel]; label != "" {
			parsed, ok := ParseCodeLanguage(label)
			if !ok {
				return nil, newUnsupportedLanguage(label)
			}
			language = parsed
		}
		toolbox, err := codeToolboxFor(language)
		if err != nil {
			return nil, err
		}
		workspaces = append(workspaces, newWorkspace(d.client, record, toolbox))
	}
	return workspaces, nil
}

// Start starts a workspace and waits for it to be ready.
func (d *Daytona) Start(ctx context.Context, workspace *Workspace, timeout time.Duration) error {
	return workspace.Start(ctx, timeout)
}

// Stop stops a workspace and waits for it to be stopped.
func (d *Daytona) Stop(ctx context.Context, workspace *Workspace, timeout time.Duration) error {
	return workspace.Stop(ctx, timeout)
}

// Remove force-deletes a workspace. The delete is not verified with a
// post-delete wait.
func (d *Daytona) Remove(ctx context.Context, workspace *Workspace) error {
	return interceptError("Failed to remove workspace: ", d.forceDelete(ctx, workspace.ID))
}

func (d *Daytona) forceDelete(ctx context.Context, workspaceID string) error {
	path := fmt.Sprintf("%s?force=true", workspacePath(workspaceID))
	return d.client.doRequest(ctx, http.MethodDelete, path, nil, nil)
}
