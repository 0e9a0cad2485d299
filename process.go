package daytona

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ExecuteResponse is the result of a command or code-snippet execution.
type ExecuteResponse struct {
	ExitCode int    `json:"exitCode"`
	Result   string `json:"result"`
}

// ExecOptions carries optional settings for command execution.
type ExecOptions struct {
	// Cwd is the working directory; the workspace root when empty.
	Cwd string
	// Env is merged into the process environment.
	Env map[string]string
	// Timeout bounds the execution. Zero waits without a deadline.
	Timeout time.Duration
}

// Process provides command and code execution inside one workspace.
type Process struct {
	workspaceID string
	client      *apiClient
	toolbox     CodeToolbox
}

// Exec runs a shell command in the workspace and waits for it to complete.
// A non-zero exit code is not an error; it is reported in the response.
func (p *Process) Exec(ctx context.Context, command string, opts *ExecOptions) (*ExecuteResponse, error) {
	if opts == nil {
		opts = &ExecOptions{}
	}

	body := struct {
		Command string            `json:"command"`
		Cwd     string            `json:"cwd,omitempty"`
		Env     map[string]string `json:"env,omitempty"`
		Timeout int               `json:"timeout,omitempty"`
	}{
		Command: command,
		Cwd:     opts.Cwd,
		Env:     opts.Env,
		Timeout: int(opts.Timeout.Seconds()),
	}

	result, err := withTimeout(ctx, opts.Timeout, func(t time.Duration) string {
		return fmt.Sprintf("command did not complete within the %g seconds timeout period", t.Seconds())
	}, func(ctx context.Context) (*ExecuteResponse, error) {
		var response ExecuteResponse
		err := p.client.doRequest(ctx, http.MethodPost,
			toolboxPath(p.workspaceID, "process", "execute"), body, &response)
		if err != nil {
			return nil, err
		}
		return &response, nil
	})
	if err != nil {
		return nil, interceptError("Failed to execute command: ", err)
	}
	return result, nil
}

// CodeRun executes a code snippet using the workspace's code toolbox. The
// snippet is wrapped into a shell command for the toolbox's language and
// run like any other command.
func (p *Process) CodeRun(ctx context.Context, code string, params *CodeRunParams) (*ExecuteResponse, error) {
	command := p.toolbox.GetRunCommand(code, params)
	result, err := p.Exec(ctx, command, nil)
	if err != nil {
		return nil, interceptError("Failed to run code: ", err)
	}
	return result, nil
}
