package daytona

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
)

// Session is a long-lived shell session in a workspace. Commands executed
// in the same session share state (working directory, environment,
// background processes).
type Session struct {
	SessionID string           `json:"sessionId"`
	Commands  []SessionCommand `json:"commands"`
}

// SessionCommand is one command executed in a session. ExitCode is nil
// while the command is still running.
type SessionCommand struct {
	ID       string `json:"id"`
	Command  string `json:"command"`
	ExitCode *int   `json:"exitCode,omitempty"`
}

// SessionExecuteRequest starts a command in a session.
type SessionExecuteRequest struct {
	Command string `json:"command"`
	// RunAsync returns immediately instead of waiting for the command to
	// finish; poll GetSession or stream logs to follow it.
	RunAsync bool `json:"runAsync,omitempty"`
}

// SessionExecuteResponse identifies the started command. Output and
// ExitCode are only set for synchronous executions.
type SessionExecuteResponse struct {
	CommandID string `json:"cmdId"`
	Output    string `json:"output,omitempty"`
	ExitCode  *int   `json:"exitCode,omitempty"`
}

// CreateSession creates a session with the caller-chosen id.
func (p *Process) CreateSession(ctx context.Context, sessionID string) error {
	body := struct {
		SessionID string `json:"sessionId"`
	}{SessionID: sessionID}
	err := p.client.doRequest(ctx, http.MethodPost,
		toolboxPath(p.workspaceID, "process", "session"), body, nil)
	return interceptError("Failed to create session: ", err)
}

// GetSession returns a session and its command history.
func (p *Process) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	var session Session
	err := p.client.doRequest(ctx, http.MethodGet,
		toolboxPath(p.workspaceID, "process", "session", sessionID), nil, &session)
	if err != nil {
		return nil, interceptError("Failed to get session: ", err)
	}
	return &session, nil
}

// ListSessions returns all sessions in the workspace.
func (p *Process) ListSessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	err := p.client.doRequest(ctx, http.MethodGet,
		toolboxPath(p.workspaceID, "process", "session"), nil, &sessions)
	if err != nil {
		return nil, interceptError("Failed to list sessions: ", err)
	}
	return sessions, nil
}

// ExecuteSessionCommand runs a command in a session.
func (p *Process) ExecuteSessionCommand(ctx context.Context, sessionID string, req SessionExecuteRequest) (*SessionExecuteResponse, error) {
	var response SessionExecuteResponse
	err := p.client.doRequest(ctx, http.MethodPost,
		toolboxPath(p.workspaceID, "process", "session", sessionID, "exec"), req, &response)
	if err != nil {
		return nil, interceptError("Failed to execute session command: ", err)
	}
	return &response, nil
}

// GetSessionCommandLogs returns the accumulated output of a session
// command.
func (p *Process) GetSessionCommandLogs(ctx context.Context, sessionID, commandID string) (string, error) {
	logs, err := p.client.doRequestRaw(ctx, http.MethodGet,
		toolboxPath(p.workspaceID, "process", "session", sessionID, "command", commandID, "logs"), nil, "")
	if err != nil {
		return "", interceptError("Failed to get session command logs: ", err)
	}
	return string(logs), nil
}

// DeleteSession terminates a session and its commands.
func (p *Process) DeleteSession(ctx context.Context, sessionID string) error {
	err := p.client.doRequest(ctx, http.MethodDelete,
		toolboxPath(p.workspaceID, "process", "session", sessionID), nil, nil)
	return interceptError("Failed to delete session: ", err)
}

// StreamSessionCommandLogs streams the live output of a session command
// over a websocket. Chunks arrive on the returned data channel; the error
// channel receives at most one error. Both channels close when the stream
// ends or ctx is cancelled.
func (p *Process) StreamSessionCommandLogs(ctx context.Context, sessionID, commandID string) (<-chan []byte, <-chan error) {
	dataCh := make(chan []byte, 100)
	errCh := make(chan error, 1)

	q := url.Values{}
	q.Set("follow", "true")
	streamURL := p.client.wsURL(
		toolboxPath(p.workspaceID, "process", "session", sessionID, "command", commandID, "logs") + "?" + q.Encode())

	go func() {
		defer close(dataCh)
		defer close(errCh)

		header := http.Header{}
		header.Set("Authorization", "Bearer "+p.client.apiKey)

		conn, resp, err := websocket.DefaultDialer.DialContext(ctx, streamURL, header)
		if err != nil {
			if resp != nil {
				errCh <- interceptError("Failed to stream session command logs: ",
					&apiError{StatusCode: resp.StatusCode})
				return
			}
			errCh <- interceptError("Failed to stream session command logs: ", err)
			return
		}
		defer conn.Close()

		// Unblock ReadMessage when the caller gives up.
		stop := make(chan struct{})
		defer close(stop)
		go func() {
			select {
			case <-ctx.Done():
				conn.Close()
			case <-stop:
			}
		}()

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					errCh <- interceptError("Failed to stream session command logs: ", err)
				}
				return
			}
			select {
			case dataCh <- message:
			case <-ctx.Done():
				return
			}
		}
	}()

	return dataCh, errCh
}
