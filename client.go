package daytona

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// apiClient is the shared HTTP transport. It is constructed once by New and
// referenced read-only by every workspace handle and sub-client.
type apiClient struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	log        *zap.Logger
}

func newAPIClient(cfg Config) *apiClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// No client-level timeout: per-operation deadlines come from the
		// request context.
		httpClient = &http.Client{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &apiClient{
		serverURL:  strings.TrimRight(cfg.ServerURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		log:        log,
	}
}

// doRequest performs an HTTP request against the Daytona API. A non-2xx
// response surfaces as *apiError carrying the raw body; the error
// normalizer at the call site turns it into the caller-facing error.
func (c *apiClient) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.serverURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.log.Debug("daytona api request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.log.Debug("daytona api error response",
			zap.String("path", path), zap.Int("status", resp.StatusCode))
		return &apiError{StatusCode: resp.StatusCode, Body: respBody}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

// doRequestRaw is doRequest for endpoints that return unstructured bytes,
// such as file downloads.
func (c *apiClient) doRequestRaw(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	url := c.serverURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.log.Debug("daytona api request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, &apiError{StatusCode: resp.StatusCode, Body: respBody}
	}
	return respBody, nil
}

// wsURL rewrites the server base URL to its websocket scheme for streaming
// endpoints.
func (c *apiClient) wsURL(path string) string {
	base := c.serverURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + path
}

// workspacePath builds a workspace-management API path.
func workspacePath(segments ...string) string {
	return "/workspace" + joinSegments(segments)
}

// toolboxPath builds a toolbox API path scoped to one workspace.
func toolboxPath(workspaceID string, segments ...string) string {
	return "/workspace/" + workspaceID + "/toolbox" + joinSegments(segments)
}

func joinSegments(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	return "/" + strings.Join(segments, "/")
}
