package daytona

import (
	"context"
	"net/http"
	"net/url"
)

// LspLanguageID identifies a language server type.
type LspLanguageID string

const (
	LspLanguageIDPython     LspLanguageID = "python"
	LspLanguageIDTypeScript LspLanguageID = "typescript"
	LspLanguageIDJavaScript LspLanguageID = "javascript"
)

// Position is a zero-based line/character position in a text document.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// LspSymbol is one symbol reported by a language server.
type LspSymbol struct {
	Name     string `json:"name"`
	Kind     int    `json:"kind"`
	Location string `json:"location"`
}

// CompletionItem is one completion suggestion.
type CompletionItem struct {
	Label         string `json:"label"`
	Kind          int    `json:"kind,omitempty"`
	Detail        string `json:"detail,omitempty"`
	Documentation string `json:"documentation,omitempty"`
	SortText      string `json:"sortText,omitempty"`
	FilterText    string `json:"filterText,omitempty"`
	InsertText    string `json:"insertText,omitempty"`
}

// CompletionList is the result of a completion request.
type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

// LspServer drives one language server instance inside a workspace. Start
// must be called before any other method, and Stop when the server is no
// longer needed.
type LspServer struct {
	languageID    LspLanguageID
	pathToProject string
	workspaceID   string
	client        *apiClient
}

// lspServerRequest identifies a server instance on the wire.
type lspServerRequest struct {
	LanguageID    string `json:"languageId"`
	PathToProject string `json:"pathToProject"`
}

// lspDocumentRequest identifies a document within a server instance.
type lspDocumentRequest struct {
	LanguageID    string `json:"languageId"`
	PathToProject string `json:"pathToProject"`
	URI           string `json:"uri"`
}

func (s *LspServer) serverRequest() lspServerRequest {
	return lspServerRequest{
		LanguageID:    string(s.languageID),
		PathToProject: s.pathToProject,
	}
}

func (s *LspServer) documentRequest(path string) lspDocumentRequest {
	return lspDocumentRequest{
		LanguageID:    string(s.languageID),
		PathToProject: s.pathToProject,
		URI:           "file://" + path,
	}
}

// Start initializes the language server for the project.
func (s *LspServer) Start(ctx context.Context) error {
	err := s.client.doRequest(ctx, http.MethodPost,
		toolboxPath(s.workspaceID, "lsp", "start"), s.serverRequest(), nil)
	return interceptError("Failed to start LSP server: ", err)
}

// Stop shuts the language server down and frees its resources.
func (s *LspServer) Stop(ctx context.Context) error {
	err := s.client.doRequest(ctx, http.MethodPost,
		toolboxPath(s.workspaceID, "lsp", "stop"), s.serverRequest(), nil)
	return interceptError("Failed to stop LSP server: ", err)
}

// DidOpen tells the server a file was opened, enabling diagnostics and
// completions for it.
func (s *LspServer) DidOpen(ctx context.Context, path string) error {
	err := s.client.doRequest(ctx, http.MethodPost,
		toolboxPath(s.workspaceID, "lsp", "did-open"), s.documentRequest(path), nil)
	return interceptError("Failed to open file: ", err)
}

// DidClose tells the server a file was closed.
func (s *LspServer) DidClose(ctx context.Context, path string) error {
	err := s.client.doRequest(ctx, http.MethodPost,
		toolboxPath(s.workspaceID, "lsp", "did-close"), s.documentRequest(path), nil)
	return interceptError("Failed to close file: ", err)
}

// DocumentSymbols returns the symbols defined in a document.
func (s *LspServer) DocumentSymbols(ctx context.Context, path string) ([]LspSymbol, error) {
	q := url.Values{}
	q.Set("languageId", string(s.languageID))
	q.Set("pathToProject", s.pathToProject)
	q.Set("uri", "file://"+path)
	var symbols []LspSymbol
	err := s.client.doRequest(ctx, http.MethodGet,
		toolboxPath(s.workspaceID, "lsp", "document-symbols")+"?"+q.Encode(), nil, &symbols)
	if err != nil {
		return nil, interceptError("Failed to get symbols from document: ", err)
	}
	return symbols, nil
}

// WorkspaceSymbols searches all files in the workspace for symbols matching
// the query.
func (s *LspServer) WorkspaceSymbols(ctx context.Context, query string) ([]LspSymbol, error) {
	q := url.Values{}
	q.Set("languageId", string(s.languageID))
	q.Set("pathToProject", s.pathToProject)
	q.Set("query", query)
	var symbols []LspSymbol
	err := s.client.doRequest(ctx, http.MethodGet,
		toolboxPath(s.workspaceID, "lsp", "workspace-symbols")+"?"+q.Encode(), nil, &symbols)
	if err != nil {
		return nil, interceptError("Failed to get symbols from workspace: ", err)
	}
	return symbols, nil
}

// Completions returns completion suggestions at a position in a file.
func (s *LspServer) Completions(ctx context.Context, path string, position Position) (*CompletionList, error) {
	body := struct {
		lspDocumentRequest
		Position Position `json:"position"`
	}{
		lspDocumentRequest: s.documentRequest(path),
		Position:           position,
	}
	var completions CompletionList
	err := s.client.doRequest(ctx, http.MethodPost,
		toolboxPath(s.workspaceID, "lsp", "completions"), body, &completions)
	if err != nil {
		return nil, interceptError("Failed to get completions: ", err)
	}
	return &completions, nil
}
