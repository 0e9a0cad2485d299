package daytona

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"time"
)

// FileInfo describes a file or directory inside a workspace.
type FileInfo struct {
	Name        string    `json:"name"`
	IsDir       bool      `json:"isDir"`
	Size        int64     `json:"size"`
	Mode        string    `json:"mode"`
	ModTime     time.Time `json:"modTime"`
	Permissions string    `json:"permissions"`
	Owner       string    `json:"owner"`
	Group       string    `json:"group"`
}

// Match is one content-search hit inside a file.
type Match struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Content string `json:"content"`
}

// ReplaceResult reports the outcome of a replace operation on one file.
type ReplaceResult struct {
	File    string `json:"file"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SearchFilesResponse lists paths whose names matched a search pattern.
type SearchFilesResponse struct {
	Files []string `json:"files"`
}

// FileSystem provides filesystem operations inside one workspace. All paths
// are absolute paths within the workspace.
type FileSystem struct {
	workspaceID string
	client      *apiClient
}

// CreateFolder creates a directory with the given octal mode, e.g. "755".
func (f *FileSystem) CreateFolder(ctx context.Context, path, mode string) error {
	q := url.Values{}
	q.Set("path", path)
	q.Set("mode", mode)
	err := f.client.doRequest(ctx, http.MethodPost,
		toolboxPath(f.workspaceID, "files", "folder")+"?"+q.Encode(), nil, nil)
	return interceptError("Failed to create folder: ", err)
}

// DeleteFile permanently deletes a file.
func (f *FileSystem) DeleteFile(ctx context.Context, path string) error {
	q := url.Values{}
	q.Set("path", path)
	err := f.client.doRequest(ctx, http.MethodDelete,
		toolboxPath(f.workspaceID, "files")+"?"+q.Encode(), nil, nil)
	return interceptError("Failed to delete file: ", err)
}

// DownloadFile returns the raw contents of a file.
func (f *FileSystem) DownloadFile(ctx context.Context, path string) ([]byte, error) {
	q := url.Values{}
	q.Set("path", path)
	content, err := f.client.doRequestRaw(ctx, http.MethodGet,
		toolboxPath(f.workspaceID, "files", "download")+"?"+q.Encode(), nil, "")
	if err != nil {
		return nil, interceptError("Failed to download file: ", err)
	}
	return content, nil
}

// UploadFile writes content to a file, overwriting any existing file at
// that path. The parent directory must exist.
func (f *FileSystem) UploadFile(ctx context.Context, path string, content []byte) error {
	q := url.Values{}
	q.Set("path", path)
	_, err := f.client.doRequestRaw(ctx, http.MethodPost,
		toolboxPath(f.workspaceID, "files", "upload")+"?"+q.Encode(),
		bytes.NewReader(content), "application/octet-stream")
	return interceptError("Failed to upload file: ", err)
}

// ListFiles lists the contents of a directory.
func (f *FileSystem) ListFiles(ctx context.Context, path string) ([]FileInfo, error) {
	q := url.Values{}
	q.Set("path", path)
	var files []FileInfo
	err := f.client.doRequest(ctx, http.MethodGet,
		toolboxPath(f.workspaceID, "files")+"?"+q.Encode(), nil, &files)
	if err != nil {
		return nil, interceptError("Failed to list files: ", err)
	}
	return files, nil
}

// MoveFiles moves or renames a file or directory. The destination's parent
// directory must exist.
func (f *FileSystem) MoveFiles(ctx context.Context, source, destination string) error {
	q := url.Values{}
	q.Set("source", source)
	q.Set("destination", destination)
	err := f.client.doRequest(ctx, http.MethodPost,
		toolboxPath(f.workspaceID, "files", "move")+"?"+q.Encode(), nil, nil)
	return interceptError("Failed to move files: ", err)
}

// FindFiles searches file contents for a pattern, like grep. Directories
// are searched recursively.
func (f *FileSystem) FindFiles(ctx context.Context, path, pattern string) ([]Match, error) {
	q := url.Values{}
	q.Set("path", path)
	q.Set("pattern", pattern)
	var matches []Match
	err := f.client.doRequest(ctx, http.MethodGet,
		toolboxPath(f.workspaceID, "files", "find")+"?"+q.Encode(), nil, &matches)
	if err != nil {
		return nil, interceptError("Failed to find files: ", err)
	}
	return matches, nil
}

// ReplaceInFiles replaces pattern with newValue across the given files and
// reports the per-file outcome.
func (f *FileSystem) ReplaceInFiles(ctx context.Context, files []string, pattern, newValue string) ([]ReplaceResult, error) {
	body := struct {
		Files    []string `json:"files"`
		Pattern  string   `json:"pattern"`
		NewValue string   `json:"newValue"`
	}{Files: files, Pattern: pattern, NewValue: newValue}

	var results []ReplaceResult
	err := f.client.doRequest(ctx, http.MethodPost,
		toolboxPath(f.workspaceID, "files", "replace"), body, &results)
	if err != nil {
		return nil, interceptError("Failed to replace in files: ", err)
	}
	return results, nil
}

// SearchFiles finds files and directories whose names match a glob pattern.
func (f *FileSystem) SearchFiles(ctx context.Context, path, pattern string) (*SearchFilesResponse, error) {
	q := url.Values{}
	q.Set("path", path)
	q.Set("pattern", pattern)
	var result SearchFilesResponse
	err := f.client.doRequest(ctx, http.MethodGet,
		toolboxPath(f.workspaceID, "files", "search")+"?"+q.Encode(), nil, &result)
	if err != nil {
		return nil, interceptError("Failed to search files: ", err)
	}
	return &result, nil
}

// GetFileInfo returns metadata about a file or directory.
func (f *FileSystem) GetFileInfo(ctx context.Context, path string) (*FileInfo, error) {
	q := url.Values{}
	q.Set("path", path)
	var info FileInfo
	err := f.client.doRequest(ctx, http.MethodGet,
		toolboxPath(f.workspaceID, "files", "info")+"?"+q.Encode(), nil, &info)
	if err != nil {
		return nil, interceptError("Failed to get file info: ", err)
	}
	return &info, nil
}

// SetFilePermissions changes a file's mode and ownership. Empty fields are
// left unchanged.
func (f *FileSystem) SetFilePermissions(ctx context.Context, path, mode, owner, group string) error {
	q := url.Values{}
	q.Set("path", path)
	if mode != "" {
		q.Set("mode", mode)
	}
	if owner != "" {
		q.Set("owner", owner)
	}
	if group != "" {
		q.Set("group", group)
	}
	err := f.client.doRequest(ctx, http.MethodPost,
		toolboxPath(f.workspaceID, "files", "permissions")+"?"+q.Encode(), nil, nil)
	return interceptError("Failed to set file permissions: ", err)
}
