package daytona

import (
	"context"
	"net/http"
	"net/url"
)

// GitStatus is the current state of a git repository in a workspace.
type GitStatus struct {
	CurrentBranch   string          `json:"currentBranch"`
	Ahead           int             `json:"ahead"`
	Behind          int             `json:"behind"`
	BranchPublished bool            `json:"branchPublished"`
	FileStatus      []GitFileStatus `json:"fileStatus"`
}

// GitFileStatus is the staged/worktree status of one file.
type GitFileStatus struct {
	Name     string `json:"name"`
	Staging  string `json:"staging"`
	Worktree string `json:"worktree"`
	Extra    string `json:"extra"`
}

// ListBranchResponse lists the branches of a repository.
type ListBranchResponse struct {
	Branches []string `json:"branches"`
}

// GitCloneOptions carries the optional settings for cloning a repository.
type GitCloneOptions struct {
	// Branch to check out after cloning.
	Branch string
	// CommitID to check out after cloning, overriding Branch.
	CommitID string
	// Username and Password authenticate against the remote.
	Username string
	Password string
}

// Git provides git operations inside one workspace. Repository paths are
// absolute paths within the workspace.
type Git struct {
	workspaceID string
	client      *apiClient
}

// Clone clones a repository to the given path.
func (g *Git) Clone(ctx context.Context, repoURL, path string, opts *GitCloneOptions) error {
	if opts == nil {
		opts = &GitCloneOptions{}
	}
	body := struct {
		URL      string `json:"url"`
		Path     string `json:"path"`
		Branch   string `json:"branch,omitempty"`
		CommitID string `json:"commitId,omitempty"`
		Username string `json:"username,omitempty"`
		Password string `json:"password,omitempty"`
	}{
		URL:      repoURL,
		Path:     path,
		Branch:   opts.Branch,
		CommitID: opts.CommitID,
		Username: opts.Username,
		Password: opts.Password,
	}
	err := g.client.doRequest(ctx, http.MethodPost,
		toolboxPath(g.workspaceID, "git", "clone"), body, nil)
	return interceptError("Failed to clone repository: ", err)
}

// Add stages files for the next commit.
func (g *Git) Add(ctx context.Context, path string, files []string) error {
	body := struct {
		Path  string   `json:"path"`
		Files []string `json:"files"`
	}{Path: path, Files: files}
	err := g.client.doRequest(ctx, http.MethodPost,
		toolboxPath(g.workspaceID, "git", "add"), body, nil)
	return interceptError("Failed to add files: ", err)
}

// Commit commits staged changes.
func (g *Git) Commit(ctx context.Context, path, message, author, email string) error {
	body := struct {
		Path    string `json:"path"`
		Message string `json:"message"`
		Author  string `json:"author"`
		Email   string `json:"email"`
	}{Path: path, Message: message, Author: author, Email: email}
	err := g.client.doRequest(ctx, http.MethodPost,
		toolboxPath(g.workspaceID, "git", "commit"), body, nil)
	return interceptError("Failed to commit changes: ", err)
}

// Push pushes local commits to the remote. Credentials are optional for
// public remotes.
func (g *Git) Push(ctx context.Context, path, username, password string) error {
	body := struct {
		Path     string `json:"path"`
		Username string `json:"username,omitempty"`
		Password string `json:"password,omitempty"`
	}{Path: path, Username: username, Password: password}
	err := g.client.doRequest(ctx, http.MethodPost,
		toolboxPath(g.workspaceID, "git", "push"), body, nil)
	return interceptError("Failed to push changes: ", err)
}

// Pull pulls changes from the remote. Credentials are optional for public
// remotes.
func (g *Git) Pull(ctx context.Context, path, username, password string) error {
	body := struct {
		Path     string `json:"path"`
		Username string `json:"username,omitempty"`
		Password string `json:"password,omitempty"`
	}{Path: path, Username: username, Password: password}
	err := g.client.doRequest(ctx, http.MethodPost,
		toolboxPath(g.workspaceID, "git", "pull"), body, nil)
	return interceptError("Failed to pull changes: ", err)
}

// Status returns the repository status at path.
func (g *Git) Status(ctx context.Context, path string) (*GitStatus, error) {
	q := url.Values{}
	q.Set("path", path)
	var status GitStatus
	err := g.client.doRequest(ctx, http.MethodGet,
		toolboxPath(g.workspaceID, "git", "status")+"?"+q.Encode(), nil, &status)
	if err != nil {
		return nil, interceptError("Failed to get status: ", err)
	}
	return &status, nil
}

// Branches lists the branches of the repository at path.
func (g *Git) Branches(ctx context.Context, path string) (*ListBranchResponse, error) {
	q := url.Values{}
	q.Set("path", path)
	var branches ListBranchResponse
	err := g.client.doRequest(ctx, http.MethodGet,
		toolboxPath(g.workspaceID, "git", "branches")+"?"+q.Encode(), nil, &branches)
	if err != nil {
		return nil, interceptError("Failed to list branches: ", err)
	}
	return &branches, nil
}
