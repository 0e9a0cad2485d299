package daytona

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// WorkspaceResources is the resource allocation requested when creating a
// workspace. Zero-value fields are omitted and left to the server defaults.
type WorkspaceResources struct {
	// CPU is the number of CPU cores.
	CPU int `json:"cpu,omitempty"`
	// Memory is the amount of memory in MB.
	Memory int `json:"memory,omitempty"`
	// Disk is the amount of disk space in GB.
	Disk int `json:"disk,omitempty"`
	// GPU is the number of GPUs.
	GPU int `json:"gpu,omitempty"`
}

// CreateWorkspaceParams contains parameters for creating a workspace.
type CreateWorkspaceParams struct {
	// Language selects the code toolbox attached to the workspace.
	Language CodeLanguage
	// ID is the workspace id; generated when empty.
	ID string
	// Name defaults to the workspace id.
	Name string
	// Image is the container image; server default when empty.
	Image string
	// OSUser is the user commands run as; defaults to "daytona".
	OSUser string
	// EnvVars are set in every process started in the workspace.
	EnvVars map[string]string
	// Labels are arbitrary key-value metadata.
	Labels map[string]string
	// Public exposes preview links without authentication.
	Public bool
	// Target overrides the client's default provisioning region.
	Target TargetRegion
	// Resources requests a specific allocation.
	Resources *WorkspaceResources
	// Timeout bounds the create-and-wait-until-started operation. Nil
	// means DefaultTimeout, zero means wait without a deadline.
	Timeout *time.Duration
	// AutoStopInterval is the idle auto-stop interval in minutes. Nil
	// keeps the server default, zero disables auto-stop.
	AutoStopInterval *int
}

// AllocatedResources is the resource allocation reported for a running
// workspace.
type AllocatedResources struct {
	CPU    string `json:"cpu"`
	GPU    string `json:"gpu,omitempty"`
	Memory string `json:"memory"`
	Disk   string `json:"disk"`
}

// WorkspaceInfo is a point-in-time snapshot of a workspace's remote state.
// It is rebuilt wholesale from the server response on every refresh.
type WorkspaceInfo struct {
	ID                     string             `json:"id"`
	Name                   string             `json:"name"`
	Image                  string             `json:"image"`
	User                   string             `json:"user"`
	Env                    map[string]string  `json:"env"`
	Labels                 map[string]string  `json:"labels"`
	Public                 bool               `json:"public"`
	Target                 TargetRegion       `json:"target"`
	Resources              AllocatedResources `json:"resources"`
	State                  WorkspaceState     `json:"state"`
	ErrorReason            string             `json:"errorReason,omitempty"`
	SnapshotState          string             `json:"snapshotState,omitempty"`
	SnapshotStateCreatedAt *time.Time         `json:"snapshotStateCreatedAt,omitempty"`
	NodeDomain             string             `json:"nodeDomain"`
	Region                 string             `json:"region"`
	Class                  string             `json:"class"`
	UpdatedAt              string             `json:"updatedAt"`
	LastSnapshot           string             `json:"lastSnapshot,omitempty"`
	AutoStopInterval       int                `json:"autoStopInterval"`
	Created                string             `json:"created"`
}

// apiWorkspace is the wire representation of a workspace record.
type apiWorkspace struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Image  string            `json:"image"`
	User   string            `json:"user"`
	Env    map[string]string `json:"env"`
	Labels map[string]string `json:"labels"`
	Public bool              `json:"public"`
	Target string            `json:"target"`
	Info   *apiWorkspaceMeta `json:"info,omitempty"`
}

// apiWorkspaceMeta carries the loosely-typed provider metadata blob the
// server embeds in workspace records.
type apiWorkspaceMeta struct {
	Created          string `json:"created"`
	ProviderMetadata string `json:"providerMetadata"`
}

// createWorkspaceRequest is the wire representation of a create call.
type createWorkspaceRequest struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Image            string            `json:"image,omitempty"`
	User             string            `json:"user"`
	Env              map[string]string `json:"env"`
	Labels           map[string]string `json:"labels,omitempty"`
	Public           bool              `json:"public,omitempty"`
	Target           string            `json:"target"`
	AutoStopInterval *int              `json:"autoStopInterval,omitempty"`
	CPU              int               `json:"cpu,omitempty"`
	Memory           int               `json:"memory,omitempty"`
	Disk             int               `json:"disk,omitempty"`
	GPU              int               `json:"gpu,omitempty"`
}

// providerMetadata parses the embedded metadata blob. A missing or
// malformed blob yields an empty map, so every lookup falls back to its
// documented default.
func (w *apiWorkspace) providerMetadata() map[string]interface{} {
	meta := map[string]interface{}{}
	if w.Info == nil || w.Info.ProviderMetadata == "" {
		return meta
	}
	// Ignore parse failures: the blob is advisory and absent fields
	// default below.
	_ = json.Unmarshal([]byte(w.Info.ProviderMetadata), &meta)
	return meta
}

// state extracts the lifecycle state from the provider metadata. A missing
// or unrecognized value reports WorkspaceStateUnknown.
func (w *apiWorkspace) state() WorkspaceState {
	return ParseWorkspaceState(metaString(w.providerMetadata(), "state", ""))
}

// toWorkspaceInfo converts a wire record into a snapshot, applying the
// documented defaults for absent metadata fields.
func toWorkspaceInfo(w *apiWorkspace) WorkspaceInfo {
	meta := w.providerMetadata()

	resData := meta
	if nested, ok := meta["resources"].(map[string]interface{}); ok {
		resData = nested
	}
	resources := AllocatedResources{
		CPU:    metaString(resData, "cpu", "1"),
		GPU:    metaString(resData, "gpu", ""),
		Memory: metaString(resData, "memory", "2") + "Gi",
		Disk:   metaString(resData, "disk", "10") + "Gi",
	}

	var snapshotCreatedAt *time.Time
	if raw := metaString(meta, "snapshotStateCreatedAt", ""); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			snapshotCreatedAt = &t
		}
	}

	created := ""
	if w.Info != nil {
		created = w.Info.Created
	}

	env := w.Env
	if env == nil {
		env = map[string]string{}
	}
	labels := w.Labels
	if labels == nil {
		labels = map[string]string{}
	}

	return WorkspaceInfo{
		ID:                     w.ID,
		Name:                   w.Name,
		Image:                  w.Image,
		User:                   w.User,
		Env:                    env,
		Labels:                 labels,
		Public:                 w.Public,
		Target:                 TargetRegion(w.Target),
		Resources:              resources,
		State:                  ParseWorkspaceState(metaString(meta, "state", "")),
		ErrorReason:            metaString(meta, "errorReason", ""),
		SnapshotState:          metaString(meta, "snapshotState", ""),
		SnapshotStateCreatedAt: snapshotCreatedAt,
		NodeDomain:             metaString(meta, "nodeDomain", ""),
		Region:                 metaString(meta, "region", ""),
		Class:                  metaString(meta, "class", ""),
		UpdatedAt:              metaString(meta, "updatedAt", ""),
		LastSnapshot:           metaString(meta, "lastSnapshot", ""),
		AutoStopInterval:       metaInt(meta, "autoStopInterval", 0),
		Created:                created,
	}
}

// metaString reads a loosely-typed metadata value as a string. Numbers lose
// any trailing ".0"; nil and missing values yield the default.
func metaString(meta map[string]interface{}, key, def string) string {
	v, ok := meta[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return def
		}
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// metaInt reads a loosely-typed metadata value as an int.
func metaInt(meta map[string]interface{}, key string, def int) int {
	v, ok := meta[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
	}
	return def
}
