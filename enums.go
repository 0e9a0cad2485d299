package daytona

// WorkspaceState is the lifecycle state reported by the Daytona server.
type WorkspaceState string

const (
	WorkspaceStateCreating     WorkspaceState = "creating"
	WorkspaceStateRestoring    WorkspaceState = "restoring"
	WorkspaceStateDestroyed    WorkspaceState = "destroyed"
	WorkspaceStateDestroying   WorkspaceState = "destroying"
	WorkspaceStateStarted      WorkspaceState = "started"
	WorkspaceStateStopped      WorkspaceState = "stopped"
	WorkspaceStateStarting     WorkspaceState = "starting"
	WorkspaceStateStopping     WorkspaceState = "stopping"
	WorkspaceStateResizing     WorkspaceState = "resizing"
	WorkspaceStateError        WorkspaceState = "error"
	WorkspaceStateUnknown      WorkspaceState = "unknown"
	WorkspaceStatePullingImage WorkspaceState = "pulling_image"
)

// ParseWorkspaceState maps a raw state string onto the closed enum. Any
// value the SDK does not recognize, including the empty string, parses to
// WorkspaceStateUnknown.
func ParseWorkspaceState(s string) WorkspaceState {
	switch WorkspaceState(s) {
	case WorkspaceStateCreating, WorkspaceStateRestoring, WorkspaceStateDestroyed,
		WorkspaceStateDestroying, WorkspaceStateStarted, WorkspaceStateStopped,
		WorkspaceStateStarting, WorkspaceStateStopping, WorkspaceStateResizing,
		WorkspaceStateError, WorkspaceStatePullingImage:
		return WorkspaceState(s)
	default:
		return WorkspaceStateUnknown
	}
}

// CodeLanguage selects the code toolbox used to run snippets inside a
// workspace.
type CodeLanguage string

const (
	CodeLanguagePython     CodeLanguage = "python"
	CodeLanguageTypeScript CodeLanguage = "typescript"
	CodeLanguageJavaScript CodeLanguage = "javascript"
)

// ParseCodeLanguage maps a raw language string onto the closed enum. The
// second return value is false for unrecognized values.
func ParseCodeLanguage(s string) (CodeLanguage, bool) {
	switch CodeLanguage(s) {
	case CodeLanguagePython, CodeLanguageTypeScript, CodeLanguageJavaScript:
		return CodeLanguage(s), true
	default:
		return "", false
	}
}

// TargetRegion is the region a workspace is provisioned in.
type TargetRegion string

const (
	TargetRegionEU    TargetRegion = "eu"
	TargetRegionUS    TargetRegion = "us"
	TargetRegionAsia  TargetRegion = "asia"
	TargetRegionLocal TargetRegion = "local"
)
