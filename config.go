package daytona

import (
	"net/http"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// Config holds the settings needed to talk to a Daytona server. Zero-value
// fields are filled in from the process environment, so an empty Config (or
// a nil one passed to New) configures the client entirely from
// DAYTONA_API_KEY, DAYTONA_SERVER_URL and DAYTONA_TARGET.
type Config struct {
	// APIKey authenticates every request as a bearer token.
	APIKey string
	// ServerURL is the base URL of the Daytona server.
	ServerURL string
	// Target is the default region new workspaces are provisioned in.
	Target TargetRegion

	// HTTPClient overrides the transport used for API calls.
	HTTPClient *http.Client
	// Logger receives debug output for remote calls and lifecycle polling.
	// Nil means no logging.
	Logger *zap.Logger
}

// envSettings mirrors the environment variables the SDK reads, in the shape
// envconfig expects.
type envSettings struct {
	APIKey    string `envconfig:"DAYTONA_API_KEY"`
	ServerURL string `envconfig:"DAYTONA_SERVER_URL"`
	Target    string `envconfig:"DAYTONA_TARGET" default:"local"`
}

// resolveConfig merges an optional explicit config with the environment.
// Explicit values win over environment values. It fails when the API key or
// server URL is still empty after resolution.
func resolveConfig(explicit *Config) (Config, error) {
	var env envSettings
	if err := envconfig.Process("", &env); err != nil {
		return Config{}, &Error{Kind: KindMissingCredentials, Message: "failed to read environment configuration: " + err.Error()}
	}

	resolved := Config{
		APIKey:    env.APIKey,
		ServerURL: env.ServerURL,
		Target:    TargetRegion(env.Target),
	}
	if explicit != nil {
		if explicit.APIKey != "" {
			resolved.APIKey = explicit.APIKey
		}
		if explicit.ServerURL != "" {
			resolved.ServerURL = explicit.ServerURL
		}
		if explicit.Target != "" {
			resolved.Target = explicit.Target
		}
		resolved.HTTPClient = explicit.HTTPClient
		resolved.Logger = explicit.Logger
	}

	if resolved.Target == "" {
		resolved.Target = TargetRegionLocal
	}
	if resolved.APIKey == "" {
		return Config{}, &Error{Kind: KindMissingCredentials, Message: "API key is required"}
	}
	if resolved.ServerURL == "" {
		return Config{}, &Error{Kind: KindMissingCredentials, Message: "Server URL is required"}
	}
	return resolved, nil
}
