package server

import (
	"strings"

	"github.com/temirov/model-platform/internal/apperrors"
	"github.com/temirov/model-platform/internal/upstream"
)

const (
	// DefaultPort is the TCP port used by the HTTP server when no explicit port is provided.
	DefaultPort = 8080
	// DefaultWorkers is the number of worker goroutines that run upstream validations.
	DefaultWorkers = 4
	// DefaultQueueSize is the capacity of the validation queue.
	DefaultQueueSize = 100
	// DefaultRequestTimeoutSeconds bounds how long a client waits for a validation.
	DefaultRequestTimeoutSeconds = 30
)

// Configuration captures runtime settings for the HTTP server and upstream requests.
type Configuration struct {
	ServiceSecret         string
	Port                  int
	LogLevel              string
	WorkerCount           int
	QueueSize             int
	RequestTimeoutSeconds int
	// HTTPClient performs upstream requests; nil selects http.DefaultClient.
	HTTPClient upstream.HTTPDoer
	// Endpoints holds per-platform base URLs; nil selects the defaults.
	Endpoints *upstream.Endpoints
}

// validateConfig confirms the presence of required configuration values.
func validateConfig(config Configuration) error {
	if strings.TrimSpace(config.ServiceSecret) == "" {
		return apperrors.ErrMissingServiceSecret
	}
	return nil
}

// withDefaults replaces non-positive tunables with their defaults.
func withDefaults(config Configuration) Configuration {
	if config.Port <= 0 {
		config.Port = DefaultPort
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultWorkers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultQueueSize
	}
	if config.RequestTimeoutSeconds <= 0 {
		config.RequestTimeoutSeconds = DefaultRequestTimeoutSeconds
	}
	if config.Endpoints == nil {
		config.Endpoints = upstream.NewEndpoints()
	}
	return config
}
