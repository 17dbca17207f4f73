// Package config loads DataCensus configuration. The loaded struct is passed
// explicitly into clients, the analyzer and the server; nothing reads ambient
// process state after startup, so tests can inject fake endpoints.
package config

import (
	"fmt"
	"time"
)

// Config file names looked up in the working directory.
const (
	ConfigFileName    = "datacensus.yaml"
	ConfigFileNameAlt = "datacensus.yml"
)

// Defaults.
const (
	DefaultBackendURL     = "http://localhost:8001"
	DefaultPort           = 8765
	DefaultHost           = ""
	DefaultRequestTimeout = 30 // seconds
	DefaultDatasetID      = "8dbv-wsjq"
)

// Config holds every tunable of the application.
type Config struct {
	// BackendURL is the base URL of the dataset scoring backend.
	BackendURL string `koanf:"backend_url"`

	// AgentWebhook is the narrative (calification) agent endpoint.
	AgentWebhook string `koanf:"agent_webhook"`

	// SearchWebhook is the conversational dataset search agent endpoint.
	SearchWebhook string `koanf:"search_webhook"`

	// RequestTimeoutSeconds bounds each remote call.
	RequestTimeoutSeconds int `koanf:"request_timeout"`

	// Host and Port for the dashboard server.
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// DefaultDatasetID pre-fills the dataset input on the dashboard.
	DefaultDatasetID string `koanf:"default_dataset_id"`

	Verbose bool `koanf:"verbose"`
}

// RequestTimeout returns the per-call timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend_url is required")
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %d", c.RequestTimeoutSeconds)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	return nil
}
