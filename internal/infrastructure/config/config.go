// Package config loads gregify settings with Viper from TOML, environment
// variables and built-in defaults.
package config

import (
	"time"

	"github.com/bnema/gregify/internal/domain/entity"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Config represents the complete configuration for gregify.
type Config struct {
	// Suggestion controls the ghost-text pipeline.
	Suggestion SuggestionConfig `mapstructure:"suggestion" toml:"suggestion" json:"suggestion"`
	// Relay controls cross-context messaging.
	Relay RelayConfig `mapstructure:"relay" toml:"relay" json:"relay"`
	// Surface lists where the host page keeps its prompt input.
	Surface SurfaceConfig `mapstructure:"surface" toml:"surface" json:"surface"`
	// Injection controls externally triggered writes.
	Injection InjectionConfig `mapstructure:"injection" toml:"injection" json:"injection"`
	// Hosts restricts which pages receive enhanced prompts.
	Hosts HostsConfig `mapstructure:"hosts" toml:"hosts" json:"hosts"`
	// Backend is the prompt service reached from the background context.
	Backend  BackendConfig  `mapstructure:"backend" toml:"backend" json:"backend"`
	Database DatabaseConfig `mapstructure:"database" toml:"database" json:"database"`
	Logging  LoggingConfig  `mapstructure:"logging" toml:"logging" json:"logging"`
}

// SuggestionConfig controls debounce, threshold and the accept key.
type SuggestionConfig struct {
	Enabled bool `mapstructure:"enabled" toml:"enabled" json:"enabled"`
	// DebounceMs is the inactivity window before a request is issued.
	DebounceMs int `mapstructure:"debounce_ms" toml:"debounce_ms" json:"debounce_ms" jsonschema:"minimum=50,maximum=10000"`
	// MinLength is the minimum trimmed rune count that triggers a request.
	MinLength int `mapstructure:"min_length" toml:"min_length" json:"min_length" jsonschema:"minimum=1"`
	// AcceptKey is the key name that accepts a shown suggestion.
	AcceptKey string `mapstructure:"accept_key" toml:"accept_key" json:"accept_key"`
}

// Debounce returns the debounce window.
func (c SuggestionConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// RelayConfig bounds the wait for relay responses.
type RelayConfig struct {
	TimeoutMs int `mapstructure:"timeout_ms" toml:"timeout_ms" json:"timeout_ms" jsonschema:"minimum=1"`
}

// Timeout returns the response timeout.
func (c RelayConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// SurfaceConfig holds the ordered candidate list.
type SurfaceConfig struct {
	Candidates []entity.SurfaceCandidateSpec `mapstructure:"candidates" toml:"candidates" json:"candidates"`
	// DeepScan enables the structural fallback scan.
	DeepScan bool `mapstructure:"deep_scan" toml:"deep_scan" json:"deep_scan"`
}

// InjectionConfig controls injection and the fallback delivery path.
type InjectionConfig struct {
	AutoSubmit       bool     `mapstructure:"auto_submit" toml:"auto_submit" json:"auto_submit"`
	SubmitSelectors  []string `mapstructure:"submit_selectors" toml:"submit_selectors" json:"submit_selectors"`
	FallbackSelector string   `mapstructure:"fallback_selector" toml:"fallback_selector" json:"fallback_selector"`
}

// HostsConfig is the allow-list for enhanced prompt delivery.
type HostsConfig struct {
	Allow []string `mapstructure:"allow" toml:"allow" json:"allow"`
}

// BackendConfig configures the prompt service client.
type BackendConfig struct {
	BaseURL    string `mapstructure:"base_url" toml:"base_url" json:"base_url" jsonschema:"format=uri"`
	Model      string `mapstructure:"model" toml:"model" json:"model"`
	Role       string `mapstructure:"role" toml:"role" json:"role"`
	APIKey     string `mapstructure:"api_key" toml:"api_key" json:"api_key,omitempty"`
	TimeoutMs  int    `mapstructure:"timeout_ms" toml:"timeout_ms" json:"timeout_ms" jsonschema:"minimum=1"`
	MaxRetries int    `mapstructure:"max_retries" toml:"max_retries" json:"max_retries" jsonschema:"minimum=0"`
}

// Timeout returns the per-request HTTP timeout.
func (c BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// DatabaseConfig locates the usage log.
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path" json:"path"`
}

// LoggingConfig sets the zerolog level and output format.
type LoggingConfig struct {
	Level  string `mapstructure:"level" toml:"level" json:"level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error,enum=disabled"`
	Format string `mapstructure:"format" toml:"format" json:"format" jsonschema:"enum=console,enum=json"`
	// File settings apply to logs written while a screen owns the terminal.
	MaxSizeMB  int  `mapstructure:"max_size_mb" toml:"max_size_mb" json:"max_size_mb" jsonschema:"minimum=1"`
	MaxBackups int  `mapstructure:"max_backups" toml:"max_backups" json:"max_backups" jsonschema:"minimum=0"`
	MaxAgeDays int  `mapstructure:"max_age_days" toml:"max_age_days" json:"max_age_days" jsonschema:"minimum=0"`
	Compress   bool `mapstructure:"compress" toml:"compress" json:"compress"`
}
