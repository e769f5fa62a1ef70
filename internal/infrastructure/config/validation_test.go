package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/gregify/internal/domain/entity"
)

func TestValidateConfig_Defaults(t *testing.T) {
	assert.NoError(t, validateConfig(DefaultConfig()))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "relay timeout",
			mutate:  func(c *Config) { c.Relay.TimeoutMs = 0 },
			wantErr: "relay.timeout_ms",
		},
		{
			name: "duplicate candidate",
			mutate: func(c *Config) {
				c.Surface.Candidates = []entity.SurfaceCandidateSpec{
					{Name: "a", Selector: "textarea"},
					{Name: "a", Selector: "div"},
				}
			},
			wantErr: "is duplicated",
		},
		{
			name:    "empty allow list",
			mutate:  func(c *Config) { c.Hosts.Allow = nil },
			wantErr: "hosts.allow",
		},
		{
			name:    "host with scheme",
			mutate:  func(c *Config) { c.Hosts.Allow = []string{"https://chatgpt.com"} },
			wantErr: "bare host name",
		},
		{
			name:    "backend url",
			mutate:  func(c *Config) { c.Backend.BaseURL = "localhost:8000" },
			wantErr: "backend.base_url",
		},
		{
			name: "auto submit without selectors",
			mutate: func(c *Config) {
				c.Injection.AutoSubmit = true
				c.Injection.SubmitSelectors = nil
			},
			wantErr: "injection.submit_selectors",
		},
		{
			name:    "log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name:    "log file size",
			mutate:  func(c *Config) { c.Logging.MaxSizeMB = 0 },
			wantErr: "logging.max_size_mb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSchema(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)
	assert.Contains(t, string(data), "debounce_ms")
	assert.Contains(t, string(data), "gregify configuration")
}
