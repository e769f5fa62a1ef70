package config

import "github.com/bnema/gregify/internal/domain/entity"

const (
	defaultDebounceMs     = 500
	defaultMinLength      = 4
	defaultAcceptKey      = "Tab"
	defaultRelayTimeoutMs = 5000
	defaultBackendURL     = "http://localhost:8000"
	defaultBackendModel   = "gpt-3.5-turbo"
	defaultBackendRole    = "webdev"
	defaultBackendTimeout = 15000
	defaultBackendRetries = 2
	defaultFallbackTarget = "#" + entity.PromptTextareaID
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultLogMaxSizeMB   = 10
	defaultLogMaxBackups  = 3
	defaultLogMaxAgeDays  = 7
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Suggestion: SuggestionConfig{
			Enabled:    true,
			DebounceMs: defaultDebounceMs,
			MinLength:  defaultMinLength,
			AcceptKey:  defaultAcceptKey,
		},
		Relay: RelayConfig{
			TimeoutMs: defaultRelayTimeoutMs,
		},
		Surface: SurfaceConfig{
			Candidates: entity.DefaultCandidateSpecs(),
			DeepScan:   true,
		},
		Injection: InjectionConfig{
			AutoSubmit:       false,
			SubmitSelectors:  DefaultSubmitSelectors(),
			FallbackSelector: defaultFallbackTarget,
		},
		Hosts: HostsConfig{
			Allow: []string{"chat.openai.com", "chatgpt.com"},
		},
		Backend: BackendConfig{
			BaseURL:    defaultBackendURL,
			Model:      defaultBackendModel,
			Role:       defaultBackendRole,
			TimeoutMs:  defaultBackendTimeout,
			MaxRetries: defaultBackendRetries,
		},
		Logging: LoggingConfig{
			Level:      defaultLogLevel,
			Format:     defaultLogFormat,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
			Compress:   true,
		},
	}
}

// DefaultSubmitSelectors returns the send-button selectors tried in order when
// auto-submit is enabled.
func DefaultSubmitSelectors() []string {
	return []string{
		`button[data-testid="send-button"]`,
		`button[aria-label="Send prompt"]`,
		`button[aria-label="Send message"]`,
		`form button[type="submit"]`,
	}
}
