package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/bnema/gregify/internal/domain/entity"
)

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	dir       string
	mu        sync.RWMutex
	callbacks []func(*Config)
	watching  bool
}

// NewManager creates a manager reading from the XDG config directory.
func NewManager() (*Manager, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config directory: %w\nCheck XDG_CONFIG_HOME environment variable or HOME directory", err)
	}
	return NewManagerWithDir(configDir)
}

// NewManagerWithDir creates a manager reading config.toml from dir.
func NewManagerWithDir(dir string) (*Manager, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	// GREGIFY_SUGGESTION_DEBOUNCE_MS, GREGIFY_BACKEND_BASE_URL, ...
	v.SetEnvPrefix("GREGIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("logging.level", "GREGIFY_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind GREGIFY_LOG_LEVEL: %w", err)
	}
	if err := v.BindEnv("logging.format", "GREGIFY_LOG_FORMAT"); err != nil {
		return nil, fmt.Errorf("failed to bind GREGIFY_LOG_FORMAT: %w", err)
	}
	if err := v.BindEnv("backend.api_key", "GREGIFY_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GREGIFY_API_KEY: %w", err)
	}

	return &Manager{
		viper:     v,
		dir:       dir,
		callbacks: make([]func(*Config), 0),
	}, nil
}

// Load loads the configuration from file and environment variables. A default
// config file is written when none exists.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", m.dir, err)
	}

	m.setDefaults()

	if err := m.readConfigFile(); err != nil {
		return err
	}

	config, err := m.build()
	if err != nil {
		return err
	}
	m.config = config
	return nil
}

func (m *Manager) readConfigFile() error {
	err := m.viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		configFile := m.viper.ConfigFileUsed()
		if configFile == "" {
			configFile = filepath.Join(m.dir, configName)
		}
		return fmt.Errorf("failed to read config file at %s: %w\nCheck the file format (must be valid TOML) and permissions", configFile, err)
	}

	if createErr := m.createDefaultConfig(); createErr != nil {
		return fmt.Errorf(
			"failed to create default config at %s: %w\nTry creating the directory manually or check permissions",
			m.dir,
			createErr,
		)
	}
	if rereadErr := m.viper.ReadInConfig(); rereadErr != nil {
		return fmt.Errorf("failed to read newly created config file: %w", rereadErr)
	}
	return nil
}

// build unmarshals, fills, normalizes and validates. Caller holds the lock.
func (m *Manager) build() (*Config, error) {
	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf(
			"failed to parse config file at %s: %w\nCheck for syntax errors, invalid values, or type mismatches",
			m.viper.ConfigFileUsed(),
			err,
		)
	}
	if err := ensureDatabasePath(config); err != nil {
		return nil, err
	}
	normalizeConfig(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func ensureDatabasePath(config *Config) error {
	if config.Database.Path != "" {
		return nil
	}
	dbPath, err := GetDatabaseFile()
	if err != nil {
		return fmt.Errorf("failed to get database path: %w", err)
	}
	config.Database.Path = dbPath
	return nil
}

func normalizeConfig(config *Config) {
	config.Suggestion.AcceptKey = strings.TrimSpace(config.Suggestion.AcceptKey)
	if config.Suggestion.AcceptKey == "" {
		config.Suggestion.AcceptKey = defaultAcceptKey
	}

	switch strings.ToLower(config.Logging.Format) {
	case "json":
		config.Logging.Format = "json"
	default:
		config.Logging.Format = defaultLogFormat
	}
	config.Logging.Level = strings.ToLower(strings.TrimSpace(config.Logging.Level))
	if config.Logging.Level == "" {
		config.Logging.Level = defaultLogLevel
	}

	if len(config.Surface.Candidates) == 0 {
		config.Surface.Candidates = entity.DefaultCandidateSpecs()
	}
	for i := range config.Surface.Candidates {
		c := &config.Surface.Candidates[i]
		c.Selector = strings.TrimSpace(c.Selector)
		if c.Name == "" {
			c.Name = c.Selector
		}
	}

	hosts := config.Hosts.Allow[:0]
	for _, h := range config.Hosts.Allow {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			hosts = append(hosts, h)
		}
	}
	config.Hosts.Allow = hosts

	config.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(config.Backend.BaseURL), "/")
	if config.Injection.FallbackSelector == "" {
		config.Injection.FallbackSelector = defaultFallbackTarget
	}
}

// Get returns the current configuration (thread-safe).
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return DefaultConfig()
	}
	configCopy := *m.config
	return &configCopy
}

// GetConfigFile returns the path to the configuration file being used.
func (m *Manager) GetConfigFile() string {
	if used := m.viper.ConfigFileUsed(); used != "" {
		return used
	}
	return filepath.Join(m.dir, configName)
}

// createDefaultConfig writes the defaults and the JSON schema next to it.
func (m *Manager) createDefaultConfig() error {
	configFile := filepath.Join(m.dir, configName)
	if err := os.MkdirAll(m.dir, dirPerm); err != nil {
		return err
	}

	m.viper.SetConfigType("toml")
	if err := m.viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := WriteSchemaFile(filepath.Join(m.dir, schemaName)); err != nil {
		return err
	}
	return nil
}

// setDefaults sets default configuration values in Viper.
func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.setSuggestionDefaults(defaults)
	m.setRelayDefaults(defaults)
	m.setSurfaceDefaults(defaults)
	m.setInjectionDefaults(defaults)
	m.setHostsDefaults(defaults)
	m.setBackendDefaults(defaults)
	m.setLoggingDefaults(defaults)

	// Path is resolved in build(); the empty default keeps the key visible to
	// GREGIFY_DATABASE_PATH.
	m.viper.SetDefault("database.path", "")
}

func (m *Manager) setSuggestionDefaults(defaults *Config) {
	m.viper.SetDefault("suggestion.enabled", defaults.Suggestion.Enabled)
	m.viper.SetDefault("suggestion.debounce_ms", defaults.Suggestion.DebounceMs)
	m.viper.SetDefault("suggestion.min_length", defaults.Suggestion.MinLength)
	m.viper.SetDefault("suggestion.accept_key", defaults.Suggestion.AcceptKey)
}

func (m *Manager) setRelayDefaults(defaults *Config) {
	m.viper.SetDefault("relay.timeout_ms", defaults.Relay.TimeoutMs)
}

func (m *Manager) setSurfaceDefaults(defaults *Config) {
	candidates := make([]map[string]any, 0, len(defaults.Surface.Candidates))
	for _, c := range defaults.Surface.Candidates {
		candidates = append(candidates, map[string]any{"name": c.Name, "selector": c.Selector})
	}
	m.viper.SetDefault("surface.candidates", candidates)
	m.viper.SetDefault("surface.deep_scan", defaults.Surface.DeepScan)
}

func (m *Manager) setInjectionDefaults(defaults *Config) {
	m.viper.SetDefault("injection.auto_submit", defaults.Injection.AutoSubmit)
	m.viper.SetDefault("injection.submit_selectors", defaults.Injection.SubmitSelectors)
	m.viper.SetDefault("injection.fallback_selector", defaults.Injection.FallbackSelector)
}

func (m *Manager) setHostsDefaults(defaults *Config) {
	m.viper.SetDefault("hosts.allow", defaults.Hosts.Allow)
}

func (m *Manager) setBackendDefaults(defaults *Config) {
	m.viper.SetDefault("backend.base_url", defaults.Backend.BaseURL)
	m.viper.SetDefault("backend.model", defaults.Backend.Model)
	m.viper.SetDefault("backend.role", defaults.Backend.Role)
	m.viper.SetDefault("backend.api_key", defaults.Backend.APIKey)
	m.viper.SetDefault("backend.timeout_ms", defaults.Backend.TimeoutMs)
	m.viper.SetDefault("backend.max_retries", defaults.Backend.MaxRetries)
}

func (m *Manager) setLoggingDefaults(defaults *Config) {
	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
	m.viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	m.viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	m.viper.SetDefault("logging.max_age_days", defaults.Logging.MaxAgeDays)
	m.viper.SetDefault("logging.compress", defaults.Logging.Compress)
}
