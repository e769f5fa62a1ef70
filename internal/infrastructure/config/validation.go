package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
)

// validateConfig collects every problem into one multi-line error.
func validateConfig(config *Config) error {
	var validationErrors []string

	validationErrors = append(validationErrors, validateSuggestion(config)...)
	validationErrors = append(validationErrors, validateRelay(config)...)
	validationErrors = append(validationErrors, validateSurface(config)...)
	validationErrors = append(validationErrors, validateInjection(config)...)
	validationErrors = append(validationErrors, validateHosts(config)...)
	validationErrors = append(validationErrors, validateBackend(config)...)
	validationErrors = append(validationErrors, validateLogging(config)...)

	if len(validationErrors) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}
	return nil
}

// Validate checks a configuration built outside the manager.
func Validate(config *Config) error {
	return validateConfig(config)
}

func validateSuggestion(config *Config) []string {
	var validationErrors []string
	if config.Suggestion.DebounceMs < 50 || config.Suggestion.DebounceMs > 10000 {
		validationErrors = append(validationErrors, "suggestion.debounce_ms must be between 50 and 10000")
	}
	if config.Suggestion.MinLength < 1 {
		validationErrors = append(validationErrors, "suggestion.min_length must be at least 1")
	}
	return validationErrors
}

func validateRelay(config *Config) []string {
	if config.Relay.TimeoutMs <= 0 {
		return []string{"relay.timeout_ms must be positive"}
	}
	return nil
}

func validateSurface(config *Config) []string {
	var validationErrors []string
	seen := make(map[string]bool, len(config.Surface.Candidates))
	for i, c := range config.Surface.Candidates {
		if c.Selector == "" {
			validationErrors = append(validationErrors, fmt.Sprintf("surface.candidates[%d].selector cannot be empty", i))
			continue
		}
		if _, err := cascadia.Compile(c.Selector); err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("surface.candidates[%d].selector %q is invalid: %v", i, c.Selector, err))
		}
		if seen[c.Name] {
			validationErrors = append(validationErrors, fmt.Sprintf("surface.candidates[%d].name %q is duplicated", i, c.Name))
		}
		seen[c.Name] = true
	}
	return validationErrors
}

func validateInjection(config *Config) []string {
	var validationErrors []string
	selectors := append([]string{config.Injection.FallbackSelector}, config.Injection.SubmitSelectors...)
	for _, sel := range selectors {
		if _, err := cascadia.Compile(sel); err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("injection selector %q is invalid: %v", sel, err))
		}
	}
	if config.Injection.AutoSubmit && len(config.Injection.SubmitSelectors) == 0 {
		validationErrors = append(validationErrors, "injection.submit_selectors cannot be empty when auto_submit is enabled")
	}
	return validationErrors
}

func validateHosts(config *Config) []string {
	var validationErrors []string
	if len(config.Hosts.Allow) == 0 {
		validationErrors = append(validationErrors, "hosts.allow must list at least one host")
	}
	for _, h := range config.Hosts.Allow {
		if strings.ContainsAny(h, "/:") {
			validationErrors = append(validationErrors, fmt.Sprintf("hosts.allow entry %q must be a bare host name", h))
		}
	}
	return validationErrors
}

func validateBackend(config *Config) []string {
	var validationErrors []string
	u, err := url.Parse(config.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		validationErrors = append(validationErrors, fmt.Sprintf("backend.base_url must be an http(s) URL (got: %q)", config.Backend.BaseURL))
	}
	if config.Backend.TimeoutMs <= 0 {
		validationErrors = append(validationErrors, "backend.timeout_ms must be positive")
	}
	if config.Backend.MaxRetries < 0 || config.Backend.MaxRetries > 10 {
		validationErrors = append(validationErrors, "backend.max_retries must be between 0 and 10")
	}
	return validationErrors
}

func validateLogging(config *Config) []string {
	var validationErrors []string
	switch config.Logging.Level {
	case "trace", "debug", "info", "warn", "warning", "error", "disabled", "off":
	default:
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.level must be one of: trace, debug, info, warn, error, disabled (got: %s)",
			config.Logging.Level,
		))
	}
	if config.Logging.MaxSizeMB < 1 {
		validationErrors = append(validationErrors, "logging.max_size_mb must be at least 1")
	}
	if config.Logging.MaxBackups < 0 || config.Logging.MaxAgeDays < 0 {
		validationErrors = append(validationErrors, "logging.max_backups and logging.max_age_days cannot be negative")
	}
	return validationErrors
}
