package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/gregify/internal/logging"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	dir := t.TempDir()
	mgr, err := NewManagerWithDir(dir)
	require.NoError(t, err)
	return mgr, dir
}

func TestSetDefaults(t *testing.T) {
	mgr := &Manager{viper: viper.New()}
	mgr.setDefaults()

	assert.Equal(t, 500, mgr.viper.GetInt("suggestion.debounce_ms"))
	assert.Equal(t, 4, mgr.viper.GetInt("suggestion.min_length"))
	assert.Equal(t, "Tab", mgr.viper.GetString("suggestion.accept_key"))
	assert.Equal(t, 5000, mgr.viper.GetInt("relay.timeout_ms"))
	assert.False(t, mgr.viper.GetBool("injection.auto_submit"))
	assert.Equal(t, []string{"chat.openai.com", "chatgpt.com"}, mgr.viper.GetStringSlice("hosts.allow"))
}

func TestLoad_CreatesDefaultConfigAndSchema(t *testing.T) {
	mgr, dir := newTestManager(t)

	require.NoError(t, mgr.Load())

	assert.FileExists(t, filepath.Join(dir, "config.toml"))
	assert.FileExists(t, filepath.Join(dir, "config.schema.json"))

	cfg := mgr.Get()
	assert.Equal(t, DefaultConfig().Suggestion, cfg.Suggestion)
	assert.Equal(t, DefaultConfig().Surface.Candidates, cfg.Surface.Candidates)
	assert.Equal(t, "#prompt-textarea", cfg.Injection.FallbackSelector)
	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.NotEmpty(t, cfg.Database.Path)
}

func TestLoad_ReadsFileAndEnv(t *testing.T) {
	mgr, dir := newTestManager(t)
	content := `
[suggestion]
debounce_ms = 250
min_length = 6
accept_key = "ArrowRight"

[backend]
base_url = "https://prompts.example.com/"

[[surface.candidates]]
name = "composer"
selector = "#composer textarea"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), filePerm))
	t.Setenv("GREGIFY_LOG_LEVEL", "DEBUG")
	t.Setenv("GREGIFY_RELAY_TIMEOUT_MS", "1200")

	require.NoError(t, mgr.Load())
	cfg := mgr.Get()

	assert.Equal(t, 250, cfg.Suggestion.DebounceMs)
	assert.Equal(t, 6, cfg.Suggestion.MinLength)
	assert.Equal(t, "ArrowRight", cfg.Suggestion.AcceptKey)
	assert.Equal(t, "https://prompts.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 1200, cfg.Relay.TimeoutMs)
	require.Len(t, cfg.Surface.Candidates, 1)
	assert.Equal(t, "#composer textarea", cfg.Surface.Candidates[0].Selector)
}

func TestLoad_InvalidFileReportsEveryProblem(t *testing.T) {
	mgr, dir := newTestManager(t)
	content := `
[suggestion]
debounce_ms = 5
min_length = 0

[[surface.candidates]]
name = "broken"
selector = "div["
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), filePerm))

	err := mgr.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "suggestion.debounce_ms")
	assert.Contains(t, err.Error(), "suggestion.min_length")
	assert.Contains(t, err.Error(), "surface.candidates[0].selector")
}

func TestNormalizeConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Suggestion.AcceptKey = "  "
	cfg.Logging.Format = "YAML"
	cfg.Hosts.Allow = []string{" ChatGPT.com ", ""}
	cfg.Surface.Candidates = nil
	cfg.Backend.BaseURL = "http://localhost:8000/"

	normalizeConfig(cfg)

	assert.Equal(t, "Tab", cfg.Suggestion.AcceptKey)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, []string{"chatgpt.com"}, cfg.Hosts.Allow)
	assert.NotEmpty(t, cfg.Surface.Candidates)
	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
}

func TestGet_WithoutLoadReturnsDefaults(t *testing.T) {
	mgr := &Manager{viper: viper.New()}
	assert.Equal(t, DefaultConfig(), mgr.Get())
}

func TestWatch_ReloadsAndNotifies(t *testing.T) {
	mgr, dir := newTestManager(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[suggestion]\ndebounce_ms = 250\n"), filePerm))
	require.NoError(t, mgr.Load())

	changed := make(chan *Config, 4)
	mgr.OnConfigChange(func(cfg *Config) { changed <- cfg })
	ctx := logging.WithContext(context.Background(), zerolog.Nop())
	require.NoError(t, mgr.Watch(ctx))
	require.NoError(t, mgr.Watch(ctx), "watching twice is a no-op")

	require.NoError(t, os.WriteFile(path, []byte("[suggestion]\ndebounce_ms = 300\n"), filePerm))

	require.Eventually(t, func() bool {
		for {
			select {
			case cfg := <-changed:
				if cfg.Suggestion.DebounceMs == 300 {
					return true
				}
			default:
				return false
			}
		}
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, 300, mgr.Get().Suggestion.DebounceMs)
}
