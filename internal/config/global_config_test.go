package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultGlobalConfig(t *testing.T) {
	cfg := NewDefaultGlobalConfig()

	assert.Equal(t, ScraperModeScript, cfg.ScraperConfig.Mode)
	assert.Equal(t, 300, cfg.WatcherConfig.DebounceMs)
	assert.Equal(t, 500, cfg.ExplorerConfig.URLChangeDelayMs)
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadGlobalConfig_EmptyPathKeepsDefaults(t *testing.T) {
	cfg, err := LoadGlobalConfig("")
	require.NoError(t, err)
	assert.Equal(t, NewDefaultGlobalConfig(), cfg)
}

func TestLoadGlobalConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
watcher_config:
  debounce_ms: 150
explorer_config:
  url_change_delay_ms: 250
scraper_config:
  mode: static
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := LoadGlobalConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 150, cfg.WatcherConfig.DebounceMs)
	assert.Equal(t, 250, cfg.ExplorerConfig.URLChangeDelayMs)
	assert.Equal(t, ScraperModeStatic, cfg.ScraperConfig.Mode)
	// Untouched sections keep defaults.
	assert.Equal(t, 15, cfg.ResolverConfig.FetchTimeoutSecs)
}

func TestLoadGlobalConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := []byte(`{"resolver_config":{"fetch_timeout_secs":5}}`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := LoadGlobalConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.ResolverConfig.FetchTimeoutSecs)
}

func TestLoadGlobalConfig_MissingFile(t *testing.T) {
	_, err := LoadGlobalConfig("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestValidateConfig_Rules(t *testing.T) {
	cfg := NewDefaultGlobalConfig()
	cfg.ScraperConfig.Mode = "telepathy"
	assert.Error(t, ValidateConfig(cfg))

	cfg = NewDefaultGlobalConfig()
	cfg.HistoryConfig.Enabled = true
	cfg.HistoryConfig.DatabasePath = ""
	assert.Error(t, ValidateConfig(cfg))

	cfg = NewDefaultGlobalConfig()
	cfg.WatcherConfig.DebounceMs = 5
	assert.Error(t, ValidateConfig(cfg))
}
