package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/metascope/internal/common/errorwrapper"
	"github.com/aleister1102/metascope/internal/logger"
	"gopkg.in/yaml.v3"
)

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	ExplorerConfig        ExplorerConfig        `json:"explorer_config,omitempty" yaml:"explorer_config,omitempty"`
	HistoryConfig         HistoryConfig         `json:"history_config,omitempty" yaml:"history_config,omitempty"`
	LogConfig             logger.FileLogConfig  `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	RendererConfig        RendererConfig        `json:"renderer_config,omitempty" yaml:"renderer_config,omitempty"`
	ResolverConfig        ResolverConfig        `json:"resolver_config,omitempty" yaml:"resolver_config,omitempty"`
	ResourceLimiterConfig ResourceLimiterConfig `json:"resource_limiter_config,omitempty" yaml:"resource_limiter_config,omitempty"`
	ScraperConfig         ScraperConfig         `json:"scraper_config,omitempty" yaml:"scraper_config,omitempty"`
	WatcherConfig         WatcherConfig         `json:"watcher_config,omitempty" yaml:"watcher_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		ExplorerConfig:        NewDefaultExplorerConfig(),
		HistoryConfig:         NewDefaultHistoryConfig(),
		LogConfig:             logger.NewDefaultFileLogConfig(),
		RendererConfig:        NewDefaultRendererConfig(),
		ResolverConfig:        NewDefaultResolverConfig(),
		ResourceLimiterConfig: NewDefaultResourceLimiterConfig(),
		ScraperConfig:         NewDefaultScraperConfig(),
		WatcherConfig:         NewDefaultWatcherConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file. An empty path keeps
// the defaults. YAML is used for .yaml/.yml extensions, JSON otherwise.
func LoadGlobalConfig(providedPath string) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	if providedPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(providedPath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read config file '"+providedPath+"'")
	}

	if err := parseConfigContent(data, providedPath, cfg); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse config content")
	}

	return cfg, nil
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if ext == ".yaml" || ext == ".yml" {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errorwrapper.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}
