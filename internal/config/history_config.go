package config

// HistoryConfig configures the visit-history store
type HistoryConfig struct {
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// DatabasePath is the sqlite database file. Empty with Enabled=true is a
	// validation error.
	DatabasePath string `json:"database_path,omitempty" yaml:"database_path,omitempty"`
	// MaxEntries bounds the retained history; older visits are pruned.
	MaxEntries int `json:"max_entries,omitempty" yaml:"max_entries,omitempty" validate:"omitempty,min=10"`
}

// NewDefaultHistoryConfig creates a HistoryConfig with default values
func NewDefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		Enabled:      true,
		DatabasePath: "metascope_history.db",
		MaxEntries:   10000,
	}
}

// ResourceLimiterConfig configures the prefetch memory gate
type ResourceLimiterConfig struct {
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// MaxMemoryPercent stops payload decoding when system memory usage
	// exceeds this percentage.
	MaxMemoryPercent float64 `json:"max_memory_percent,omitempty" yaml:"max_memory_percent,omitempty" validate:"omitempty,min=1,max=100"`
	// MaxDecodeBytes skips dimension decoding for payloads larger than this.
	MaxDecodeBytes int `json:"max_decode_bytes,omitempty" yaml:"max_decode_bytes,omitempty" validate:"omitempty,min=1024"`
}

// NewDefaultResourceLimiterConfig creates a ResourceLimiterConfig with default values
func NewDefaultResourceLimiterConfig() ResourceLimiterConfig {
	return ResourceLimiterConfig{
		Enabled:          true,
		MaxMemoryPercent: 90.0,
		MaxDecodeBytes:   32 * 1024 * 1024,
	}
}
