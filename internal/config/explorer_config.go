package config

// WatcherConfig configures the head-mutation watcher
type WatcherConfig struct {
	// DebounceMs collapses a burst of head mutations into one re-extraction.
	DebounceMs int `json:"debounce_ms,omitempty" yaml:"debounce_ms,omitempty" validate:"omitempty,min=10,max=10000"`
}

// NewDefaultWatcherConfig creates a WatcherConfig with default values
func NewDefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		DebounceMs: 300,
	}
}

// ExplorerConfig configures the extraction coordination service
type ExplorerConfig struct {
	// URLChangeDelayMs defers re-extraction after an observed URL change so
	// SPA routers that update the URL before the DOM settle first.
	URLChangeDelayMs int `json:"url_change_delay_ms,omitempty" yaml:"url_change_delay_ms,omitempty" validate:"omitempty,min=10,max=10000"`
	// SubscriberBuffer is the channel depth handed to each snapshot
	// subscriber.
	SubscriberBuffer int `json:"subscriber_buffer,omitempty" yaml:"subscriber_buffer,omitempty" validate:"omitempty,min=1,max=1024"`
}

// NewDefaultExplorerConfig creates an ExplorerConfig with default values
func NewDefaultExplorerConfig() ExplorerConfig {
	return ExplorerConfig{
		URLChangeDelayMs: 500,
		SubscriberBuffer: 8,
	}
}
