package config

// RendererConfig configures the embedded page renderer connection
type RendererConfig struct {
	// ControlURL points at an already-running browser devtools endpoint.
	// Empty means launch a managed browser instance.
	ControlURL string `json:"control_url,omitempty" yaml:"control_url,omitempty"`
	// PageLoadTimeoutSecs bounds a single Load call.
	PageLoadTimeoutSecs int `json:"page_load_timeout_secs,omitempty" yaml:"page_load_timeout_secs,omitempty" validate:"omitempty,min=1,max=300"`
	// UserAgent overrides the browser user agent when non-empty.
	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

// NewDefaultRendererConfig creates a RendererConfig with default values
func NewDefaultRendererConfig() RendererConfig {
	return RendererConfig{
		ControlURL:          "",
		PageLoadTimeoutSecs: 30,
	}
}
