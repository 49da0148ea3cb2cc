package config

// ResolverConfig configures icon/image prefetching
type ResolverConfig struct {
	// FetchTimeoutSecs bounds one image fetch.
	FetchTimeoutSecs int `json:"fetch_timeout_secs,omitempty" yaml:"fetch_timeout_secs,omitempty" validate:"omitempty,min=1,max=120"`
	// MaxImageSizeBytes caps a single fetched payload. Larger responses are
	// treated as fetch failures for that slot.
	MaxImageSizeBytes int `json:"max_image_size_bytes,omitempty" yaml:"max_image_size_bytes,omitempty" validate:"omitempty,min=1024"`
	// UserAgent is sent with every image request.
	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

// NewDefaultResolverConfig creates a ResolverConfig with default values
func NewDefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		FetchTimeoutSecs:  15,
		MaxImageSizeBytes: 10 * 1024 * 1024, // 10MB
		UserAgent:         "metascope/1.0",
	}
}
