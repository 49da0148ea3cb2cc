package config

// Scraper modes
const (
	ScraperModeScript = "script"
	ScraperModeStatic = "static"
)

// ScraperConfig configures the in-page metadata scraper
type ScraperConfig struct {
	// Mode selects the script scraper (runs inside the page) or the static
	// scraper (parses the serialized document HTML).
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty" validate:"omitempty,oneof=script static"`
	// ScriptTimeoutSecs bounds one scrape round-trip into the page context.
	ScriptTimeoutSecs int `json:"script_timeout_secs,omitempty" yaml:"script_timeout_secs,omitempty" validate:"omitempty,min=1,max=60"`
}

// NewDefaultScraperConfig creates a ScraperConfig with default values
func NewDefaultScraperConfig() ScraperConfig {
	return ScraperConfig{
		Mode:              ScraperModeScript,
		ScriptTimeoutSecs: 10,
	}
}
