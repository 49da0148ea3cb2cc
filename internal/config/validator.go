package config

import (
	"github.com/aleister1102/metascope/internal/common/errorwrapper"
	"github.com/go-playground/validator/v10"
)

// ValidateConfig validates the loaded configuration against struct tags plus
// a few cross-field rules the tags cannot express.
func ValidateConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return errorwrapper.NewError("config is nil")
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return errorwrapper.WrapError(err, "config validation failed")
	}

	if cfg.HistoryConfig.Enabled && cfg.HistoryConfig.DatabasePath == "" {
		return errorwrapper.NewValidationError("history_config.database_path", cfg.HistoryConfig.DatabasePath, "database path required when history is enabled")
	}

	return nil
}
