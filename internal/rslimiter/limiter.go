package rslimiter

import (
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aleister1102/metascope/internal/config"
)

// memoryUsage is swappable in tests.
type memoryUsage func() (float64, error)

func systemMemoryUsage() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

// Limiter gates image payload decoding under memory pressure. Fetches still
// run and join normally; only the decode step is skipped so the pipeline's
// join semantics never change, the affected slots just stay unresolved.
type Limiter struct {
	cfg    *config.ResourceLimiterConfig
	logger zerolog.Logger
	usage  memoryUsage
}

// NewLimiter creates a Limiter.
func NewLimiter(cfg *config.ResourceLimiterConfig, logger zerolog.Logger) *Limiter {
	return &Limiter{
		cfg:    cfg,
		logger: logger.With().Str("component", "ResourceLimiter").Logger(),
		usage:  systemMemoryUsage,
	}
}

// AllowDecode reports whether a payload of the given size may be decoded.
func (l *Limiter) AllowDecode(payloadSize int) bool {
	if l == nil || l.cfg == nil || !l.cfg.Enabled {
		return true
	}

	if l.cfg.MaxDecodeBytes > 0 && payloadSize > l.cfg.MaxDecodeBytes {
		l.logger.Debug().Int("payload_size", payloadSize).Int("max", l.cfg.MaxDecodeBytes).Msg("Payload exceeds decode size limit")
		return false
	}

	usedPercent, err := l.usage()
	if err != nil {
		// Unknown pressure: allow rather than degrade the sidebar.
		l.logger.Debug().Err(err).Msg("Could not read memory usage")
		return true
	}
	if usedPercent > l.cfg.MaxMemoryPercent {
		l.logger.Debug().Float64("used_percent", usedPercent).Float64("max_percent", l.cfg.MaxMemoryPercent).Msg("Memory pressure, skipping decode")
		return false
	}
	return true
}
