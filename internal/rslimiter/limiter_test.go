package rslimiter

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/aleister1102/metascope/internal/config"
)

func newTestLimiter(cfg config.ResourceLimiterConfig, usedPercent float64, usageErr error) *Limiter {
	l := NewLimiter(&cfg, zerolog.Nop())
	l.usage = func() (float64, error) { return usedPercent, usageErr }
	return l
}

func TestLimiter_Disabled(t *testing.T) {
	cfg := config.NewDefaultResourceLimiterConfig()
	cfg.Enabled = false
	l := newTestLimiter(cfg, 99.9, nil)
	assert.True(t, l.AllowDecode(1<<30))
}

func TestLimiter_PayloadSizeCap(t *testing.T) {
	cfg := config.NewDefaultResourceLimiterConfig()
	cfg.MaxDecodeBytes = 1024
	l := newTestLimiter(cfg, 10.0, nil)

	assert.True(t, l.AllowDecode(512))
	assert.False(t, l.AllowDecode(2048))
}

func TestLimiter_MemoryPressure(t *testing.T) {
	cfg := config.NewDefaultResourceLimiterConfig()
	cfg.MaxMemoryPercent = 80.0

	assert.True(t, newTestLimiter(cfg, 50.0, nil).AllowDecode(100))
	assert.False(t, newTestLimiter(cfg, 95.0, nil).AllowDecode(100))
}

func TestLimiter_UsageErrorAllows(t *testing.T) {
	cfg := config.NewDefaultResourceLimiterConfig()
	l := newTestLimiter(cfg, 0, errors.New("proc unavailable"))
	assert.True(t, l.AllowDecode(100))
}

func TestLimiter_NilIsPermissive(t *testing.T) {
	var l *Limiter
	assert.True(t, l.AllowDecode(1<<30))
}
