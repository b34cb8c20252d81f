// File: internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := NewDefaultConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "cartwalk", cfg.Logger.ServiceName)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 30*time.Second, cfg.Browser.NavigationTimeout)
	assert.Equal(t, 5*time.Second, cfg.Browser.ActionTimeout)
	assert.Equal(t, 1440, cfg.Browser.DesktopViewport.Width)
	assert.Equal(t, 390, cfg.Browser.MobileViewport.Width)
	assert.Equal(t, 5, cfg.Engine.OverlayRounds)
	assert.Equal(t, 10, cfg.Engine.LinkSampleSize)
	assert.Equal(t, 20, cfg.Engine.MobileTolerance)
	assert.Equal(t, "mobile", cfg.Performance.Strategy)
	assert.Equal(t, 2*time.Second, cfg.Output.Delay)

	assert.NoError(t, cfg.Validate())
}

func TestNewConfigFromViper(t *testing.T) {
	t.Parallel()

	t.Run("overrides apply on top of defaults", func(t *testing.T) {
		t.Parallel()
		v := viper.New()
		SetDefaults(v)
		v.Set("browser.headless", false)
		v.Set("engine.overlay_rounds", 3)
		v.Set("output.delay", "5s")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.False(t, cfg.Browser.Headless)
		assert.Equal(t, 3, cfg.Engine.OverlayRounds)
		assert.Equal(t, 5*time.Second, cfg.Output.Delay)
		// Untouched defaults survive.
		assert.Equal(t, 844, cfg.Browser.MobileViewport.Height)
	})

	t.Run("invalid strategy is rejected", func(t *testing.T) {
		t.Parallel()
		v := viper.New()
		SetDefaults(v)
		v.Set("performance.strategy", "tablet")

		_, err := NewConfigFromViper(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "performance.strategy")
	})

	t.Run("non-positive timeouts are rejected", func(t *testing.T) {
		t.Parallel()
		v := viper.New()
		SetDefaults(v)
		v.Set("browser.navigation_timeout", "0s")

		_, err := NewConfigFromViper(v)
		require.Error(t, err)
	})
}

func TestValidateViewports(t *testing.T) {
	t.Parallel()
	cfg := NewDefaultConfig()
	cfg.Browser.MobileViewport.Width = 0
	require.Error(t, cfg.Validate())
}
