// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	Browser     BrowserConfig     `mapstructure:"browser" yaml:"browser"`
	Engine      EngineConfig      `mapstructure:"engine" yaml:"engine"`
	Performance PerformanceConfig `mapstructure:"performance" yaml:"performance"`
	Visual      VisualConfig      `mapstructure:"visual" yaml:"visual"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// Viewport describes browser window dimensions in CSS pixels.
type Viewport struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// BrowserConfig holds settings for the headless browser process and the
// sessions created inside it.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	IgnoreTLSErrors   bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	Args              []string      `mapstructure:"args" yaml:"args"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	ActionTimeout     time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
	PostLoadWait      time.Duration `mapstructure:"post_load_wait" yaml:"post_load_wait"`
	DesktopViewport   Viewport      `mapstructure:"desktop_viewport" yaml:"desktop_viewport"`
	MobileViewport    Viewport      `mapstructure:"mobile_viewport" yaml:"mobile_viewport"`
	DesktopUserAgent  string        `mapstructure:"desktop_user_agent" yaml:"desktop_user_agent"`
	MobileUserAgent   string        `mapstructure:"mobile_user_agent" yaml:"mobile_user_agent"`
}

// EngineConfig tunes the interaction simulation engine. Every knob here
// bounds worst-case latency against hostile or broken storefronts.
type EngineConfig struct {
	OverlayRounds    int           `mapstructure:"overlay_rounds" yaml:"overlay_rounds"`
	OverlaySettle    time.Duration `mapstructure:"overlay_settle" yaml:"overlay_settle"`
	SearchQuery      string        `mapstructure:"search_query" yaml:"search_query"`
	SearchSettle     time.Duration `mapstructure:"search_settle" yaml:"search_settle"`
	CartSettle       time.Duration `mapstructure:"cart_settle" yaml:"cart_settle"`
	AnchorScanLimit  int           `mapstructure:"anchor_scan_limit" yaml:"anchor_scan_limit"`
	LinkSampleSize   int           `mapstructure:"link_sample_size" yaml:"link_sample_size"`
	LinkCheckTimeout time.Duration `mapstructure:"link_check_timeout" yaml:"link_check_timeout"`
	MobileTolerance  int           `mapstructure:"mobile_tolerance" yaml:"mobile_tolerance"`
	ScreenshotPath   string        `mapstructure:"screenshot_path" yaml:"screenshot_path"`
}

// PerformanceConfig configures the PageSpeed Insights collector.
type PerformanceConfig struct {
	APIKey   string        `mapstructure:"api_key" yaml:"-"`
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint"`
	Strategy string        `mapstructure:"strategy" yaml:"strategy"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// VisualConfig configures the Gemini vision scoring collector.
type VisualConfig struct {
	APIKey   string        `mapstructure:"api_key" yaml:"-"`
	Model    string        `mapstructure:"model" yaml:"model"`
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// OutputConfig controls where collected rows go and how politely we walk
// the target list.
type OutputConfig struct {
	CSV         string        `mapstructure:"csv" yaml:"csv"`
	Delay       time.Duration `mapstructure:"delay" yaml:"delay"`
	PostgresURL string        `mapstructure:"postgres_url" yaml:"-"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "cartwalk")
	v.SetDefault("logger.log_file", "cartwalk.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.ignore_tls_errors", true)
	v.SetDefault("browser.navigation_timeout", "30s")
	v.SetDefault("browser.action_timeout", "5s")
	v.SetDefault("browser.post_load_wait", "2s")
	v.SetDefault("browser.desktop_viewport.width", 1440)
	v.SetDefault("browser.desktop_viewport.height", 900)
	v.SetDefault("browser.mobile_viewport.width", 390)
	v.SetDefault("browser.mobile_viewport.height", 844)
	v.SetDefault("browser.desktop_user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	v.SetDefault("browser.mobile_user_agent",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")

	// -- Engine --
	v.SetDefault("engine.overlay_rounds", 5)
	v.SetDefault("engine.overlay_settle", "500ms")
	v.SetDefault("engine.search_query", "shirt")
	v.SetDefault("engine.search_settle", "1200ms")
	v.SetDefault("engine.cart_settle", "1500ms")
	v.SetDefault("engine.anchor_scan_limit", 60)
	v.SetDefault("engine.link_sample_size", 10)
	v.SetDefault("engine.link_check_timeout", "8s")
	v.SetDefault("engine.mobile_tolerance", 20)
	v.SetDefault("engine.screenshot_path", "/tmp/cartwalk_screenshot.png")

	// -- Performance --
	v.SetDefault("performance.endpoint", "https://www.googleapis.com/pagespeedonline/v5/runPagespeed")
	v.SetDefault("performance.strategy", "mobile")
	v.SetDefault("performance.timeout", "30s")

	// -- Visual --
	v.SetDefault("visual.model", "gemini-2.5-flash")
	v.SetDefault("visual.timeout", "60s")

	// -- Output --
	v.SetDefault("output.csv", "ecommerce_dataset.csv")
	v.SetDefault("output.delay", "2s")
}

// NewDefaultConfig creates a configuration struct populated with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with compile-time defaults, but fail loudly if it does.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a validated configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// Sensitive values come from the environment, never the config file.
	v.BindEnv("performance.api_key", "CARTWALK_PAGESPEED_API_KEY")
	v.BindEnv("visual.api_key", "CARTWALK_GEMINI_API_KEY")
	v.BindEnv("output.postgres_url", "CARTWALK_POSTGRES_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Browser.NavigationTimeout <= 0 {
		return fmt.Errorf("browser.navigation_timeout must be a positive duration")
	}
	if c.Browser.ActionTimeout <= 0 {
		return fmt.Errorf("browser.action_timeout must be a positive duration")
	}
	if c.Browser.DesktopViewport.Width <= 0 || c.Browser.DesktopViewport.Height <= 0 {
		return fmt.Errorf("browser.desktop_viewport dimensions must be positive")
	}
	if c.Browser.MobileViewport.Width <= 0 || c.Browser.MobileViewport.Height <= 0 {
		return fmt.Errorf("browser.mobile_viewport dimensions must be positive")
	}
	if c.Engine.OverlayRounds <= 0 {
		return fmt.Errorf("engine.overlay_rounds must be a positive integer")
	}
	if c.Engine.LinkSampleSize <= 0 {
		return fmt.Errorf("engine.link_sample_size must be a positive integer")
	}
	if c.Engine.MobileTolerance < 0 {
		return fmt.Errorf("engine.mobile_tolerance must not be negative")
	}
	switch c.Performance.Strategy {
	case "mobile", "desktop":
	default:
		return fmt.Errorf("performance.strategy must be 'mobile' or 'desktop', got %q", c.Performance.Strategy)
	}
	return nil
}
