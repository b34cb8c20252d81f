// File: internal/browser/persona.go
package browser

import "github.com/okabe-dev/cartwalk/internal/config"

// Persona is the device identity a session presents: user agent plus
// viewport geometry. Fixed at session creation, never mutated afterwards.
type Persona struct {
	Name      string
	UserAgent string
	Width     int
	Height    int
	Mobile    bool
}

func desktopPersona(cfg config.BrowserConfig) Persona {
	return Persona{
		Name:      "desktop",
		UserAgent: cfg.DesktopUserAgent,
		Width:     cfg.DesktopViewport.Width,
		Height:    cfg.DesktopViewport.Height,
	}
}

func mobilePersona(cfg config.BrowserConfig) Persona {
	return Persona{
		Name:      "mobile",
		UserAgent: cfg.MobileUserAgent,
		Width:     cfg.MobileViewport.Width,
		Height:    cfg.MobileViewport.Height,
		Mobile:    true,
	}
}
