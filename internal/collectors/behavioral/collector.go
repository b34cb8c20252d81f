// File: internal/collectors/behavioral/collector.go
// Package behavioral drives a synthetic shopper session against a storefront
// and distills it into feature signals: overlay pressure, checkout friction,
// cart persistence, search quality, link health and mobile layout.
//
// Everything is best effort. A hostile or broken site degrades individual
// signals to their defaults, it never aborts the collection.
package behavioral

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/okabe-dev/cartwalk/internal/config"
)

// Collector runs the interaction simulation for one URL at a time.
type Collector struct {
	pages  PageFactory
	links  LinkChecker
	cfg    config.EngineConfig
	logger *zap.Logger
}

// New builds a Collector. The checker defaults to a plain HTTP checker when
// nil.
func New(pages PageFactory, links LinkChecker, cfg config.EngineConfig, logger *zap.Logger) *Collector {
	if links == nil {
		links = NewHTTPLinkChecker(cfg.LinkCheckTimeout)
	}
	return &Collector{
		pages:  pages,
		links:  links,
		cfg:    cfg,
		logger: logger.Named("behavioral"),
	}
}

// Collect runs the full simulation for one site across three isolated
// browser sessions: the primary desktop journey, a fresh session probing
// cart persistence, and a mobile session probing layout. A session failure
// never prevents the remaining sessions from running.
func (c *Collector) Collect(ctx context.Context, siteURL string) Result {
	res := NewResult()

	c.runPrimary(ctx, siteURL, &res)
	c.runCartPersistence(ctx, siteURL, &res)
	c.runMobile(ctx, siteURL, &res)

	return res
}

// runPrimary executes the desktop journey: landing, overlays, page capture,
// link health, search and quick buy probes, checkout traversal, screenshot.
func (c *Collector) runPrimary(ctx context.Context, siteURL string, res *Result) {
	page, err := c.pages.NewPage(ctx, false)
	if err != nil {
		c.logger.Warn("Desktop session could not be created.", zap.Error(err))
		return
	}
	defer page.Close(ctx)

	if err := page.Navigate(ctx, siteURL); err != nil {
		c.logger.Warn("Landing navigation failed.",
			zap.String("url", siteURL), zap.Error(err))
		// The session is likely dead, but a screenshot of whatever
		// rendered is still worth attempting.
		c.captureScreenshot(ctx, page, res)
		return
	}

	res.PopupCount += c.dismissOverlays(ctx, page)

	if html, err := page.HTML(ctx); err == nil {
		res.PageHTML = html
	} else {
		c.logger.Debug("Landing page capture failed.", zap.Error(err))
	}

	res.BrokenLinkCount = c.countBrokenLinks(ctx, page, siteURL)

	c.probeSearchAutosuggest(ctx, page, res)
	c.probeQuickBuy(ctx, page, res)

	c.runJourney(ctx, page, siteURL, res)

	// Return home for a clean landing screenshot. If the site died mid
	// journey, fall back to shooting whatever page we are on.
	if err := page.Navigate(ctx, siteURL); err != nil {
		c.logger.Debug("Return to landing failed before screenshot.", zap.Error(err))
	}
	c.captureScreenshot(ctx, page, res)
}

func (c *Collector) captureScreenshot(ctx context.Context, page Page, res *Result) {
	if c.cfg.ScreenshotPath == "" {
		return
	}
	if err := page.Screenshot(ctx, c.cfg.ScreenshotPath); err != nil {
		c.logger.Debug("Screenshot capture failed.", zap.Error(err))
		return
	}
	res.ScreenshotPath = c.cfg.ScreenshotPath
}

// runCartPersistence opens a fresh session (nothing shared with the primary
// one) straight onto /cart and scans the body text for cart vocabulary. A
// populated cart page in a brand new session means the cart state survives
// via cookies or server-side sessions.
func (c *Collector) runCartPersistence(ctx context.Context, siteURL string, res *Result) {
	page, err := c.pages.NewPage(ctx, false)
	if err != nil {
		c.logger.Warn("Cart persistence session could not be created.", zap.Error(err))
		return
	}
	defer page.Close(ctx)

	cartURL := resolveURL(siteURL, "/cart")
	if err := page.Navigate(ctx, cartURL); err != nil {
		c.logger.Debug("Cart page navigation failed.",
			zap.String("url", cartURL), zap.Error(err))
		return
	}

	body, err := page.BodyText(ctx)
	if err != nil {
		c.logger.Debug("Cart page body read failed.", zap.Error(err))
		return
	}

	lower := strings.ToLower(body)
	for _, kw := range cartKeywords {
		if strings.Contains(lower, kw) {
			res.CartPersistence = 1
			return
		}
	}
}

// runMobile loads the site in a mobile-sized session and flags it responsive
// when the body does not overflow the viewport horizontally, within a small
// tolerance for scrollbar and subpixel noise.
func (c *Collector) runMobile(ctx context.Context, siteURL string, res *Result) {
	page, err := c.pages.NewPage(ctx, true)
	if err != nil {
		c.logger.Warn("Mobile session could not be created.", zap.Error(err))
		return
	}
	defer page.Close(ctx)

	if err := page.Navigate(ctx, siteURL); err != nil {
		c.logger.Debug("Mobile navigation failed.", zap.Error(err))
		return
	}

	width, err := page.ScrollWidth(ctx)
	if err != nil {
		c.logger.Debug("Mobile scroll width read failed.", zap.Error(err))
		return
	}

	if width <= page.ViewportWidth()+c.cfg.MobileTolerance {
		res.IsMobileResponsive = 1
	}
}
