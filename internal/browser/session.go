// File: internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/okabe-dev/cartwalk/internal/collectors/behavioral"
	"github.com/okabe-dev/cartwalk/internal/config"
)

// Session is one isolated browser context plus its tab. It implements
// behavioral.Page. Navigation and actions run under separate timeouts so a
// slow page load cannot consume the time reserved for interactions.
type Session struct {
	mgr              *Manager
	ctx              context.Context
	cancel           context.CancelFunc
	browserContextID cdp.BrowserContextID
	persona          Persona
	cfg              config.BrowserConfig
	logger           *zap.Logger
	closeOnce        sync.Once
}

// applyPersona configures viewport metrics and user agent before the first
// navigation.
func (s *Session) applyPersona(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(s.ctx,
		emulation.SetDeviceMetricsOverride(
			int64(s.persona.Width), int64(s.persona.Height), 1.0, s.persona.Mobile),
		emulation.SetUserAgentOverride(s.persona.UserAgent),
	)
}

// Navigate loads the URL, waits for the body element and then a fixed
// post-load settle so SPA storefronts get a chance to hydrate.
func (s *Session) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := s.scope(ctx, s.cfg.NavigationTimeout)
	defer cancel()

	tasks := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if s.cfg.PostLoadWait > 0 {
		tasks = append(tasks, chromedp.Sleep(s.cfg.PostLoadWait))
	}
	if err := chromedp.Run(navCtx, tasks); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// IsVisible reports whether the selector has a rendered match.
func (s *Session) IsVisible(ctx context.Context, sel behavioral.Selector) (bool, error) {
	var visible bool
	if err := s.eval(ctx, visibleScript(sel), &visible); err != nil {
		return false, err
	}
	return visible, nil
}

// Click clicks the first visible match via a synthetic DOM click.
func (s *Session) Click(ctx context.Context, sel behavioral.Selector) error {
	var clicked bool
	if err := s.eval(ctx, clickScript(sel), &clicked); err != nil {
		return err
	}
	if !clicked {
		return behavioral.ErrNoMatch
	}
	return nil
}

// Type focuses the first visible match and sets its value, firing input and
// change events so autosuggest handlers react.
func (s *Session) Type(ctx context.Context, sel behavioral.Selector, text string) error {
	var ok bool
	if err := s.eval(ctx, setValueScript(sel, text), &ok); err != nil {
		return err
	}
	if !ok {
		return behavioral.ErrNoMatch
	}
	return nil
}

// Clear empties the first visible match.
func (s *Session) Clear(ctx context.Context, sel behavioral.Selector) error {
	return s.Type(ctx, sel, "")
}

// AnchorHrefs returns the raw hrefs of at most limit matching anchors.
func (s *Session) AnchorHrefs(ctx context.Context, query string, limit int) ([]string, error) {
	var hrefs []string
	if err := s.eval(ctx, anchorHrefsScript(query, limit), &hrefs); err != nil {
		return nil, err
	}
	return hrefs, nil
}

// HTML returns the serialized document.
func (s *Session) HTML(ctx context.Context) (string, error) {
	actionCtx, cancel := s.scope(ctx, s.cfg.ActionTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(actionCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to capture document: %w", err)
	}
	return html, nil
}

// BodyText returns the rendered text of the body.
func (s *Session) BodyText(ctx context.Context) (string, error) {
	var text string
	if err := s.eval(ctx, bodyTextScript, &text); err != nil {
		return "", err
	}
	return text, nil
}

// ScrollWidth returns document.body.scrollWidth.
func (s *Session) ScrollWidth(ctx context.Context) (int, error) {
	var width int
	if err := s.eval(ctx, scrollWidthScript, &width); err != nil {
		return 0, err
	}
	return width, nil
}

// ViewportWidth returns the persona's viewport width.
func (s *Session) ViewportWidth() int {
	return s.persona.Width
}

// Screenshot captures the current viewport to path.
func (s *Session) Screenshot(ctx context.Context, path string) error {
	shotCtx, cancel := s.scope(ctx, s.cfg.NavigationTimeout)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(shotCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return fmt.Errorf("screenshot capture failed: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("screenshot write failed: %w", err)
	}
	return nil
}

// Close disposes the session's browser context on every exit path and
// releases its shutdown slot exactly once.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.logger.Debug("Closing session.")
		s.cancel()
		s.mgr.disposeBrowserContext(s.browserContextID)
		s.mgr.wg.Done()
	})
	return nil
}

// eval runs a script in the page under the action timeout.
func (s *Session) eval(ctx context.Context, script string, out any) error {
	actionCtx, cancel := s.scope(ctx, s.cfg.ActionTimeout)
	defer cancel()

	if err := chromedp.Run(actionCtx, chromedp.Evaluate(script, out)); err != nil {
		return fmt.Errorf("script evaluation failed: %w", err)
	}
	return nil
}

// scope derives a deadline-bounded context from the session, ending early if
// the caller's context ends.
func (s *Session) scope(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	scoped, cancel := context.WithTimeout(s.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return scoped, func() {
		stop()
		cancel()
	}
}
