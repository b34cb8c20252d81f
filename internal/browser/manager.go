// File: internal/browser/manager.go
// Package browser owns the headless Chrome process and hands out isolated
// sessions. All sessions share one browser process but live in separate
// browser contexts, so cookies, storage and cart state never leak between
// them.
package browser

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/okabe-dev/cartwalk/internal/collectors/behavioral"
	"github.com/okabe-dev/cartwalk/internal/config"
)

const (
	launchProbeTimeout = 30 * time.Second
	disposeTimeout     = 10 * time.Second
)

// Manager launches the browser process once and creates isolated sessions
// inside it. It satisfies behavioral.PageFactory.
type Manager struct {
	logger *zap.Logger
	cfg    config.BrowserConfig

	// allocatorCtx manages the browser process. browserCtx is the
	// controller context attached to it, used for browser-level commands
	// like creating and disposing contexts.
	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc

	// contextCreationLock serializes browser context creation. Concurrent
	// CreateBrowserContext calls can wedge some Chrome builds.
	contextCreationLock sync.Mutex

	// wg tracks open sessions for a graceful shutdown.
	wg sync.WaitGroup
}

// NewManager starts the browser process and verifies it responds.
func NewManager(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Manager, error) {
	m := &Manager{
		logger: logger.Named("browser"),
		cfg:    cfg,
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, m.buildAllocatorOptions()...)
	m.allocatorCtx = allocCtx
	m.allocatorCancel = allocCancel

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	m.browserCtx = browserCtx
	m.browserCancel = browserCancel

	probeCtx, probeCancel := context.WithTimeout(browserCtx, launchProbeTimeout)
	defer probeCancel()
	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("browser failed to start or respond: %w", err)
	}

	m.logger.Info("Browser launched and responsive.")
	return m, nil
}

// buildAllocatorOptions assembles the launch flags for a quiet, container
// friendly browser instance.
func (m *Manager) buildAllocatorOptions() []chromedp.ExecAllocatorOption {
	var opts []chromedp.ExecAllocatorOption

	// Drop the enable-automation flag so storefronts treat the session
	// like an ordinary visitor. Options are opaque funcs, so override the
	// default with a false value, which chromedp omits from the command line.
	opts = append(opts, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Flag("enable-automation", false))

	opts = append(opts,
		chromedp.Flag("headless", m.cfg.Headless),
		chromedp.Flag("ignore-certificate-errors", m.cfg.IgnoreTLSErrors),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-gpu", m.cfg.Headless),
		chromedp.UserAgent(m.cfg.DesktopUserAgent),
	)

	for _, arg := range m.cfg.Args {
		parts := strings.SplitN(arg, "=", 2)
		name := strings.TrimPrefix(parts[0], "--")
		if len(parts) == 2 {
			opts = append(opts, chromedp.Flag(name, parts[1]))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}

	if runtime.GOOS == "linux" {
		opts = append(opts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-setuid-sandbox", true),
		)
	}

	return opts
}

// NewPage creates a fully isolated session with a desktop or mobile persona.
func (m *Manager) NewPage(ctx context.Context, mobile bool) (behavioral.Page, error) {
	persona := desktopPersona(m.cfg)
	if mobile {
		persona = mobilePersona(m.cfg)
	}
	return m.newSession(ctx, persona)
}

func (m *Manager) newSession(ctx context.Context, persona Persona) (*Session, error) {
	m.contextCreationLock.Lock()
	defer m.contextCreationLock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before session creation: %w", err)
	}
	if err := m.browserCtx.Err(); err != nil {
		return nil, fmt.Errorf("browser is shut down: %w", err)
	}

	var browserContextID cdp.BrowserContextID
	var targetID target.ID
	err := chromedp.Run(m.browserCtx, chromedp.ActionFunc(func(c context.Context) error {
		var err error
		browserContextID, err = target.CreateBrowserContext().Do(c)
		if err != nil {
			return fmt.Errorf("failed to create browser context: %w", err)
		}
		targetID, err = target.CreateTarget("about:blank").
			WithBrowserContextID(browserContextID).
			Do(c)
		if err != nil {
			if derr := target.DisposeBrowserContext(browserContextID).Do(c); derr != nil {
				m.logger.Warn("Failed to dispose browser context after target creation failure.",
					zap.String("browser_context_id", string(browserContextID)),
					zap.Error(derr))
			}
			return fmt.Errorf("failed to create target: %w", err)
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}

	sessionCtx, sessionCancel := chromedp.NewContext(m.browserCtx, chromedp.WithTargetID(targetID))

	s := &Session{
		mgr:              m,
		ctx:              sessionCtx,
		cancel:           sessionCancel,
		browserContextID: browserContextID,
		persona:          persona,
		cfg:              m.cfg,
		logger: m.logger.With(
			zap.String("persona", persona.Name),
			zap.String("browser_context_id", string(browserContextID)),
		),
	}

	// Close releases this slot, so it must be reserved before any path
	// that can call Close.
	m.wg.Add(1)

	if err := s.applyPersona(ctx); err != nil {
		s.Close(ctx)
		return nil, fmt.Errorf("failed to apply persona: %w", err)
	}

	s.logger.Debug("Session created.")
	return s, nil
}

// disposeBrowserContext is best-effort cleanup for a context whose session
// never came up, or whose session is closing.
func (m *Manager) disposeBrowserContext(id cdp.BrowserContextID) {
	if id == "" || m.browserCtx.Err() != nil {
		return
	}
	disposeCtx, cancel := context.WithTimeout(m.browserCtx, disposeTimeout)
	defer cancel()
	if err := chromedp.Run(disposeCtx, target.DisposeBrowserContext(id)); err != nil {
		if m.browserCtx.Err() == nil {
			m.logger.Warn("Failed to dispose browser context. It may be orphaned.",
				zap.String("browser_context_id", string(id)),
				zap.Error(err))
		}
	}
}

// Shutdown waits for open sessions to close, then terminates the browser
// process. The context bounds how long the wait may take.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Browser shutdown initiated. Waiting for open sessions.")

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("All sessions closed.")
	case <-ctx.Done():
		m.logger.Warn("Shutdown deadline exceeded. Forcing browser termination.", zap.Error(ctx.Err()))
	}

	m.browserCancel()
	m.allocatorCancel()
	<-m.allocatorCtx.Done()
	return nil
}
