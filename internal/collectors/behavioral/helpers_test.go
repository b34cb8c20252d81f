// File: internal/collectors/behavioral/helpers_test.go
package behavioral

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/okabe-dev/cartwalk/internal/config"
)

// testEngineConfig returns an engine config with zeroed settle waits so the
// suite runs instantly.
func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		OverlayRounds:    5,
		OverlaySettle:    0,
		SearchQuery:      "shirt",
		SearchSettle:     0,
		CartSettle:       0,
		AnchorScanLimit:  60,
		LinkSampleSize:   10,
		LinkCheckTimeout: time.Second,
		MobileTolerance:  20,
		ScreenshotPath:   "/tmp/cartwalk_test_screenshot.png",
	}
}

func newTestCollector(pages PageFactory, links LinkChecker) *Collector {
	if links == nil {
		links = &fakeLinkChecker{}
	}
	return New(pages, links, testEngineConfig(), zap.NewNop())
}

// fakePage scripts a Page. Behavior is keyed by Selector.String().
type fakePage struct {
	visible     map[string]bool
	clickErr    map[string]error
	anchors     map[string][]string
	html        string
	bodyText    string
	scrollWidth int
	viewWidth   int
	navErr      map[string]error

	// onClick runs after a successful visibility gated click, letting tests
	// mutate page state (close an overlay, reveal the next one).
	onClick func(p *fakePage, key string)
	// onNavigate swaps page state when the engine moves between URLs.
	onNavigate func(p *fakePage, url string)

	navigated   []string
	clicked     []string
	typed       []string
	cleared     []string
	screenshots []string

	navigateErr   error
	screenshotErr error
	closed        bool
}

func newFakePage() *fakePage {
	return &fakePage{
		visible:   map[string]bool{},
		clickErr:  map[string]error{},
		anchors:   map[string][]string{},
		navErr:    map[string]error{},
		viewWidth: 1440,
	}
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.navigated = append(p.navigated, url)
	if err := p.navErr[url]; err != nil {
		return err
	}
	if p.navigateErr != nil {
		return p.navigateErr
	}
	if p.onNavigate != nil {
		p.onNavigate(p, url)
	}
	return nil
}

func (p *fakePage) IsVisible(ctx context.Context, sel Selector) (bool, error) {
	return p.visible[sel.String()], nil
}

func (p *fakePage) Click(ctx context.Context, sel Selector) error {
	key := sel.String()
	p.clicked = append(p.clicked, key)
	if err := p.clickErr[key]; err != nil {
		return err
	}
	if !p.visible[key] {
		return ErrNoMatch
	}
	if p.onClick != nil {
		p.onClick(p, key)
	}
	return nil
}

func (p *fakePage) Type(ctx context.Context, sel Selector, text string) error {
	if !p.visible[sel.String()] {
		return ErrNoMatch
	}
	p.typed = append(p.typed, text)
	return nil
}

func (p *fakePage) Clear(ctx context.Context, sel Selector) error {
	p.cleared = append(p.cleared, sel.String())
	return nil
}

func (p *fakePage) AnchorHrefs(ctx context.Context, query string, limit int) ([]string, error) {
	hrefs := p.anchors[query]
	if len(hrefs) > limit {
		hrefs = hrefs[:limit]
	}
	return hrefs, nil
}

func (p *fakePage) HTML(ctx context.Context) (string, error)     { return p.html, nil }
func (p *fakePage) BodyText(ctx context.Context) (string, error) { return p.bodyText, nil }
func (p *fakePage) ScrollWidth(ctx context.Context) (int, error) { return p.scrollWidth, nil }
func (p *fakePage) ViewportWidth() int                           { return p.viewWidth }

func (p *fakePage) Screenshot(ctx context.Context, path string) error {
	if p.screenshotErr != nil {
		return p.screenshotErr
	}
	p.screenshots = append(p.screenshots, path)
	return nil
}

func (p *fakePage) Close(ctx context.Context) error {
	p.closed = true
	return nil
}

// show marks selectors visible.
func (p *fakePage) show(sels ...Selector) {
	for _, sel := range sels {
		p.visible[sel.String()] = true
	}
}

// hide removes visibility.
func (p *fakePage) hide(sels ...Selector) {
	for _, sel := range sels {
		p.visible[sel.String()] = false
	}
}

// fakeFactory hands out scripted pages: desktop pages in order (primary
// session first, cart persistence second), then the mobile page.
type fakeFactory struct {
	desktop    []*fakePage
	mobile     []*fakePage
	desktopErr error
	mobileErr  error
	di, mi     int
}

func (f *fakeFactory) NewPage(ctx context.Context, mobile bool) (Page, error) {
	if mobile {
		if f.mobileErr != nil {
			return nil, f.mobileErr
		}
		if f.mi >= len(f.mobile) {
			return newFakePage(), nil
		}
		p := f.mobile[f.mi]
		f.mi++
		return p, nil
	}
	if f.desktopErr != nil {
		return nil, f.desktopErr
	}
	if f.di >= len(f.desktop) {
		return newFakePage(), nil
	}
	p := f.desktop[f.di]
	f.di++
	return p, nil
}

// fakeLinkChecker maps URLs to statuses. Unknown URLs are 200. The checker
// is hit concurrently, hence the lock.
type fakeLinkChecker struct {
	mu       sync.Mutex
	statuses map[string]int
	errs     map[string]error
	requests []string
}

func (f *fakeLinkChecker) Status(ctx context.Context, url string) (int, error) {
	f.mu.Lock()
	f.requests = append(f.requests, url)
	status, ok := f.statuses[url]
	err := f.errs[url]
	f.mu.Unlock()

	if err != nil {
		return 0, err
	}
	if ok {
		return status, nil
	}
	return 200, nil
}

func (f *fakeLinkChecker) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}
