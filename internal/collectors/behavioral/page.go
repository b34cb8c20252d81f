// File: internal/collectors/behavioral/page.go
package behavioral

import (
	"context"
	"errors"
)

// ErrNoMatch is returned by Page actions when no visible element satisfies
// the selector. It marks a candidate miss, not a page failure.
var ErrNoMatch = errors.New("no visible element matched selector")

// SelectorKind distinguishes how a Selector finds its element.
type SelectorKind int

const (
	// ByCSS matches with a plain CSS query.
	ByCSS SelectorKind = iota
	// ByText matches elements from a CSS scope whose rendered text contains
	// a substring, compared case-insensitively.
	ByText
)

// Selector is a single locator candidate. Candidate lists are ordered by
// specificity and the first visible match wins.
type Selector struct {
	Kind  SelectorKind
	Query string
	Text  string
}

// CSS builds a plain CSS selector candidate.
func CSS(query string) Selector {
	return Selector{Kind: ByCSS, Query: query}
}

// Text builds a text-content candidate scoped to the given CSS query.
func Text(scope, text string) Selector {
	return Selector{Kind: ByText, Query: scope, Text: text}
}

// String renders the selector for log output.
func (s Selector) String() string {
	if s.Kind == ByText {
		return s.Query + " ~ " + `"` + s.Text + `"`
	}
	return s.Query
}

// Page is the surface the engine drives. The production implementation is a
// chromedp-backed browser session; tests script it.
type Page interface {
	// Navigate loads a URL, waits for the document body and a post-load
	// settle period.
	Navigate(ctx context.Context, url string) error

	// IsVisible reports whether any element matching the selector is
	// rendered with non-zero size.
	IsVisible(ctx context.Context, sel Selector) (bool, error)

	// Click clicks the first visible match. Returns ErrNoMatch when nothing
	// visible matches.
	Click(ctx context.Context, sel Selector) error

	// Type focuses the first visible match and enters text into it.
	Type(ctx context.Context, sel Selector, text string) error

	// Clear empties the value of the first visible match.
	Clear(ctx context.Context, sel Selector) error

	// AnchorHrefs returns the raw href attributes of at most limit anchors
	// matching the query, in document order.
	AnchorHrefs(ctx context.Context, query string, limit int) ([]string, error)

	// HTML returns the full serialized document.
	HTML(ctx context.Context) (string, error)

	// BodyText returns the rendered text content of the document body.
	BodyText(ctx context.Context) (string, error)

	// ScrollWidth returns document.body.scrollWidth in CSS pixels.
	ScrollWidth(ctx context.Context) (int, error)

	// ViewportWidth returns the width the page was created with.
	ViewportWidth() int

	// Screenshot captures the current viewport to a file.
	Screenshot(ctx context.Context, path string) error

	// Close tears the page and its isolated browser context down.
	Close(ctx context.Context) error
}

// PageFactory creates isolated pages. Each page gets its own cookie jar and
// storage, so two pages from the same factory share nothing.
type PageFactory interface {
	NewPage(ctx context.Context, mobile bool) (Page, error)
}

// LinkChecker reports the HTTP status of a URL for the link health sampler.
type LinkChecker interface {
	Status(ctx context.Context, url string) (int, error)
}
