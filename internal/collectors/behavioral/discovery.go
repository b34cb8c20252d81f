// File: internal/collectors/behavioral/discovery.go
package behavioral

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// findProductURL locates a product detail page from the landing page. Three
// strategies run in order and the first hit wins:
//
//  1. anchors whose href matches the product URL pattern
//  2. the first anchor inside a product grid container
//  3. a windowed slice of anchors, skipping the leading nav links, accepting
//     same-site hrefs without fragments
//
// Returns the absolute URL and false when every strategy comes up empty.
func (c *Collector) findProductURL(ctx context.Context, page Page, baseURL string) (string, bool) {
	anchors, err := page.AnchorHrefs(ctx, "a[href]", c.cfg.AnchorScanLimit)
	if err != nil {
		c.logger.Debug("Anchor scan failed.", zap.Error(err))
		anchors = nil
	}

	// Strategy 1: hrefs that look like PDPs.
	for _, href := range anchors {
		if href != "" && productLinkPattern.MatchString(href) {
			return resolveURL(baseURL, href), true
		}
	}

	// Strategy 2: first link inside a product grid container.
	for _, query := range gridQueries {
		hrefs, err := page.AnchorHrefs(ctx, query, 1)
		if err != nil || len(hrefs) == 0 || hrefs[0] == "" {
			continue
		}
		return resolveURL(baseURL, hrefs[0]), true
	}

	// Strategy 3: anchors past the usual nav block. Site-relative or
	// same-site absolute, and no fragment links.
	lo, hi := 5, 30
	if lo > len(anchors) {
		lo = len(anchors)
	}
	if hi > len(anchors) {
		hi = len(anchors)
	}
	for _, href := range anchors[lo:hi] {
		if href == "" || strings.Contains(href, "#") {
			continue
		}
		if strings.HasPrefix(href, "/") || strings.HasPrefix(href, baseURL) {
			return resolveURL(baseURL, href), true
		}
	}

	return "", false
}

// resolveURL resolves href against base. Unparseable input falls back to the
// raw href so the caller can still attempt navigation.
func resolveURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
