// File: internal/collectors/behavioral/links.go
package behavioral

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// linkCheckConcurrency bounds parallel probe requests against one site.
const linkCheckConcurrency = 4

// countBrokenLinks samples navigation links from the current page and counts
// hard 404s. Fragments, mailto:, tel: and cross-origin links are skipped and
// the sample is capped before filtering, matching how a shopper would only
// ever touch the first handful of nav entries. Per-link failures (timeouts,
// DNS, TLS) are not broken links and are silently excluded.
func (c *Collector) countBrokenLinks(ctx context.Context, page Page, baseURL string) int {
	hrefs, err := page.AnchorHrefs(ctx, navLinkQuery, c.cfg.LinkSampleSize)
	if err != nil {
		c.logger.Debug("Nav link scan failed.", zap.Error(err))
		return 0
	}

	origin := ""
	if base, err := url.Parse(baseURL); err == nil {
		origin = base.Host
	}

	seen := make(map[string]struct{}, len(hrefs))
	var targets []string
	for _, href := range hrefs {
		if href == "" {
			continue
		}
		if _, dup := seen[href]; dup {
			continue
		}
		if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
			continue
		}
		full := resolveURL(baseURL, href)
		if parsed, err := url.Parse(full); err != nil || parsed.Host != origin {
			continue
		}
		seen[href] = struct{}{}
		targets = append(targets, full)
	}

	var broken atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(linkCheckConcurrency)
	for _, target := range targets {
		target := target
		g.Go(func() error {
			status, err := c.links.Status(gctx, target)
			if err != nil {
				return nil
			}
			if status == http.StatusNotFound {
				broken.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	return int(broken.Load())
}

// HTTPLinkChecker probes link health with plain GET requests.
type HTTPLinkChecker struct {
	client *http.Client
}

// NewHTTPLinkChecker builds a checker with a bounded per-request timeout.
func NewHTTPLinkChecker(timeout time.Duration) *HTTPLinkChecker {
	return &HTTPLinkChecker{
		client: &http.Client{Timeout: timeout},
	}
}

// Status fetches the URL and returns its HTTP status code.
func (h *HTTPLinkChecker) Status(ctx context.Context, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<12))
	return resp.StatusCode, nil
}
