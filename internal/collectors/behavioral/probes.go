// File: internal/collectors/behavioral/probes.go
package behavioral

import (
	"context"
)

// probeSearchAutosuggest types the probe query into the first visible search
// input and looks for a suggestion panel after the settle wait. The input is
// cleared afterwards so the typed query cannot leak into later steps.
func (c *Collector) probeSearchAutosuggest(ctx context.Context, page Page, res *Result) {
	for _, sel := range searchInputCandidates {
		visible, err := page.IsVisible(ctx, sel)
		if err != nil || !visible {
			continue
		}
		if err := page.Click(ctx, sel); err != nil {
			continue
		}
		if err := page.Type(ctx, sel, c.cfg.SearchQuery); err != nil {
			continue
		}
		c.settle(ctx, c.cfg.SearchSettle)

		if c.anyVisible(ctx, page, autosuggestCandidates) {
			res.HasSearchAutosuggest = 1
		}

		// Best effort. A stuck query is worse than an uncleared error.
		_ = page.Clear(ctx, sel)
		return
	}
}

// probeQuickBuy is a pure visibility probe, it never clicks anything.
func (c *Collector) probeQuickBuy(ctx context.Context, page Page, res *Result) {
	if c.anyVisible(ctx, page, quickBuyCandidates) {
		res.HasQuickBuy = 1
	}
}
