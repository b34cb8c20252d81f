// File: internal/collectors/behavioral/journey.go
package behavioral

import (
	"context"

	"go.uber.org/zap"
)

// Journey states. The depth value is the state's ordinal, committed to the
// result only when checkout is reached.
const (
	depthLanded     = 1
	depthOnProduct  = 2
	depthInCartFlow = 3
	depthInCart     = 4
	depthAtCheckout = 5
)

// runJourney walks the shopper path landing -> product -> add to cart ->
// cart -> checkout. Every transition is guarded; the first guard that fails
// ends the journey and leaves ClickDepthToCheckout at its default. Overlay
// dismissal runs again after every navigating transition and its count
// accumulates into the result.
func (c *Collector) runJourney(ctx context.Context, page Page, baseURL string, res *Result) {
	depth := depthLanded

	productURL, ok := c.findProductURL(ctx, page, baseURL)
	if !ok || productURL == baseURL {
		c.logger.Debug("No product page found, journey ends on landing.")
		return
	}

	if err := page.Navigate(ctx, productURL); err != nil {
		c.logger.Debug("Product page navigation failed.",
			zap.String("url", productURL), zap.Error(err))
		return
	}
	res.PopupCount += c.dismissOverlays(ctx, page)
	depth = depthOnProduct

	// The PDP is the second chance for the quick buy probe.
	if res.HasQuickBuy == 0 && c.anyVisible(ctx, page, quickBuyCandidates) {
		res.HasQuickBuy = 1
	}

	if outcome := c.clickFirst(ctx, page, "add_to_cart", addToCartCandidates); outcome != Matched {
		c.logger.Debug("Add to cart not reached.", zap.Stringer("outcome", outcome))
		return
	}
	c.settle(ctx, c.cfg.CartSettle)
	depth = depthInCartFlow

	if outcome := c.clickFirst(ctx, page, "cart", cartCandidates); outcome != Matched {
		c.logger.Debug("Cart not reached.", zap.Stringer("outcome", outcome))
		return
	}
	c.settle(ctx, c.cfg.CartSettle)
	res.PopupCount += c.dismissOverlays(ctx, page)
	depth = depthInCart

	if outcome := c.clickFirst(ctx, page, "checkout", checkoutCandidates); outcome != Matched {
		c.logger.Debug("Checkout not reached.", zap.Stringer("outcome", outcome))
		return
	}
	c.settle(ctx, c.cfg.CartSettle)
	res.PopupCount += c.dismissOverlays(ctx, page)
	depth = depthAtCheckout

	res.ClickDepthToCheckout = depth
	c.logger.Info("Checkout reached.", zap.Int("click_depth", depth))

	if c.anyVisible(ctx, page, guestCheckoutCandidates) {
		res.HasGuestCheckout = 1
	}
}
