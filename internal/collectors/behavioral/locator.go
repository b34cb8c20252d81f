// File: internal/collectors/behavioral/locator.go
package behavioral

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Outcome is the result of walking a candidate list.
type Outcome int

const (
	// NoMatch means no candidate had a visible element.
	NoMatch Outcome = iota
	// Matched means a candidate was found and the action succeeded.
	Matched
	// ActionFailed means at least one candidate was visible but every
	// attempted action on it errored.
	ActionFailed
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case ActionFailed:
		return "action_failed"
	default:
		return "no_match"
	}
}

// clickFirst walks the candidate list and clicks the first visible match.
// Candidate errors mean "try the next one"; the walk itself never fails.
func (c *Collector) clickFirst(ctx context.Context, page Page, target string, candidates []Selector) Outcome {
	sawVisible := false
	for _, sel := range candidates {
		visible, err := page.IsVisible(ctx, sel)
		if err != nil || !visible {
			continue
		}
		sawVisible = true
		if err := page.Click(ctx, sel); err != nil {
			if !errors.Is(err, ErrNoMatch) {
				c.logger.Debug("Candidate click failed, trying next.",
					zap.String("target", target),
					zap.Stringer("selector", sel),
					zap.Error(err))
			}
			continue
		}
		c.logger.Debug("Candidate clicked.",
			zap.String("target", target),
			zap.Stringer("selector", sel))
		return Matched
	}
	if sawVisible {
		return ActionFailed
	}
	return NoMatch
}

// anyVisible reports whether any candidate currently has a visible element.
// Used for pure visibility probes (quick buy, guest checkout, autosuggest).
func (c *Collector) anyVisible(ctx context.Context, page Page, candidates []Selector) bool {
	for _, sel := range candidates {
		visible, err := page.IsVisible(ctx, sel)
		if err == nil && visible {
			return true
		}
	}
	return false
}

// dismissOverlays closes popups and consent banners. Each round closes at
// most one overlay and pauses so any replacement can render; the round
// ceiling keeps infinite popup chains from stalling the session. Returns the
// number of overlays dismissed.
func (c *Collector) dismissOverlays(ctx context.Context, page Page) int {
	count := 0
	for round := 0; round < c.cfg.OverlayRounds; round++ {
		dismissed := false
		for _, sel := range closeOverlayCandidates {
			visible, err := page.IsVisible(ctx, sel)
			if err != nil || !visible {
				continue
			}
			if err := page.Click(ctx, sel); err != nil {
				continue
			}
			count++
			dismissed = true
			c.settle(ctx, c.cfg.OverlaySettle)
			break
		}
		if !dismissed {
			break
		}
	}
	if count > 0 {
		c.logger.Debug("Overlays dismissed.", zap.Int("count", count))
	}
	return count
}

// settle is a context-aware pause between interactions.
func (c *Collector) settle(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
