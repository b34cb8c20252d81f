// File: internal/collectors/behavioral/locator_test.go
package behavioral

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClickFirst(t *testing.T) {
	t.Parallel()

	t.Run("first visible candidate wins", func(t *testing.T) {
		t.Parallel()

		page := newFakePage()
		page.show(cartCandidates[2], cartCandidates[5])

		c := newTestCollector(&fakeFactory{}, nil)
		outcome := c.clickFirst(context.Background(), page, "cart", cartCandidates)

		require.Equal(t, Matched, outcome)
		require.Len(t, page.clicked, 1)
		assert.Equal(t, cartCandidates[2].String(), page.clicked[0],
			"list order decides, not map order")
	})

	t.Run("no visible candidate", func(t *testing.T) {
		t.Parallel()

		page := newFakePage()
		c := newTestCollector(&fakeFactory{}, nil)

		outcome := c.clickFirst(context.Background(), page, "cart", cartCandidates)
		assert.Equal(t, NoMatch, outcome)
		assert.Empty(t, page.clicked)
	})

	t.Run("visible but click fails on every candidate", func(t *testing.T) {
		t.Parallel()

		page := newFakePage()
		page.show(checkoutCandidates[0])
		page.clickErr[checkoutCandidates[0].String()] = errors.New("element detached")

		c := newTestCollector(&fakeFactory{}, nil)
		outcome := c.clickFirst(context.Background(), page, "checkout", checkoutCandidates)
		assert.Equal(t, ActionFailed, outcome)
	})

	t.Run("failed candidate falls through to the next", func(t *testing.T) {
		t.Parallel()

		page := newFakePage()
		page.show(checkoutCandidates[0], checkoutCandidates[1])
		page.clickErr[checkoutCandidates[0].String()] = errors.New("element detached")

		c := newTestCollector(&fakeFactory{}, nil)
		outcome := c.clickFirst(context.Background(), page, "checkout", checkoutCandidates)

		require.Equal(t, Matched, outcome)
		assert.Equal(t, checkoutCandidates[1].String(), page.clicked[1])
	})
}

func TestDismissOverlays(t *testing.T) {
	t.Parallel()

	t.Run("no overlays", func(t *testing.T) {
		t.Parallel()

		page := newFakePage()
		c := newTestCollector(&fakeFactory{}, nil)
		assert.Zero(t, c.dismissOverlays(context.Background(), page))
	})

	t.Run("one overlay per round, gone after dismissal", func(t *testing.T) {
		t.Parallel()

		page := newFakePage()
		page.show(closeOverlayCandidates[4])
		page.onClick = func(p *fakePage, key string) {
			p.hide(closeOverlayCandidates[4])
		}

		c := newTestCollector(&fakeFactory{}, nil)
		assert.Equal(t, 1, c.dismissOverlays(context.Background(), page))
	})

	t.Run("chained overlays count individually", func(t *testing.T) {
		t.Parallel()

		// Closing the cookie banner reveals a newsletter modal.
		page := newFakePage()
		page.show(closeOverlayCandidates[9])
		page.onClick = func(p *fakePage, key string) {
			switch key {
			case closeOverlayCandidates[9].String():
				p.hide(closeOverlayCandidates[9])
				p.show(closeOverlayCandidates[7])
			case closeOverlayCandidates[7].String():
				p.hide(closeOverlayCandidates[7])
			}
		}

		c := newTestCollector(&fakeFactory{}, nil)
		assert.Equal(t, 2, c.dismissOverlays(context.Background(), page))
	})

	t.Run("round ceiling stops an endless popup chain", func(t *testing.T) {
		t.Parallel()

		// The overlay never goes away no matter how often it is closed.
		page := newFakePage()
		page.show(closeOverlayCandidates[0])

		c := newTestCollector(&fakeFactory{}, nil)
		count := c.dismissOverlays(context.Background(), page)

		assert.Equal(t, c.cfg.OverlayRounds, count)
		assert.Len(t, page.clicked, c.cfg.OverlayRounds)
	})

	t.Run("refused click ends the loop", func(t *testing.T) {
		t.Parallel()

		page := newFakePage()
		page.show(closeOverlayCandidates[0])
		page.clickErr[closeOverlayCandidates[0].String()] = errors.New("obscured")

		c := newTestCollector(&fakeFactory{}, nil)
		assert.Zero(t, c.dismissOverlays(context.Background(), page))
	})
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "matched", Matched.String())
	assert.Equal(t, "action_failed", ActionFailed.String())
	assert.Equal(t, "no_match", NoMatch.String())
}
