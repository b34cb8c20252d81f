// File: internal/dataset/row.go
// Package dataset turns collector results into dataset rows and persists
// them, to CSV always and to Postgres when configured.
package dataset

import (
	"strconv"
	"time"

	"github.com/okabe-dev/cartwalk/internal/collectors/behavioral"
	"github.com/okabe-dev/cartwalk/internal/collectors/performance"
	"github.com/okabe-dev/cartwalk/internal/collectors/trust"
	"github.com/okabe-dev/cartwalk/internal/collectors/visual"
)

// Columns is the fixed output order. Downstream feature extraction depends
// on it, so it never changes shape between runs.
var Columns = []string{
	// Meta
	"url", "collected_at",
	// Behavioral
	"popup_count", "has_guest_checkout", "click_depth_to_checkout", "cart_persistence",
	// Functional
	"has_search_autosuggest", "has_quick_buy", "broken_link_count", "is_mobile_responsive",
	// Performance
	"lcp_ms", "cls", "tbt_ms", "ttfb_ms", "performance_score",
	// Trust
	"has_phone", "has_email", "has_address",
	"has_return_policy", "has_privacy_policy", "has_tos",
	"has_social_links", "has_payment_badges", "trust_score",
	// Visual
	"visual_clutter_score", "visual_modern_score", "visual_image_quality", "visual_overall",
	// Label, filled by the label command
	"label",
}

// Row is one collected site. Failed rows keep only URL and timestamp so
// attempts stay auditable without polluting the signal columns.
type Row struct {
	URL         string
	CollectedAt time.Time
	Behavioral  behavioral.Result
	Performance performance.Result
	Trust       trust.Result
	Visual      visual.Scores
	Label       string
	Failed      bool
}

// MinimalRow marks a URL as attempted but not collected.
func MinimalRow(url string, at time.Time) Row {
	return Row{URL: url, CollectedAt: at, Failed: true}
}

// Values renders the row in Columns order.
func (r Row) Values() []string {
	meta := []string{r.URL, r.CollectedAt.UTC().Format(time.RFC3339)}
	if r.Failed {
		out := make([]string, len(Columns))
		copy(out, meta)
		return out
	}

	return append(meta,
		itoa(r.Behavioral.PopupCount),
		itoa(r.Behavioral.HasGuestCheckout),
		itoa(r.Behavioral.ClickDepthToCheckout),
		itoa(r.Behavioral.CartPersistence),
		itoa(r.Behavioral.HasSearchAutosuggest),
		itoa(r.Behavioral.HasQuickBuy),
		itoa(r.Behavioral.BrokenLinkCount),
		itoa(r.Behavioral.IsMobileResponsive),
		ftoa(r.Performance.LCPMs),
		ftoa(r.Performance.CLS),
		ftoa(r.Performance.TBTMs),
		ftoa(r.Performance.TTFBMs),
		ftoa(r.Performance.Score),
		itoa(r.Trust.HasPhone),
		itoa(r.Trust.HasEmail),
		itoa(r.Trust.HasAddress),
		itoa(r.Trust.HasReturnPolicy),
		itoa(r.Trust.HasPrivacyPolicy),
		itoa(r.Trust.HasTOS),
		itoa(r.Trust.HasSocialLinks),
		itoa(r.Trust.HasPaymentBadges),
		itoa(r.Trust.TrustScore),
		itoa(r.Visual.ClutterScore),
		itoa(r.Visual.ModernScore),
		itoa(r.Visual.ImageQuality),
		itoa(r.Visual.Overall),
		r.Label,
	)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
