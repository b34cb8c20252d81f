// File: internal/collectors/behavioral/result.go
package behavioral

// Result carries every behavioral and functional signal for one site. Every
// field is always present; failure shows up as the field's default, never as
// a missing value.
//
// Flags are 0/1 integers so they land in the dataset unchanged.
type Result struct {
	PopupCount           int `json:"popup_count"`
	HasGuestCheckout     int `json:"has_guest_checkout"`
	ClickDepthToCheckout int `json:"click_depth_to_checkout"`
	CartPersistence      int `json:"cart_persistence"`
	HasSearchAutosuggest int `json:"has_search_autosuggest"`
	HasQuickBuy          int `json:"has_quick_buy"`
	BrokenLinkCount      int `json:"broken_link_count"`
	IsMobileResponsive   int `json:"is_mobile_responsive"`

	// PageHTML is the landing document, handed to the trust collector.
	// Never persisted.
	PageHTML string `json:"-"`

	// ScreenshotPath points at the landing screenshot for the visual
	// collector. Empty when no screenshot could be captured.
	ScreenshotPath string `json:"-"`
}

// NewResult returns a Result holding the defined default for every signal:
// 0 for flags and counters, -1 for the unmeasurable click depth.
func NewResult() Result {
	return Result{ClickDepthToCheckout: -1}
}
