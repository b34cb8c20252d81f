// File: internal/collectors/behavioral/selectors.go
package behavioral

import "regexp"

// Candidate lists for each semantic target, ordered by specificity. The
// cascade walks each list top to bottom and stops at the first visible match,
// so the specific entries must stay ahead of the catch-alls.

var closeOverlayCandidates = []Selector{
	CSS("[aria-label*='close' i]"),
	CSS("[aria-label*='dismiss' i]"),
	Text("button", "×"),
	Text("button", "✕"),
	Text("button", "close"),
	Text("button", "no thanks"),
	Text("button", "maybe later"),
	CSS(".modal-close"),
	CSS(".popup-close"),
	CSS("#onetrust-accept-btn-handler"), // OneTrust cookie banner
	CSS(".cc-btn.cc-dismiss"),           // Cookie Consent
	CSS("[data-testid='close-button']"),
	CSS("[class*='close']"),
	CSS("[id*='close']"),
}

var cartCandidates = []Selector{
	CSS("a[href*='cart']"),
	CSS("a[href*='basket']"),
	CSS("a[href*='bag']"),
	CSS("[aria-label*='cart' i]"),
	CSS("[aria-label*='basket' i]"),
	CSS("[data-testid*='cart']"),
	CSS(".cart-icon"),
	CSS("#cart"),
}

var checkoutCandidates = []Selector{
	CSS("a[href*='checkout']"),
	Text("button", "checkout"),
	Text("button", "proceed to checkout"),
	Text("button", "go to checkout"),
	Text("a", "checkout"),
}

var guestCheckoutCandidates = []Selector{
	Text("button", "guest"),
	Text("a", "guest"),
	Text("button", "continue as guest"),
	Text("a", "continue as guest"),
	CSS("input[value*='guest' i]"),
	CSS("[data-testid*='guest']"),
}

var addToCartCandidates = []Selector{
	Text("button", "add to cart"),
	Text("button", "add to bag"),
	Text("button", "add to basket"),
	Text("button", "buy now"),
	CSS("[data-testid*='add-to-cart']"),
	CSS(".add-to-cart"),
	CSS("#add-to-cart"),
	CSS("button[name*='add']"),
}

var searchInputCandidates = []Selector{
	CSS("input[type='search']"),
	CSS("input[name='q']"),
	CSS("input[name='query']"),
	CSS("input[placeholder*='search' i]"),
	CSS("[aria-label*='search' i] input"),
	CSS("#search"),
	CSS(".search-input"),
}

var autosuggestCandidates = []Selector{
	CSS(".suggestions"),
	CSS(".autocomplete"),
	CSS("[role='listbox']"),
	CSS("[data-testid*='suggest']"),
	CSS("[class*='suggest']"),
	CSS("[class*='autocomplete']"),
	CSS("[class*='dropdown']"),
}

var quickBuyCandidates = []Selector{
	Text("button", "buy now"),
	CSS("[data-testid*='buy-now']"),
	CSS("[class*='buy-now']"),
	CSS(".quick-buy"),
}

// productLinkPattern spots hrefs that look like product detail pages.
var productLinkPattern = regexp.MustCompile(`(?i)/(product|item|p|shop|detail|goods|pd)/`)

// gridQueries locate anchors inside product grid containers, the second
// discovery strategy when no href matches productLinkPattern.
var gridQueries = []string{
	"[class*='product'] a",
	"[class*='item'] a",
	"[data-testid*='product'] a",
	".card a",
	".tile a",
}

// navLinkQuery samples navigation links for the broken link check.
const navLinkQuery = "nav a[href], header a[href], [class*='menu'] a[href]"

// cartKeywords in the body text of a freshly opened /cart page suggest the
// cart survived into a new session.
var cartKeywords = []string{"item", "product", "quantity", "subtotal"}
