// File: internal/collectors/trust/trust.go
// Package trust extracts legitimacy signals from the captured landing page
// HTML. It is a pure function over the document, no network and no browser.
package trust

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

var (
	phoneRe = regexp.MustCompile(`\+?\d[\d\s\-()]{7,}\d`)
	emailRe = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)
)

var addressKeywords = []string{"street", "avenue", "suite", "floor", "po box", "zip", "postal"}

var (
	returnKeywords  = []string{"return", "refund", "exchange"}
	privacyKeywords = []string{"privacy policy", "privacy"}
	tosKeywords     = []string{"terms of service", "terms & conditions", "terms and conditions"}
)

var socialDomains = []string{
	"instagram.com", "facebook.com", "twitter.com", "tiktok.com",
	"youtube.com", "pinterest.com", "linkedin.com",
}

var paymentKeywords = []string{
	"visa", "mastercard", "paypal", "amex", "american express",
	"apple pay", "google pay", "stripe", "norton", "mcafee", "ssl",
}

// Result holds the eight trust flags and their sum.
type Result struct {
	HasPhone         int `json:"has_phone"`
	HasEmail         int `json:"has_email"`
	HasAddress       int `json:"has_address"`
	HasReturnPolicy  int `json:"has_return_policy"`
	HasPrivacyPolicy int `json:"has_privacy_policy"`
	HasTOS           int `json:"has_tos"`
	HasSocialLinks   int `json:"has_social_links"`
	HasPaymentBadges int `json:"has_payment_badges"`
	TrustScore       int `json:"trust_score"`
}

// Collector scans landing page HTML for trust signals.
type Collector struct {
	logger *zap.Logger
}

// New builds a Collector.
func New(logger *zap.Logger) *Collector {
	return &Collector{logger: logger.Named("trust")}
}

// link is an anchor's visible text and href, both lowercased.
type link struct {
	text string
	href string
}

// document is the flattened view of the page the signal checks run over.
type document struct {
	text     strings.Builder
	links    []link
	imgAttrs strings.Builder
}

// Collect parses the HTML and derives every flag. Empty or unparseable input
// yields all zeroes.
func (c *Collector) Collect(source string) Result {
	var res Result
	if source == "" {
		return res
	}

	root, err := html.Parse(strings.NewReader(source))
	if err != nil {
		c.logger.Warn("Trust signal parsing failed.", zap.Error(err))
		return res
	}

	doc := &document{}
	collect(root, doc)

	text := strings.ToLower(doc.text.String())

	if phoneRe.MatchString(text) {
		res.HasPhone = 1
	}
	if emailRe.MatchString(text) {
		res.HasEmail = 1
	}
	if containsAny(text, addressKeywords) {
		res.HasAddress = 1
	}

	res.HasReturnPolicy = linkFlag(doc.links, returnKeywords)
	res.HasPrivacyPolicy = linkFlag(doc.links, privacyKeywords)
	res.HasTOS = linkFlag(doc.links, tosKeywords)

	for _, l := range doc.links {
		if containsAny(l.href, socialDomains) {
			res.HasSocialLinks = 1
			break
		}
	}

	combined := text + " " + strings.ToLower(doc.imgAttrs.String())
	if containsAny(combined, paymentKeywords) {
		res.HasPaymentBadges = 1
	}

	res.TrustScore = res.HasPhone + res.HasEmail + res.HasAddress +
		res.HasReturnPolicy + res.HasPrivacyPolicy + res.HasTOS +
		res.HasSocialLinks + res.HasPaymentBadges

	return res
}

// collect walks the DOM accumulating text, anchors and image attributes.
// Script and style bodies are skipped, they are code, not content.
func collect(n *html.Node, doc *document) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return
		case "a":
			if href, ok := attr(n, "href"); ok {
				doc.links = append(doc.links, link{
					text: strings.ToLower(strings.TrimSpace(nodeText(n))),
					href: strings.ToLower(href),
				})
			}
		case "img":
			if alt, ok := attr(n, "alt"); ok {
				doc.imgAttrs.WriteString(alt)
				doc.imgAttrs.WriteByte(' ')
			}
			if src, ok := attr(n, "src"); ok {
				doc.imgAttrs.WriteString(src)
				doc.imgAttrs.WriteByte(' ')
			}
		}
	}
	if n.Type == html.TextNode {
		trimmed := strings.TrimSpace(n.Data)
		if trimmed != "" {
			doc.text.WriteString(trimmed)
			doc.text.WriteByte(' ')
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collect(child, doc)
	}
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			trimmed := strings.TrimSpace(node.Data)
			if trimmed != "" {
				b.WriteString(trimmed)
				b.WriteByte(' ')
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// linkFlag reports whether any link mentions a keyword in its text or href.
func linkFlag(links []link, keywords []string) int {
	for _, l := range links {
		for _, kw := range keywords {
			if strings.Contains(l.text, kw) || strings.Contains(l.href, kw) {
				return 1
			}
		}
	}
	return 0
}
