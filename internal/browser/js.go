// File: internal/browser/js.go
package browser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okabe-dev/cartwalk/internal/collectors/behavioral"
)

// Scripts evaluated in the page to back the Page interface. Selectors carry
// an optional text filter, so element lookup happens in one round trip
// instead of per-element CDP calls.

// jsLiteral renders a Go string as a safe JS string literal.
func jsLiteral(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}

// selectorArgs returns the query and lowercased text filter literals for a
// selector. An empty text literal disables the filter.
func selectorArgs(sel behavioral.Selector) (query, text string) {
	query = jsLiteral(sel.Query)
	if sel.Kind == behavioral.ByText {
		text = jsLiteral(strings.ToLower(sel.Text))
	} else {
		text = `""`
	}
	return query, text
}

// matchLoop is the shared element walk: iterate candidates for the query,
// skip text mismatches and invisible elements, run the body on the first
// survivor. The body must end with a return.
const matchLoop = `(() => {
	const q = %s;
	const t = %s;
	let els;
	try { els = document.querySelectorAll(q); } catch (e) { return %s; }
	for (const el of els) {
		if (t && !((el.innerText || el.textContent || '').toLowerCase().includes(t))) continue;
		const r = el.getBoundingClientRect();
		if (r.width <= 0 || r.height <= 0) continue;
		const st = window.getComputedStyle(el);
		if (st.visibility === 'hidden' || st.display === 'none') continue;
		%s
	}
	return %s;
})()`

func visibleScript(sel behavioral.Selector) string {
	q, t := selectorArgs(sel)
	return fmt.Sprintf(matchLoop, q, t, "false", "return true;", "false")
}

func clickScript(sel behavioral.Selector) string {
	q, t := selectorArgs(sel)
	return fmt.Sprintf(matchLoop, q, t, "false", "el.click(); return true;", "false")
}

func setValueScript(sel behavioral.Selector, value string) string {
	q, t := selectorArgs(sel)
	body := fmt.Sprintf(`el.focus();
		el.value = %s;
		el.dispatchEvent(new Event('input', {bubbles: true}));
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return true;`, jsLiteral(value))
	return fmt.Sprintf(matchLoop, q, t, "false", body, "false")
}

func anchorHrefsScript(query string, limit int) string {
	return fmt.Sprintf(`(() => {
	const out = [];
	let els;
	try { els = document.querySelectorAll(%s); } catch (e) { return out; }
	for (const el of els) {
		if (out.length >= %d) break;
		out.push(el.getAttribute('href') || '');
	}
	return out;
})()`, jsLiteral(query), limit)
}

const bodyTextScript = `document.body ? document.body.innerText : ''`

const scrollWidthScript = `document.body ? document.body.scrollWidth : 0`
