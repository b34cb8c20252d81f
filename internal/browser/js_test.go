// File: internal/browser/js_test.go
package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/okabe-dev/cartwalk/internal/collectors/behavioral"
	"github.com/okabe-dev/cartwalk/internal/config"
)

func TestJSLiteral(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "shirt", `"shirt"`},
		{"embedded quotes", `a "b" c`, `"a \"b\" c"`},
		{"newline", "a\nb", `"a\nb"`},
		{"empty", "", `""`},
		{"script breakout", "</script>", `"</script>"`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, jsLiteral(tc.in))
		})
	}
}

func TestSelectorArgs(t *testing.T) {
	t.Parallel()

	t.Run("css selector has no text filter", func(t *testing.T) {
		t.Parallel()

		q, text := selectorArgs(behavioral.CSS("button.add-to-cart"))
		assert.Equal(t, `"button.add-to-cart"`, q)
		assert.Equal(t, `""`, text)
	})

	t.Run("text selector lowercases the filter", func(t *testing.T) {
		t.Parallel()

		q, text := selectorArgs(behavioral.Text("button", "Add To Cart"))
		assert.Equal(t, `"button"`, q)
		assert.Equal(t, `"add to cart"`, text)
	})
}

func TestScriptBuilders(t *testing.T) {
	t.Parallel()

	t.Run("click script acts on matches", func(t *testing.T) {
		t.Parallel()

		script := clickScript(behavioral.Text("a", "checkout"))
		assert.Contains(t, script, `"a"`)
		assert.Contains(t, script, `"checkout"`)
		assert.Contains(t, script, "el.click()")
	})

	t.Run("visible script never clicks", func(t *testing.T) {
		t.Parallel()

		script := visibleScript(behavioral.CSS("#cart"))
		assert.NotContains(t, script, "click")
		assert.Contains(t, script, "getBoundingClientRect")
	})

	t.Run("set value dispatches framework events", func(t *testing.T) {
		t.Parallel()

		script := setValueScript(behavioral.CSS("input[type='search']"), "shirt")
		assert.Contains(t, script, `el.value = "shirt"`)
		assert.Contains(t, script, "new Event('input', {bubbles: true})")
		assert.Contains(t, script, "new Event('change', {bubbles: true})")
	})

	t.Run("anchor script inlines the limit", func(t *testing.T) {
		t.Parallel()

		script := anchorHrefsScript("nav a[href]", 10)
		assert.Contains(t, script, "out.length >= 10")
		assert.Contains(t, script, `"nav a[href]"`)
		assert.True(t, strings.Contains(script, "getAttribute('href')"))
	})
}

func TestPersonas(t *testing.T) {
	t.Parallel()

	cfg := config.BrowserConfig{
		DesktopUserAgent: "Mozilla/5.0 desktop",
		MobileUserAgent:  "Mozilla/5.0 mobile",
		DesktopViewport:  config.Viewport{Width: 1440, Height: 900},
		MobileViewport:   config.Viewport{Width: 390, Height: 844},
	}

	desktop := desktopPersona(cfg)
	assert.Equal(t, "desktop", desktop.Name)
	assert.Equal(t, 1440, desktop.Width)
	assert.False(t, desktop.Mobile)

	mobile := mobilePersona(cfg)
	assert.Equal(t, "mobile", mobile.Name)
	assert.Equal(t, 390, mobile.Width)
	assert.True(t, mobile.Mobile)
}
