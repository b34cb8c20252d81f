// File: internal/collectors/performance/performance_test.go
package performance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/okabe-dev/cartwalk/internal/config"
)

const lighthousePayload = `{
	"lighthouseResult": {
		"categories": {"performance": {"score": 0.87}},
		"audits": {
			"largest-contentful-paint": {"numericValue": 2381.456},
			"cumulative-layout-shift": {"numericValue": 0.04567},
			"total-blocking-time": {"numericValue": 312.789},
			"server-response-time": {"numericValue": 95.213}
		}
	}
}`

func newTestCollector(endpoint string) *Collector {
	return New(config.PerformanceConfig{
		APIKey:   "test-key",
		Endpoint: endpoint,
		Strategy: "mobile",
		Timeout:  5 * time.Second,
	}, zap.NewNop())
}

func TestCollect(t *testing.T) {
	t.Parallel()

	t.Run("extracts and rounds the vitals", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "https://shop.example.com", r.URL.Query().Get("url"))
			assert.Equal(t, "test-key", r.URL.Query().Get("key"))
			assert.Equal(t, "mobile", r.URL.Query().Get("strategy"))
			w.Write([]byte(lighthousePayload))
		}))
		defer srv.Close()

		res := newTestCollector(srv.URL).Collect(context.Background(), "https://shop.example.com")

		assert.InDelta(t, 2381.46, res.LCPMs, 1e-9)
		assert.InDelta(t, 0.0457, res.CLS, 1e-9)
		assert.InDelta(t, 312.79, res.TBTMs, 1e-9)
		assert.InDelta(t, 95.21, res.TTFBMs, 1e-9)
		assert.InDelta(t, 87.0, res.Score, 1e-9)
	})

	t.Run("missing score and audits stay at the default", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"lighthouseResult": {"audits": {}}}`))
		}))
		defer srv.Close()

		res := newTestCollector(srv.URL).Collect(context.Background(), "https://shop.example.com")

		assert.Equal(t, -1.0, res.LCPMs)
		assert.Equal(t, -1.0, res.CLS)
		assert.Equal(t, -1.0, res.Score)
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		res := newTestCollector(srv.URL).Collect(context.Background(), "https://shop.example.com")

		assert.Equal(t, NewResult(), res)
		assert.Equal(t, int64(1), calls.Load())
	})

	t.Run("server errors are retried until they heal", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(lighthousePayload))
		}))
		defer srv.Close()

		res := newTestCollector(srv.URL).Collect(context.Background(), "https://shop.example.com")

		require.Equal(t, int64(3), calls.Load())
		assert.InDelta(t, 87.0, res.Score, 1e-9)
	})

	t.Run("garbage payload returns the defaults", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		}))
		defer srv.Close()

		res := newTestCollector(srv.URL).Collect(context.Background(), "https://shop.example.com")
		assert.Equal(t, NewResult(), res)
	})
}

func TestRoundTo(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.23, roundTo(1.2345, 2), 1e-9)
	assert.InDelta(t, 0.5, roundTo(0.5, 1), 1e-9)
	assert.InDelta(t, 1.0, roundTo(0.5, 0), 1e-9)
	assert.Equal(t, -1.0, roundTo(-1, 2), "sentinels pass through unrounded")
}
