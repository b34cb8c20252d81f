// File: internal/collectors/performance/performance.go
// Package performance fetches Core Web Vitals for a URL from the PageSpeed
// Insights API.
package performance

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"

	"github.com/cenkalti/backoff/v4"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/okabe-dev/cartwalk/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxRetries = 2

// Result holds the extracted vitals. Every field defaults to -1 so a failed
// lookup still yields a usable row.
type Result struct {
	LCPMs  float64 `json:"lcp_ms"`
	CLS    float64 `json:"cls"`
	TBTMs  float64 `json:"tbt_ms"`
	TTFBMs float64 `json:"ttfb_ms"`
	Score  float64 `json:"performance_score"`
}

// NewResult returns the all-defaults result.
func NewResult() Result {
	return Result{LCPMs: -1, CLS: -1, TBTMs: -1, TTFBMs: -1, Score: -1}
}

// Collector queries the PageSpeed Insights API.
type Collector struct {
	cfg    config.PerformanceConfig
	client *http.Client
	logger *zap.Logger
}

// New builds a Collector from configuration.
func New(cfg config.PerformanceConfig, logger *zap.Logger) *Collector {
	return &Collector{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.Named("performance"),
	}
}

// apiResponse mirrors the slice of the Lighthouse payload we read. Pointers
// distinguish "absent" from "zero".
type apiResponse struct {
	LighthouseResult struct {
		Categories struct {
			Performance struct {
				Score *float64 `json:"score"`
			} `json:"performance"`
		} `json:"categories"`
		Audits map[string]struct {
			NumericValue *float64 `json:"numericValue"`
		} `json:"audits"`
	} `json:"lighthouseResult"`
}

// Collect fetches vitals for target. Transient API failures are retried with
// exponential backoff; any terminal failure returns the defaults.
func (c *Collector) Collect(ctx context.Context, target string) Result {
	res := NewResult()

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var body []byte
	operation := func() error {
		var err error
		body, err = c.fetch(reqCtx, target)
		return err
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), reqCtx)
	if err := backoff.Retry(operation, policy); err != nil {
		c.logger.Warn("PageSpeed lookup failed.", zap.String("url", target), zap.Error(err))
		return res
	}

	var payload apiResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Warn("PageSpeed payload decode failed.", zap.String("url", target), zap.Error(err))
		return res
	}

	audits := payload.LighthouseResult.Audits
	res.LCPMs = roundTo(auditValue(audits, "largest-contentful-paint"), 2)
	res.CLS = roundTo(auditValue(audits, "cumulative-layout-shift"), 4)
	res.TBTMs = roundTo(auditValue(audits, "total-blocking-time"), 2)
	res.TTFBMs = roundTo(auditValue(audits, "server-response-time"), 2)
	if score := payload.LighthouseResult.Categories.Performance.Score; score != nil {
		res.Score = roundTo(*score*100, 1)
	}

	return res
}

func (c *Collector) fetch(ctx context.Context, target string) ([]byte, error) {
	endpoint, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("invalid endpoint: %w", err))
	}
	q := endpoint.Query()
	q.Set("url", target)
	q.Set("key", c.cfg.APIKey)
	q.Set("strategy", c.cfg.Strategy)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("pagespeed API returned status %d", resp.StatusCode)
		// Client errors will not heal on retry. Server errors may.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	return body, nil
}

func auditValue(audits map[string]struct {
	NumericValue *float64 `json:"numericValue"`
}, key string) float64 {
	if audit, ok := audits[key]; ok && audit.NumericValue != nil {
		return *audit.NumericValue
	}
	return -1
}

func roundTo(v float64, places int) float64 {
	if v < 0 {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
