// File: internal/pipeline/pipeline.go
// Package pipeline walks the URL list, runs every collector for each site
// and appends one dataset row per URL to the configured sinks.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/okabe-dev/cartwalk/internal/collectors/behavioral"
	"github.com/okabe-dev/cartwalk/internal/collectors/performance"
	"github.com/okabe-dev/cartwalk/internal/collectors/trust"
	"github.com/okabe-dev/cartwalk/internal/collectors/visual"
	"github.com/okabe-dev/cartwalk/internal/dataset"
)

// Collector interfaces, one per concern, so tests can run the pipeline
// without a browser or the internet.

type BehavioralCollector interface {
	Collect(ctx context.Context, url string) behavioral.Result
}

type PerformanceCollector interface {
	Collect(ctx context.Context, url string) performance.Result
}

type TrustCollector interface {
	Collect(html string) trust.Result
}

type VisualCollector interface {
	Collect(ctx context.Context, screenshotPath string) visual.Scores
}

// Sink persists finished rows.
type Sink interface {
	Append(ctx context.Context, row dataset.Row) error
	Close() error
}

// Components bundles everything a pipeline drives.
type Components struct {
	Behavioral  BehavioralCollector
	Performance PerformanceCollector
	Trust       TrustCollector
	Visual      VisualCollector
	Sinks       []Sink
}

// Pipeline processes URLs strictly sequentially with a polite delay between
// sites. One site's failure never stops the walk.
type Pipeline struct {
	c       Components
	limiter *rate.Limiter
	logger  *zap.Logger
	now     func() time.Time
}

// New builds a Pipeline. Each run gets its own ID so interleaved log files
// stay attributable.
func New(c Components, delay time.Duration, logger *zap.Logger) *Pipeline {
	if delay <= 0 {
		delay = time.Nanosecond
	}
	return &Pipeline{
		c:       c,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		logger: logger.Named("pipeline").With(
			zap.String("run_id", uuid.New().String())),
		now: time.Now,
	}
}

// Run processes every URL. Blank lines and comments are skipped. The only
// error Run returns is the context's; everything else degrades to default
// valued rows.
func (p *Pipeline) Run(ctx context.Context, urls []string) error {
	total := len(urls)
	p.logger.Info("Pipeline starting.", zap.Int("urls", total))

	for i, raw := range urls {
		target := strings.TrimSpace(raw)
		if target == "" || strings.HasPrefix(target, "#") {
			continue
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}

		p.logger.Info("Collecting site.",
			zap.String("url", target),
			zap.Int("index", i+1),
			zap.Int("total", total))

		row := p.collectOne(ctx, target)

		// Rows persist even while the run is being cancelled. An
		// interrupted attempt must still reach the sinks, otherwise
		// its minimal row is lost with the context.
		persistCtx := context.WithoutCancel(ctx)
		for _, sink := range p.c.Sinks {
			if err := sink.Append(persistCtx, row); err != nil {
				p.logger.Error("Failed to persist row.",
					zap.String("url", target), zap.Error(err))
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	p.logger.Info("Pipeline complete.")
	return nil
}

// collectOne gathers all signals for one URL. A cancelled context yields a
// minimal row so the attempt stays auditable.
func (p *Pipeline) collectOne(ctx context.Context, target string) dataset.Row {
	startedAt := p.now()

	beh := p.c.Behavioral.Collect(ctx, target)
	if ctx.Err() != nil {
		return dataset.MinimalRow(target, startedAt)
	}

	perf := p.c.Performance.Collect(ctx, target)
	tr := p.c.Trust.Collect(beh.PageHTML)
	vis := p.c.Visual.Collect(ctx, beh.ScreenshotPath)

	if ctx.Err() != nil {
		return dataset.MinimalRow(target, startedAt)
	}

	return dataset.Row{
		URL:         target,
		CollectedAt: startedAt,
		Behavioral:  beh,
		Performance: perf,
		Trust:       tr,
		Visual:      vis,
	}
}
