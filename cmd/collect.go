// File: cmd/collect.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/okabe-dev/cartwalk/internal/browser"
	"github.com/okabe-dev/cartwalk/internal/collectors/behavioral"
	"github.com/okabe-dev/cartwalk/internal/collectors/performance"
	"github.com/okabe-dev/cartwalk/internal/collectors/trust"
	"github.com/okabe-dev/cartwalk/internal/collectors/visual"
	"github.com/okabe-dev/cartwalk/internal/dataset"
	"github.com/okabe-dev/cartwalk/internal/observability"
	"github.com/okabe-dev/cartwalk/internal/pipeline"
)

const shutdownTimeout = 30 * time.Second

var (
	collectInput  string
	collectOutput string
	collectDelay  time.Duration
)

var collectCmd = &cobra.Command{
	Use:   "collect [urls...]",
	Short: "Collect behavioral, performance, trust and visual signals for each site.",
	Long: `Collect drives a headless browser through each site like a shopper:
dismissing popups, finding a product, adding it to the cart, walking to
checkout. It combines the session signals with PageSpeed vitals, trust
markers from the landing HTML and Gemini visual scores, and appends one
row per site to the output CSV.

URLs come from the command line or from --input, one per line. Blank
lines and lines starting with '#' are ignored.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().StringVarP(&collectInput, "input", "i", "", "path to a text file with one URL per line")
	collectCmd.Flags().StringVarP(&collectOutput, "output", "o", "", "output CSV path (defaults to output.csv from config)")
	collectCmd.Flags().DurationVar(&collectDelay, "delay", 0, "wait between sites (defaults to output.delay from config)")
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	logger := observability.GetLogger()

	urls, err := gatherURLs(args, collectInput)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs to collect: pass them as arguments or via --input")
	}

	if collectOutput != "" {
		cfg.Output.CSV = collectOutput
	}
	if collectDelay > 0 {
		cfg.Output.Delay = collectDelay
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager, err := browser.NewManager(ctx, cfg.Browser, logger)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := manager.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Browser shutdown reported an error.", zap.Error(err))
		}
	}()

	sinks := []pipeline.Sink{dataset.NewCSVSink(cfg.Output.CSV)}
	if cfg.Output.PostgresURL != "" {
		pg, err := dataset.NewPostgresSink(ctx, cfg.Output.PostgresURL, logger)
		if err != nil {
			return fmt.Errorf("failed to connect postgres sink: %w", err)
		}
		sinks = append(sinks, pg)
	}
	defer func() {
		for _, sink := range sinks {
			if err := sink.Close(); err != nil {
				logger.Warn("Sink close reported an error.", zap.Error(err))
			}
		}
	}()

	p := pipeline.New(pipeline.Components{
		Behavioral:  behavioral.New(manager, nil, cfg.Engine, logger),
		Performance: performance.New(cfg.Performance, logger),
		Trust:       trust.New(logger),
		Visual:      visual.New(cfg.Visual, logger),
		Sinks:       sinks,
	}, cfg.Output.Delay, logger)

	if err := p.Run(ctx, urls); err != nil {
		return fmt.Errorf("collection interrupted: %w", err)
	}

	logger.Info("Collection complete.", zap.String("output", cfg.Output.CSV))
	return nil
}

// gatherURLs merges positional arguments with the --input file, skipping
// blank lines and comments.
func gatherURLs(args []string, inputPath string) ([]string, error) {
	var urls []string
	for _, arg := range args {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}

	if inputPath != "" {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read URL file: %w", err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			urls = append(urls, trimmed)
		}
	}

	return urls, nil
}
