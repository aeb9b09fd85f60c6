package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/config"
	"github.com/jobsift/jobsift/internal/fetch"
	"github.com/jobsift/jobsift/internal/metrics"
	"github.com/jobsift/jobsift/internal/runner"
	"github.com/jobsift/jobsift/internal/session"
	"github.com/jobsift/jobsift/internal/store"
)

// newScrapeCmd creates and configures the 'scrape' subcommand. It runs one
// full scrape: random page selection, navigation, extraction, normalization
// and persistence, then prints the run summary.
func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Runs one scrape of the configured listing site",
		Long: `Samples random listing pages from the configured source, scrapes each one
through a stealth headless browser session, and persists the normalized
job documents. Blocked or failed pages are skipped; the run always ends
with a summary report.`,
		RunE: runScrapeCommand,
	}
}

func runScrapeCommand(_ *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	metrics.Init()
	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Port, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	var nav runner.Navigator
	if cfg.Scrape.StaticFetch {
		nav = fetch.New(fetch.Config{Timeout: cfg.Browser.NavTimeout()}, logger.Named("fetch"))
	} else {
		sess, err := session.New(ctx, session.Config{
			Headless:          cfg.Browser.Headless,
			NavigationTimeout: cfg.Browser.NavTimeout(),
			SelectorTimeout:   cfg.Browser.SelectorTimeout(),
			ScreenshotDir:     cfg.Browser.ScreenshotDir,
		}, logger.Named("session"))
		if err != nil {
			return fmt.Errorf("start browser session: %w", err)
		}
		defer sess.Close()
		nav = sess
	}

	run, err := runner.New(runner.Config{
		BaseURL:       cfg.Scrape.BaseURL,
		Source:        cfg.Scrape.Source,
		Pages:         cfg.Scrape.Pages,
		PageMin:       cfg.Scrape.PageMin,
		PageMax:       cfg.Scrape.PageMax,
		PageDelayMin:  cfg.Scrape.PageDelay(),
		PageDelaySpan: cfg.Scrape.PageDelayJitter(),
	}, nav, st, logger.Named("runner"))
	if err != nil {
		return err
	}

	stats, err := run.Run(ctx)
	printRunSummary(stats)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scrape run: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (*store.Store, error) {
	connCtx, cancel := context.WithTimeout(ctx, cfg.DB.ConnTimeout())
	defer cancel()

	st, err := store.New(connCtx, store.Config{
		DSN:       cfg.DB.DSN,
		MaxConns:  int32(cfg.DB.MaxConns),
		WriteRate: float64(cfg.DB.WritesPerSecond),
	}, logger.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return st, nil
}

func serveMetrics(port int, logger *zap.Logger) {
	addr := fmt.Sprintf(":%d", port)
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	logger.Info("metrics endpoint listening", zap.String("addr", addr))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("metrics endpoint failed", zap.Error(err))
	}
}

func printRunSummary(stats runner.Stats) {
	fmt.Println("\nScrape run summary")
	fmt.Printf("  run id:         %s\n", stats.RunID)
	fmt.Printf("  pages chosen:   %v\n", stats.Pages)
	fmt.Printf("  pages visited:  %d (blocked %d, failed %d)\n",
		stats.PagesVisited, stats.PagesBlocked, stats.PagesFailed)
	fmt.Printf("  jobs extracted: %d (rejected %d)\n", stats.JobsExtracted, stats.JobsRejected)
	fmt.Printf("  saved:          %d\n", stats.Saved)
	fmt.Printf("  duplicates:     %d\n", stats.Duplicates)
	fmt.Printf("  errors:         %d\n", stats.Errors)
}
