// Package runner sequences a scrape run: it samples random listing pages,
// drives the browser session one page at a time, feeds each snapshot through
// extraction and normalization, persists the results, and aggregates a run
// report. Pages are strictly sequential; documents from one page are written
// before the next page is navigated.
package runner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/extract"
	"github.com/jobsift/jobsift/internal/jobs"
	"github.com/jobsift/jobsift/internal/metrics"
	"github.com/jobsift/jobsift/internal/session"
	"github.com/jobsift/jobsift/internal/store"
)

// Navigator loads a listing page and returns its rendered markup.
type Navigator interface {
	Navigate(ctx context.Context, url string) (session.Snapshot, error)
}

// Saver persists a batch of normalized documents.
type Saver interface {
	SaveJobs(ctx context.Context, docs []jobs.Document) (store.BatchReport, error)
}

// Config controls one scrape run.
type Config struct {
	BaseURL string
	Source  string
	Pages   int

	PageMin int
	PageMax int

	// Fixed-with-jitter delay between pages; not adaptive to failures.
	PageDelayMin  time.Duration
	PageDelaySpan time.Duration
}

func (c Config) pageRange() (int, int) {
	min, max := c.PageMin, c.PageMax
	if min <= 0 {
		min = defaultPageMin
	}
	if max <= 0 {
		max = defaultPageMax
	}
	return min, max
}

func (c Config) pageDelay() (time.Duration, time.Duration) {
	min, span := c.PageDelayMin, c.PageDelaySpan
	if min <= 0 {
		min = 4 * time.Second
	}
	if span <= 0 {
		span = 6 * time.Second
	}
	return min, span
}

// Stats is the aggregate report for one run. A run completes with a report
// even when individual pages or records failed.
type Stats struct {
	RunID         string
	Pages         []int
	PagesVisited  int
	PagesBlocked  int
	PagesFailed   int
	JobsExtracted int
	JobsRejected  int
	Saved         int
	Duplicates    int
	Errors        int
}

// Runner ties the session, extractor, normalizer and store together for a
// single sequential run.
type Runner struct {
	cfg       Config
	nav       Navigator
	saver     Saver
	extractor extract.Extractor
	logger    *zap.Logger
	now       func() time.Time
}

// New builds a Runner for the configured source. The source id must name a
// known extractor.
func New(cfg Config, nav Navigator, saver Saver, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("runner: base URL is required")
	}
	if cfg.Pages <= 0 {
		cfg.Pages = 4
	}
	extractor, err := extract.ForSource(cfg.Source, logger)
	if err != nil {
		return nil, fmt.Errorf("runner: %w", err)
	}
	return &Runner{
		cfg:       cfg,
		nav:       nav,
		saver:     saver,
		extractor: extractor,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Run executes the scrape. Blocked or failed pages are skipped, never
// aborting the run; only context cancellation ends it early, and even then
// the partial stats are returned.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	metrics.ObserveRunStart()

	runID := uuid.NewString()
	logger := r.logger.With(zap.String("run_id", runID))

	min, max := r.cfg.pageRange()
	pages := pickPages(r.cfg.Pages, min, max)
	stats := Stats{RunID: runID, Pages: pages}

	logger.Info("scrape run starting",
		zap.String("source", r.extractor.Source()),
		zap.Ints("pages", pages))

	for i, page := range pages {
		if i > 0 {
			delayMin, delaySpan := r.cfg.pageDelay()
			if err := r.pause(ctx, delayMin, delaySpan); err != nil {
				return stats, err
			}
		}
		if err := r.scrapePage(ctx, page, &stats); err != nil {
			return stats, err
		}
	}

	logger.Info("scrape run finished",
		zap.Int("pages_visited", stats.PagesVisited),
		zap.Int("pages_blocked", stats.PagesBlocked),
		zap.Int("pages_failed", stats.PagesFailed),
		zap.Int("jobs_extracted", stats.JobsExtracted),
		zap.Int("saved", stats.Saved),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("errors", stats.Errors))
	return stats, nil
}

func (r *Runner) scrapePage(ctx context.Context, page int, stats *Stats) error {
	url := buildPageURL(r.cfg.BaseURL, page)
	r.logger.Info("scraping page", zap.Int("page", page), zap.String("url", url))

	start := time.Now()
	snapshot, err := r.nav.Navigate(ctx, url)
	elapsed := time.Since(start)
	switch {
	case errors.Is(err, session.ErrBlocked):
		stats.PagesBlocked++
		metrics.ObservePage(url, "blocked", elapsed)
		r.logger.Warn("page blocked, skipping", zap.Int("page", page))
		return nil
	case err != nil:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		stats.PagesFailed++
		metrics.ObservePage(url, "failed", elapsed)
		r.logger.Warn("page failed, skipping", zap.Int("page", page), zap.Error(err))
		return nil
	}
	stats.PagesVisited++
	metrics.ObservePage(url, "ok", elapsed)

	raws, err := r.extractor.Extract(snapshot.HTML)
	if err != nil {
		stats.PagesFailed++
		r.logger.Warn("extraction failed, skipping page", zap.Int("page", page), zap.Error(err))
		return nil
	}
	stats.JobsExtracted += len(raws)
	metrics.ObserveExtraction(url, len(raws))
	if len(raws) == 0 {
		r.logger.Info("no jobs found on page", zap.Int("page", page))
		return nil
	}

	now := r.now()
	docs := make([]jobs.Document, 0, len(raws))
	for _, raw := range raws {
		doc, err := jobs.Normalize(raw, now)
		if err != nil {
			stats.JobsRejected++
			r.logger.Debug("record rejected", zap.Int("page", page), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}

	report, err := r.saver.SaveJobs(ctx, docs)
	stats.Saved += report.Saved
	stats.Duplicates += report.Duplicates
	stats.Errors += report.Errors
	for _, detail := range report.Details {
		metrics.ObserveJobOutcome(url, string(detail.Outcome))
	}
	if err != nil {
		return fmt.Errorf("persist page %d: %w", page, err)
	}

	r.logger.Info("page persisted",
		zap.Int("page", page),
		zap.Int("saved", report.Saved),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("errors", report.Errors))
	return nil
}

// pause waits min plus a uniformly random duration below span, honoring
// cancellation.
func (r *Runner) pause(ctx context.Context, min, span time.Duration) error {
	d := min
	if span > 0 {
		d += time.Duration(rand.Int63n(int64(span)))
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
