// Package fetch provides a plain HTTP snapshot fetcher for sources that
// render their listings server-side and do not need a browser session.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/session"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Static fetches a single page over HTTP using a Colly collector and returns
// its body as a snapshot, interchangeable with a browser-captured one.
type Static struct {
	cfg    Config
	base   *colly.Collector
	logger *zap.Logger
}

// New builds a Static fetcher.
func New(cfg Config, logger *zap.Logger) *Static {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Static{
		cfg:    cfg,
		base:   colly.NewCollector(colly.Async(false)),
		logger: logger,
	}
}

// Navigate performs one GET and returns the response body as a snapshot,
// satisfying the same contract as a browser session navigation. One attempt
// only; retry policy belongs to the caller.
func (f *Static) Navigate(ctx context.Context, url string) (session.Snapshot, error) {
	collector := f.base.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.SetRequestTimeout(f.cfg.Timeout)

	var (
		snapshot session.Snapshot
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		snapshot = session.Snapshot{
			URL:        r.Request.URL.String(),
			HTML:       string(r.Body),
			CapturedAt: time.Now().UTC(),
		}
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return session.Snapshot{}, fmt.Errorf("static fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return session.Snapshot{}, fmt.Errorf("visit %s: %w", url, err)
		}
		if fetchErr != nil {
			return session.Snapshot{}, fmt.Errorf("fetch %s: %w", url, fetchErr)
		}
	}

	f.logger.Debug("static page fetched", zap.String("url", snapshot.URL))
	return snapshot, nil
}
