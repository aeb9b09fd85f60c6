// Package session owns the headless browser session used to capture rendered
// listing pages. It layers detection-evasion behavior over chromedp: a
// randomized browser identity, human-like pacing and pointer activity, and a
// single bounded recovery attempt when the origin serves a block page.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Typed navigation outcomes consumed by the orchestrator. Both mean the page
// yielded no snapshot; Blocked additionally means the origin denied access.
var (
	ErrBlocked   = errors.New("access blocked by origin")
	ErrNoContent = errors.New("no recognizable content on page")
)

// readinessSelectors is raced in order on every navigation: most specific
// current layout first, most generic container last. The first match wins,
// so a partial layout change only costs one selector timeout.
var readinessSelectors = []string{
	".styles_job-listing-container__OCfZC",
	".srp-jobtuple-wrapper",
	".cust-job-tuple",
	"#listContainer",
	".styles_jlc__main__VdwtF",
}

// blockMarkers are phrases that identify an access-denial page.
var blockMarkers = []string{
	"Access blocked",
	"unusual activity",
}

// Snapshot is the serialized rendered markup captured from a loaded page.
type Snapshot struct {
	URL        string
	HTML       string
	Selector   string
	CapturedAt time.Time
}

// Config controls the browser session.
type Config struct {
	Headless          bool
	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
	ScreenshotDir     string
}

func (c Config) navigationTimeout() time.Duration {
	if c.NavigationTimeout > 0 {
		return c.NavigationTimeout
	}
	return 90 * time.Second
}

func (c Config) selectorTimeout() time.Duration {
	if c.SelectorTimeout > 0 {
		return c.SelectorTimeout
	}
	return 8 * time.Second
}

// Session is an exclusively-owned headless browser. It is not safe for
// concurrent use; the pipeline navigates one page at a time.
type Session struct {
	cfg         Config
	logger      *zap.Logger
	userAgent   string
	browserCtx  context.Context
	browserStop context.CancelFunc
	allocStop   context.CancelFunc
	closeOnce   sync.Once
}

// New starts a browser process with a randomized identity and suppressed
// automation fingerprint, and warms it up so the first navigation does not
// pay the startup cost.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ua := pickUserAgent()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("window-size", fmt.Sprintf("%d,%d", viewportWidth, viewportHeight)),
		chromedp.UserAgent(ua),
	)
	allocCtx, allocStop := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserStop := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserStop()
		allocStop()
		return nil, fmt.Errorf("browser warmup: %w", err)
	}

	logger.Info("browser session ready", zap.String("user_agent", ua))
	return &Session{
		cfg:         cfg,
		logger:      logger,
		userAgent:   ua,
		browserCtx:  browserCtx,
		browserStop: browserStop,
		allocStop:   allocStop,
	}, nil
}

// Close terminates the browser process and releases all resources.
// It is safe to call from any state, any number of times.
func (s *Session) Close() {
	if s == nil {
		return
	}
	s.closeOnce.Do(func() {
		s.browserStop()
		s.allocStop()
	})
}

// Navigate loads the URL in a fresh tab and returns a snapshot once one of
// the readiness selectors appears. A recognized block page triggers exactly
// one recovery attempt (longer jittered wait, full reload); failure after
// that abandons the page. The returned error is ErrBlocked, ErrNoContent or
// a navigation failure, all typed for the orchestrator to skip the page.
func (s *Session) Navigate(ctx context.Context, url string) (Snapshot, error) {
	// Jittered pre-navigation delay so request timing is not uniform.
	if err := sleepCtx(ctx, jitter(time.Second, 2*time.Second)); err != nil {
		return Snapshot{}, err
	}

	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	defer cancelTab()
	tabCtx, cancelBudget := context.WithTimeout(tabCtx, s.cfg.navigationTimeout())
	defer cancelBudget()
	stopForward := forwardCancel(ctx, cancelBudget)
	defer stopForward()

	if err := chromedp.Run(tabCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(humanHeaders()),
		suppressAutomationFingerprint(),
		chromedp.Navigate(url),
	); err != nil {
		return Snapshot{}, fmt.Errorf("navigate %s: %w", url, err)
	}

	s.simulateHumanBehavior(tabCtx)

	snapshot, err := s.awaitContent(tabCtx, url)
	if !errors.Is(err, ErrBlocked) {
		return snapshot, err
	}

	s.logger.Warn("block page detected, attempting recovery", zap.String("url", url))
	return s.recover(tabCtx, url)
}

// recover performs the single allowed bypass attempt: wait with a wider
// jitter window than a normal navigation, reload, and re-run the behavior
// simulation before racing the selectors again.
func (s *Session) recover(tabCtx context.Context, url string) (Snapshot, error) {
	if err := sleepCtx(tabCtx, jitter(5*time.Second, 5*time.Second)); err != nil {
		return Snapshot{}, err
	}
	if err := chromedp.Run(tabCtx, chromedp.Reload()); err != nil {
		return Snapshot{}, fmt.Errorf("reload after block: %w", err)
	}
	s.simulateHumanBehavior(tabCtx)

	snapshot, err := s.awaitContent(tabCtx, url)
	if err != nil {
		s.logger.Warn("recovery failed, abandoning page",
			zap.String("url", url), zap.Error(err))
	}
	return snapshot, err
}

// awaitContent races the readiness selectors and captures the page. When no
// selector appears it inspects the markup for block markers to distinguish
// a denial page from plain layout drift.
func (s *Session) awaitContent(tabCtx context.Context, url string) (Snapshot, error) {
	selector, found := s.raceSelectors(tabCtx)

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return Snapshot{}, fmt.Errorf("capture markup: %w", err)
	}

	if !found {
		if hasBlockMarker(html) {
			return Snapshot{}, ErrBlocked
		}
		s.captureDebugScreenshot(tabCtx, url)
		return Snapshot{}, ErrNoContent
	}

	s.logger.Debug("page ready", zap.String("url", url), zap.String("selector", selector))
	return Snapshot{
		URL:        url,
		HTML:       html,
		Selector:   selector,
		CapturedAt: time.Now().UTC(),
	}, nil
}

// raceSelectors waits for each readiness selector in turn, each with its own
// bounded timeout, and returns the first that appears.
func (s *Session) raceSelectors(tabCtx context.Context) (string, bool) {
	for _, selector := range readinessSelectors {
		selCtx, cancel := context.WithTimeout(tabCtx, s.cfg.selectorTimeout())
		err := chromedp.Run(selCtx, chromedp.WaitReady(selector, chromedp.ByQuery))
		cancel()
		if err == nil {
			return selector, true
		}
		if tabCtx.Err() != nil {
			return "", false
		}
		s.logger.Debug("readiness selector timed out", zap.String("selector", selector))
	}
	return "", false
}

// captureDebugScreenshot saves a full-page screenshot for offline diagnosis
// of layout drift. Best-effort only.
func (s *Session) captureDebugScreenshot(tabCtx context.Context, url string) {
	if s.cfg.ScreenshotDir == "" {
		return
	}
	var buf []byte
	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().WithCaptureBeyondViewport(true).Do(ctx)
		return err
	}))
	if err != nil {
		s.logger.Warn("debug screenshot failed", zap.Error(err))
		return
	}
	name := fmt.Sprintf("debug-%s-%d.png", hostLabel(url), time.Now().UnixMilli())
	path := filepath.Join(s.cfg.ScreenshotDir, name)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		s.logger.Warn("debug screenshot write failed", zap.String("path", path), zap.Error(err))
		return
	}
	s.logger.Info("debug screenshot saved", zap.String("path", path))
}

func hasBlockMarker(html string) bool {
	for _, marker := range blockMarkers {
		if strings.Contains(html, marker) {
			return true
		}
	}
	return false
}

func hostLabel(rawURL string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	if i := strings.IndexAny(trimmed, "/?"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if trimmed == "" {
		return "page"
	}
	return strings.ReplaceAll(trimmed, ".", "-")
}

// jitter returns min plus a uniformly random duration below span.
func jitter(min, span time.Duration) time.Duration {
	if span <= 0 {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(span)))
}

// sleepCtx waits for the duration or until the context is canceled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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

// forwardCancel propagates cancellation of parent into cancel without tying
// the tab context's lifetime to the caller's context tree.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
