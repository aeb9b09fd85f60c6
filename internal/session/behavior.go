package session

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// simulateHumanBehavior performs synthetic pointer movement and a
// scroll-then-return pass. It is a detection-evasion signal only: failures
// are logged and swallowed so they never block forward progress.
func (s *Session) simulateHumanBehavior(tabCtx context.Context) {
	if err := s.runBehavior(tabCtx); err != nil {
		s.logger.Debug("behavior simulation skipped", zap.Error(err))
	}
}

func (s *Session) runBehavior(tabCtx context.Context) error {
	x := rand.Float64() * viewportWidth
	y := rand.Float64() * viewportHeight
	scrollY := rand.Intn(500)

	return chromedp.Run(tabCtx,
		input.DispatchMouseEvent(input.MouseMoved, x, y),
		chromedp.Evaluate(fmt.Sprintf("window.scrollTo(0, %d)", scrollY), nil),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return sleepCtx(ctx, jitter(500*time.Millisecond, time.Second))
		}),
		chromedp.Evaluate("window.scrollTo(0, 0)", nil),
	)
}
