package session

import (
	"context"
	"math/rand"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const (
	viewportWidth  = 1366
	viewportHeight = 768
)

// userAgents is the pool of real desktop Chrome identities; one is chosen
// per session so repeated runs do not share a fingerprint.
var userAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
}

func pickUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// humanHeaders mirrors the header set a real browser sends on a top-level
// navigation.
func humanHeaders() network.Headers {
	return network.Headers{
		"Accept-Language":           "en-US,en;q=0.9",
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		"Cache-Control":             "max-age=0",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
		"Upgrade-Insecure-Requests": "1",
	}
}

const webdriverPatch = `Object.defineProperty(navigator, 'webdriver', { get: () => undefined });`

// suppressAutomationFingerprint installs a script run before any page script
// so navigator.webdriver reads as undefined.
func suppressAutomationFingerprint() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(webdriverPatch).Do(ctx)
		return err
	})
}
