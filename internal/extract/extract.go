// Package extract turns captured markup snapshots into source-shaped job
// records. Each supported listing site has its own extractor behind a common
// interface; extractors are pure with respect to the snapshot and never
// perform network I/O.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/jobs"
)

// Source identifiers for the closed set of supported listing sites.
const (
	SourceNaukri    = "naukri.com"
	SourceRemoteOK  = "remoteok.io"
	SourceWellfound = "wellfound.com"
)

// Extractor produces raw job records from a rendered markup snapshot.
// A failure on one listing element must not abort its siblings, so Extract
// only errors when the snapshot itself cannot be parsed.
type Extractor interface {
	Source() string
	Extract(snapshot string) ([]jobs.RawJob, error)
}

// ForSource returns the extractor registered for the given source
// identifier. Unknown identifiers are a configuration error.
func ForSource(id string, logger *zap.Logger) (Extractor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch id {
	case SourceNaukri:
		return &naukriExtractor{logger: logger.Named("naukri")}, nil
	case SourceRemoteOK:
		return &remoteOKExtractor{logger: logger.Named("remoteok")}, nil
	case SourceWellfound:
		return &wellfoundExtractor{logger: logger.Named("wellfound")}, nil
	default:
		return nil, fmt.Errorf("unknown source %q", id)
	}
}

// Sources lists every supported source identifier.
func Sources() []string {
	return []string{SourceNaukri, SourceRemoteOK, SourceWellfound}
}

func parseSnapshot(snapshot string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snapshot))
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return doc, nil
}

// attrOrText reads the named attribute and falls back to the selection's
// trimmed text content when the attribute is absent or empty.
func attrOrText(sel *goquery.Selection, attr string) string {
	if v := strings.TrimSpace(sel.AttrOr(attr, "")); v != "" {
		return v
	}
	return strings.TrimSpace(sel.Text())
}

// absoluteURL rewrites a source-relative href against the source origin.
// Absolute URLs pass through unchanged; empty hrefs stay empty.
func absoluteURL(origin, href string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "/"):
		return origin + href
	default:
		return origin + "/" + href
	}
}

// eachListing runs fn over every element matched by selector, recovering a
// panic from a malformed sub-tree so one bad listing never aborts the rest.
func eachListing(doc *goquery.Document, selector string, logger *zap.Logger, fn func(int, *goquery.Selection)) {
	doc.Find(selector).Each(func(i int, sel *goquery.Selection) {
		defer func() {
			if r := recover(); r != nil {
				logger.Warn("skipping malformed listing element",
					zap.Int("index", i), zap.Any("panic", r))
			}
		}()
		fn(i, sel)
	})
}
