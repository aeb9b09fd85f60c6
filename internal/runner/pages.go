package runner

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
)

// Default sampling range for listing pages. Page 1 is skipped on purpose:
// it is the most heavily monitored page and the one most likely to trip
// bot detection.
const (
	defaultPageMin = 2
	defaultPageMax = 100
)

var trailingPageNumber = regexp.MustCompile(`-\d+$`)

// pickPages draws count distinct page numbers uniformly from [min, max].
// A count larger than the range is clamped to the range size, so a run
// never repeats a page.
func pickPages(count, min, max int) []int {
	span := max - min + 1
	if span <= 0 {
		return nil
	}
	if count > span {
		count = span
	}
	if count <= 0 {
		return nil
	}
	pages := make([]int, 0, count)
	for _, offset := range rand.Perm(span)[:count] {
		pages = append(pages, min+offset)
	}
	return pages
}

// buildPageURL inserts the page number into a listing URL template. The
// number goes at the end of the path segment, before any query string, and
// any page number already present in the template is stripped first, so
// "/software-engineer-jobs-7?k=x" and "/software-engineer-jobs?k=x" both
// yield "/software-engineer-jobs-<page>?k=x".
func buildPageURL(base string, page int) string {
	path, query, hasQuery := strings.Cut(base, "?")
	path = trailingPageNumber.ReplaceAllString(path, "")
	url := fmt.Sprintf("%s-%d", path, page)
	if hasQuery {
		url += "?" + query
	}
	return url
}
