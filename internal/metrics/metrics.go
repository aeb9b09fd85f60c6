// Package metrics exposes Prometheus collectors for the scrape pipeline.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scrapePagesTotal          *prometheus.CounterVec
	scrapeJobsExtractedTotal  *prometheus.CounterVec
	scrapeJobsTotal           *prometheus.CounterVec
	scrapePageDurationSeconds *prometheus.HistogramVec
	scrapeRunsTotal           prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scrapePagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scrape_pages_total",
				Help: "Total number of listing pages visited, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		scrapeJobsExtractedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scrape_jobs_extracted_total",
				Help: "Total number of raw job listings extracted, labeled by site.",
			},
			[]string{"site"},
		)

		scrapeJobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scrape_jobs_total",
				Help: "Total number of jobs persisted, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		scrapePageDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scrape_page_duration_seconds",
				Help:    "Histogram of per-page scrape latencies, labeled by site.",
				Buckets: []float64{1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"site"},
		)

		scrapeRunsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scrape_runs_total",
				Help: "Total number of scrape runs started.",
			},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage records the result of one listing-page visit.
func ObservePage(site, status string, duration time.Duration) {
	sanitized := SanitizeSite(site)
	scrapePagesTotal.WithLabelValues(sanitized, status).Inc()
	scrapePageDurationSeconds.WithLabelValues(sanitized).Observe(duration.Seconds())
}

// ObserveExtraction records how many raw listings a page yielded.
func ObserveExtraction(site string, count int) {
	if count > 0 {
		scrapeJobsExtractedTotal.WithLabelValues(SanitizeSite(site)).Add(float64(count))
	}
}

// ObserveJobOutcome increments the persisted-job counter for the given outcome.
func ObserveJobOutcome(site, outcome string) {
	scrapeJobsTotal.WithLabelValues(SanitizeSite(site), outcome).Inc()
}

// ObserveRunStart increments the run counter.
func ObserveRunStart() {
	scrapeRunsTotal.Inc()
}
