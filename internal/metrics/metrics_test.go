package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://www.naukri.com/software-engineer-jobs", "www.naukri.com"},
		{"standard https", "https://RemoteOK.io/remote-dev-jobs", "remoteok.io"},
		{"no scheme", "wellfound.com/role/r/software-engineer", "wellfound.com"},
		{"just host", "example.com", "example.com"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestInit(t *testing.T) {
	// Reset collectors for testing purposes.
	scrapePagesTotal = nil
	scrapeJobsTotal = nil
	scrapeJobsExtractedTotal = nil
	scrapePageDurationSeconds = nil

	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if scrapePagesTotal == nil || scrapeJobsTotal == nil ||
		scrapeJobsExtractedTotal == nil || scrapePageDurationSeconds == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}

	ObservePage("https://www.naukri.com/software-engineer-jobs-4", "ok", 3*time.Second)
	if val := testutil.ToFloat64(scrapePagesTotal); val != 1 {
		t.Errorf("Expected scrapePagesTotal to be 1, got %f", val)
	}

	ObserveJobOutcome("https://www.naukri.com", "saved")
	ObserveJobOutcome("https://www.naukri.com", "duplicate")
	if val := testutil.ToFloat64(scrapeJobsTotal); val != 2 {
		t.Errorf("Expected scrapeJobsTotal to be 2, got %f", val)
	}

	ObserveExtraction("https://www.naukri.com", 20)
	ObserveExtraction("https://www.naukri.com", 0)
	if val := testutil.ToFloat64(scrapeJobsExtractedTotal); val != 20 {
		t.Errorf("Expected scrapeJobsExtractedTotal to be 20, got %f", val)
	}
}
