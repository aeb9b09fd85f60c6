package runner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/extract"
	"github.com/jobsift/jobsift/internal/jobs"
	"github.com/jobsift/jobsift/internal/metrics"
	"github.com/jobsift/jobsift/internal/session"
	"github.com/jobsift/jobsift/internal/store"
)

func TestMain(m *testing.M) {
	metrics.Init()
	m.Run()
}

const listingPage = `
<div class="srp-jobtuple-wrapper" data-job-id="1001">
  <a class="title" href="/job-listings-software-engineer">Software Engineer</a>
  <a class="comp-name">Acme Corp</a>
  <span class="locWdth" title="Pune, Maharashtra">Pune</span>
  <span class="job-desc">Build services with Docker and PostgreSQL</span>
  <span class="job-post-day">2 Days Ago</span>
</div>
<div class="srp-jobtuple-wrapper">
  <span class="job-desc">no title here, rejected downstream</span>
</div>`

type fakeNavigator struct {
	visited []string
	// errs maps a page URL to the navigation outcome; absent means success.
	errs map[string]error
}

func (f *fakeNavigator) Navigate(_ context.Context, url string) (session.Snapshot, error) {
	f.visited = append(f.visited, url)
	if err, ok := f.errs[url]; ok {
		return session.Snapshot{}, err
	}
	return session.Snapshot{URL: url, HTML: listingPage, CapturedAt: time.Now()}, nil
}

type fakeSaver struct {
	batches [][]jobs.Document
	err     error
}

func (f *fakeSaver) SaveJobs(_ context.Context, docs []jobs.Document) (store.BatchReport, error) {
	f.batches = append(f.batches, docs)
	report := store.BatchReport{Total: len(docs), Details: make([]store.Detail, 0, len(docs))}
	for i, doc := range docs {
		outcome := store.OutcomeSaved
		if i%2 == 1 {
			outcome = store.OutcomeDuplicate
		}
		report.Details = append(report.Details, store.Detail{
			Index: i, Title: doc.Title, Company: doc.Company, Outcome: outcome,
		})
		if outcome == store.OutcomeSaved {
			report.Saved++
		} else {
			report.Duplicates++
		}
	}
	return report, f.err
}

func newTestRunner(t *testing.T, nav Navigator, saver Saver, pages int) *Runner {
	t.Helper()
	r, err := New(Config{
		BaseURL:       "https://www.naukri.com/software-engineer-jobs?k=software+engineer",
		Source:        extract.SourceNaukri,
		Pages:         pages,
		PageDelayMin:  time.Millisecond,
		PageDelaySpan: time.Millisecond,
	}, nav, saver, zap.NewNop())
	require.NoError(t, err)
	return r
}

func TestPickPagesNeverRepeats(t *testing.T) {
	t.Parallel()

	for _, count := range []int{1, 4, 50, 99} {
		pages := pickPages(count, 2, 100)
		require.Len(t, pages, count)
		seen := make(map[int]bool, count)
		for _, p := range pages {
			assert.GreaterOrEqual(t, p, 2)
			assert.LessOrEqual(t, p, 100)
			assert.False(t, seen[p], "page %d repeated", p)
			seen[p] = true
		}
	}
}

func TestPickPagesClampsToRange(t *testing.T) {
	t.Parallel()

	assert.Len(t, pickPages(500, 2, 100), 99)
	assert.Nil(t, pickPages(0, 2, 100))
	assert.Nil(t, pickPages(3, 10, 5))
}

func TestBuildPageURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		base string
		page int
		want string
	}{
		{
			name: "query string preserved",
			base: "https://www.naukri.com/software-engineer-jobs?k=software+engineer",
			page: 42,
			want: "https://www.naukri.com/software-engineer-jobs-42?k=software+engineer",
		},
		{
			name: "existing page number replaced",
			base: "https://www.naukri.com/software-engineer-jobs-7?k=x",
			page: 13,
			want: "https://www.naukri.com/software-engineer-jobs-13?k=x",
		},
		{
			name: "no query string",
			base: "https://www.naukri.com/software-engineer-jobs",
			page: 5,
			want: "https://www.naukri.com/software-engineer-jobs-5",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, buildPageURL(tc.base, tc.page))
		})
	}
}

func TestRunPersistsExtractedJobs(t *testing.T) {
	nav := &fakeNavigator{}
	saver := &fakeSaver{}
	r := newTestRunner(t, nav, saver, 1)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.PagesVisited)
	assert.Zero(t, stats.PagesBlocked)
	// Two cards on the fixture page; the titleless one is dropped by the
	// extractor, so one document reaches the store.
	assert.Equal(t, 1, stats.JobsExtracted)
	assert.Equal(t, 1, stats.Saved)
	require.Len(t, saver.batches, 1)
	require.Len(t, saver.batches[0], 1)
	assert.Equal(t, "Software Engineer", saver.batches[0][0].Title)

	require.Len(t, nav.visited, 1)
	assert.Contains(t, nav.visited[0], "software-engineer-jobs-")
	assert.Contains(t, nav.visited[0], "?k=software+engineer")
}

func TestRunSkipsBlockedAndFailedPages(t *testing.T) {
	nav := &fakeNavigator{errs: map[string]error{}}
	saver := &fakeSaver{}
	r := newTestRunner(t, nav, saver, 3)

	// Block the first chosen page and fail the second; the third succeeds.
	min, max := r.cfg.pageRange()
	pages := pickPages(r.cfg.Pages, min, max)
	nav.errs[buildPageURL(r.cfg.BaseURL, pages[0])] = session.ErrBlocked
	nav.errs[buildPageURL(r.cfg.BaseURL, pages[1])] = fmt.Errorf("navigate: %w", session.ErrNoContent)

	stats := Stats{Pages: pages}
	for i, page := range pages {
		if i > 0 {
			require.NoError(t, r.pause(context.Background(), time.Millisecond, 0))
		}
		require.NoError(t, r.scrapePage(context.Background(), page, &stats))
	}

	assert.Equal(t, 1, stats.PagesVisited)
	assert.Equal(t, 1, stats.PagesBlocked)
	assert.Equal(t, 1, stats.PagesFailed)
	assert.Equal(t, 1, stats.Saved)
	assert.Len(t, nav.visited, 3)
}

func TestRunStopsOnCancellation(t *testing.T) {
	nav := &fakeNavigator{}
	saver := &fakeSaver{}
	r := newTestRunner(t, nav, saver, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewRejectsUnknownSource(t *testing.T) {
	t.Parallel()

	_, err := New(Config{BaseURL: "https://example.com/jobs", Source: "linkedin.com"},
		&fakeNavigator{}, &fakeSaver{}, zap.NewNop())
	require.Error(t, err)
}

func TestNewRequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Source: extract.SourceNaukri}, &fakeNavigator{}, &fakeSaver{}, zap.NewNop())
	require.Error(t, err)
}

func TestRunSurfacesSaverError(t *testing.T) {
	nav := &fakeNavigator{}
	saver := &fakeSaver{err: errors.New("pool closed")}
	r := newTestRunner(t, nav, saver, 1)

	_, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist page")
}
