package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasBlockMarker(t *testing.T) {
	t.Parallel()

	assert.True(t, hasBlockMarker("<html><body>Access blocked</body></html>"))
	assert.True(t, hasBlockMarker("we detected unusual activity from your network"))
	assert.False(t, hasBlockMarker("<html><body>Software Engineer jobs</body></html>"))
	assert.False(t, hasBlockMarker(""))
}

func TestReadinessSelectorOrdering(t *testing.T) {
	t.Parallel()

	// Most specific current layout first, generic container fallback last.
	require.NotEmpty(t, readinessSelectors)
	assert.Equal(t, ".styles_job-listing-container__OCfZC", readinessSelectors[0])
	assert.Contains(t, readinessSelectors, "#listContainer")
}

func TestPickUserAgentFromPool(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		assert.Contains(t, userAgents, pickUserAgent())
	}
}

func TestJitterBounds(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		d := jitter(time.Second, 2*time.Second)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 3*time.Second)
	}
	assert.Equal(t, time.Second, jitter(time.Second, 0))
}

func TestSleepCtxHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sleepCtx(ctx, time.Minute)
	require.ErrorIs(t, err, context.Canceled)

	require.NoError(t, sleepCtx(context.Background(), 0))
}

func TestConfigTimeoutDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	assert.Equal(t, 90*time.Second, cfg.navigationTimeout())
	assert.Equal(t, 8*time.Second, cfg.selectorTimeout())

	cfg = Config{NavigationTimeout: time.Minute, SelectorTimeout: 2 * time.Second}
	assert.Equal(t, time.Minute, cfg.navigationTimeout())
	assert.Equal(t, 2*time.Second, cfg.selectorTimeout())
}

func TestHostLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "www-naukri-com", hostLabel("https://www.naukri.com/software-engineer-jobs-7?k=x"))
	assert.Equal(t, "remoteok-io", hostLabel("http://remoteok.io"))
	assert.Equal(t, "page", hostLabel(""))
}
