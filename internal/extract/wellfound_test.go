package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const wellfoundFixture = `
<div data-test="StartupResult">
  <div>
    <div data-testid="startup-header">
      <a href="/company/acme-rockets"><h2>Acme Rockets</h2></a>
    </div>
    <span class="text-xs text-neutral-1000">We build reusable rockets with Python and Go</span>
  </div>
  <span class="text-xs italic text-neutral-500">11-50 Employees</span>
  <span class="text-pop-green">Actively Hiring</span>
  <div class="min-h-[50px] items-end justify-between">
    <a class="text-sm font-semibold text-brand-burgandy" href="/jobs/123456-senior-engineer">Senior Engineer</a>
    <span class="whitespace-nowrap rounded-lg bg-accent-yellow-100">Contract</span>
    <span class="pl-1 text-xs">Remote &bull; United States</span>
    <span class="pl-1 text-xs">4+ years exp</span>
    <span class="text-xs lowercase text-dark-a">3 days ago</span>
  </div>
  <div class="min-h-[50px] items-end justify-between">
    <a class="text-sm font-semibold text-brand-burgandy" href="/jobs/654321-platform-engineer">Platform Engineer</a>
  </div>
  <div class="min-h-[50px] items-end justify-between">
    <span class="whitespace-nowrap rounded-lg bg-accent-yellow-100">row with no title link</span>
  </div>
</div>`

func TestWellfoundExtract(t *testing.T) {
	t.Parallel()

	ex, err := ForSource(SourceWellfound, zap.NewNop())
	require.NoError(t, err)

	records, err := ex.Extract(wellfoundFixture)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "123456", first.JobID)
	assert.Equal(t, "Senior Engineer", first.Title)
	assert.Equal(t, "Acme Rockets", first.Company)
	assert.Equal(t, []string{"Contract"}, first.JobTypes)
	assert.Contains(t, first.Location, "Remote")
	assert.Equal(t, "4+ years exp", first.Experience)
	assert.Equal(t, "3 days ago", first.PostedDate)
	assert.Equal(t, "https://wellfound.com/jobs/123456-senior-engineer", first.SourceURL)
	assert.Equal(t, "https://wellfound.com/company/acme-rockets", first.CompanyURL)
	assert.Equal(t, "11-50", first.CompanySize)
	assert.Equal(t, "Actively Hiring", first.CompanyStatus)
	assert.Equal(t, "We build reusable rockets with Python and Go", first.Description)
	assert.Contains(t, first.Skills, "python")

	second := records[1]
	assert.Equal(t, "654321", second.JobID)
	assert.Equal(t, "Platform Engineer", second.Title)
	// Fields absent from the row fall back to defaults or stay empty.
	assert.Equal(t, []string{"Full-time"}, second.JobTypes)
	assert.Empty(t, second.Location)
	assert.Empty(t, second.Experience)
	// Company metadata is shared across the card's jobs.
	assert.Equal(t, "Acme Rockets", second.Company)
	assert.Equal(t, "11-50", second.CompanySize)
}

func TestForSourceDispatch(t *testing.T) {
	t.Parallel()

	for _, id := range Sources() {
		ex, err := ForSource(id, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, id, ex.Source())
	}

	_, err := ForSource("monster.com", zap.NewNop())
	require.Error(t, err)
}
