package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalJobs(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))

	total, err := s.TotalJobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJobsScrapedSince(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	cutoff := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(cutoff).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))

	count, err := s.JobsScrapedSince(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTopCompanies(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT company, COUNT").
		WithArgs(3).
		WillReturnRows(pgxmock.NewRows([]string{"company", "n"}).
			AddRow("Acme", int64(12)).
			AddRow("Initech", int64(5)).
			AddRow("Globex", int64(2)))

	groups, err := s.TopCompanies(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []GroupCount{
		{Key: "Acme", Count: 12},
		{Key: "Initech", Count: 5},
		{Key: "Globex", Count: 2},
	}, groups)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJobTypeBreakdown(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)

	mock.ExpectQuery("jsonb_array_elements_text").
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"jt", "n"}).
			AddRow("Full-time", int64(30)).
			AddRow("Contract", int64(4)))

	groups, err := s.JobTypeBreakdown(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Full-time", groups[0].Key)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentJobs(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT title, company, location, scraped_at").
		WithArgs(2).
		WillReturnRows(pgxmock.NewRows([]string{"title", "company", "location", "scraped_at"}).
			AddRow("Engineer", "Acme", "Pune", now).
			AddRow("Analyst", "Initech", "Remote", now.Add(-time.Hour)))

	recent, err := s.RecentJobs(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Engineer", recent[0].Title)
	assert.Equal(t, now, recent[0].ScrapedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupQueryError(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT location, COUNT").
		WithArgs(10).
		WillReturnError(assert.AnError)

	_, err := s.LocationDistribution(context.Background(), 10)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
