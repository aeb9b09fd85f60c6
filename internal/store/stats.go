package store

import (
	"context"
	"fmt"
	"time"
)

// GroupCount is one bucket of an aggregate-group query.
type GroupCount struct {
	Key   string
	Count int64
}

// RecentJob is the trimmed projection returned by RecentJobs.
type RecentJob struct {
	Title     string
	Company   string
	Location  string
	ScrapedAt time.Time
}

// TotalJobs counts every persisted document.
func (s *Store) TotalJobs(ctx context.Context) (int64, error) {
	return s.countRow(ctx, `SELECT COUNT(*) FROM jobs`)
}

// JobsScrapedSince counts documents scraped at or after the cutoff.
func (s *Store) JobsScrapedSince(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.countRow(ctx, `SELECT COUNT(*) FROM jobs WHERE scraped_at >= $1`, cutoff)
}

// DistinctCompanies counts unique company names.
func (s *Store) DistinctCompanies(ctx context.Context) (int64, error) {
	return s.countRow(ctx, `SELECT COUNT(DISTINCT company) FROM jobs`)
}

// DistinctLocations counts unique locations.
func (s *Store) DistinctLocations(ctx context.Context) (int64, error) {
	return s.countRow(ctx, `SELECT COUNT(DISTINCT location) FROM jobs`)
}

// TopCompanies groups documents by company, most postings first.
func (s *Store) TopCompanies(ctx context.Context, limit int) ([]GroupCount, error) {
	return s.groupCount(ctx,
		`SELECT company, COUNT(*) AS n FROM jobs GROUP BY company ORDER BY n DESC, company LIMIT $1`, limit)
}

// LocationDistribution groups documents by location, most postings first.
func (s *Store) LocationDistribution(ctx context.Context, limit int) ([]GroupCount, error) {
	return s.groupCount(ctx,
		`SELECT location, COUNT(*) AS n FROM jobs GROUP BY location ORDER BY n DESC, location LIMIT $1`, limit)
}

// JobTypeBreakdown unnests the job_types array and groups by type.
func (s *Store) JobTypeBreakdown(ctx context.Context, limit int) ([]GroupCount, error) {
	return s.groupCount(ctx,
		`SELECT jt, COUNT(*) AS n FROM jobs, jsonb_array_elements_text(job_types) AS jt
		 GROUP BY jt ORDER BY n DESC, jt LIMIT $1`, limit)
}

// ExperienceLevelBreakdown groups documents by experience level.
func (s *Store) ExperienceLevelBreakdown(ctx context.Context, limit int) ([]GroupCount, error) {
	return s.groupCount(ctx,
		`SELECT experience_level, COUNT(*) AS n FROM jobs
		 GROUP BY experience_level ORDER BY n DESC, experience_level LIMIT $1`, limit)
}

// RecentJobs returns the most recently scraped documents, newest first.
func (s *Store) RecentJobs(ctx context.Context, limit int) ([]RecentJob, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT title, company, location, scraped_at FROM jobs ORDER BY scraped_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent jobs: %w", err)
	}
	defer rows.Close()

	var recent []RecentJob
	for rows.Next() {
		var job RecentJob
		if err := rows.Scan(&job.Title, &job.Company, &job.Location, &job.ScrapedAt); err != nil {
			return nil, fmt.Errorf("scan recent job: %w", err)
		}
		recent = append(recent, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent jobs: %w", err)
	}
	return recent, nil
}

func (s *Store) countRow(ctx context.Context, sql string, args ...any) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count query: %w", err)
	}
	return count, nil
}

func (s *Store) groupCount(ctx context.Context, sql string, limit int) ([]GroupCount, error) {
	rows, err := s.pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("group query: %w", err)
	}
	defer rows.Close()

	var groups []GroupCount
	for rows.Next() {
		var g GroupCount
		if err := rows.Scan(&g.Key, &g.Count); err != nil {
			return nil, fmt.Errorf("scan group row: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group rows: %w", err)
	}
	return groups, nil
}
