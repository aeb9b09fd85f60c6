package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const createJobsTableSQL = `
CREATE TABLE IF NOT EXISTS jobs (
	id               BIGSERIAL PRIMARY KEY,
	title            TEXT NOT NULL,
	company          TEXT NOT NULL,
	location         TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	summary          TEXT NOT NULL DEFAULT '',
	requirements     JSONB NOT NULL DEFAULT '[]',
	job_types        JSONB NOT NULL DEFAULT '[]',
	work_mode        TEXT NOT NULL,
	experience_level TEXT NOT NULL,
	company_rating   DOUBLE PRECISION,
	company_size     TEXT,
	company_status   TEXT,
	company_url      TEXT,
	company_logo     TEXT,
	industry         TEXT,
	source_url       TEXT,
	job_id           TEXT,
	source           TEXT NOT NULL,
	skills           JSONB NOT NULL DEFAULT '[]',
	search_keywords  JSONB NOT NULL DEFAULT '[]',
	posted_date      TEXT,
	has_easy_apply   BOOLEAN NOT NULL DEFAULT FALSE,
	quality          JSONB NOT NULL,
	scraped_at       TIMESTAMPTZ NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
)`

// jobIndexes are created once per process start. The unique identity index
// is the one the pipeline depends on for correctness; everything else only
// speeds up reporting queries.
var jobIndexes = []struct {
	name string
	sql  string
}{
	{"jobs_unique_identity", `CREATE UNIQUE INDEX IF NOT EXISTS jobs_unique_identity
		ON jobs (title, company, location) WHERE title <> '' AND company <> ''`},
	{"jobs_text_search", `CREATE INDEX IF NOT EXISTS jobs_text_search
		ON jobs USING GIN (to_tsvector('english',
			title || ' ' || company || ' ' || description || ' ' || skills::text))`},
	{"jobs_company", `CREATE INDEX IF NOT EXISTS jobs_company ON jobs (company)`},
	{"jobs_location", `CREATE INDEX IF NOT EXISTS jobs_location ON jobs (location)`},
	{"jobs_scraped_at", `CREATE INDEX IF NOT EXISTS jobs_scraped_at ON jobs (scraped_at DESC)`},
	{"jobs_posted_date", `CREATE INDEX IF NOT EXISTS jobs_posted_date ON jobs (posted_date)`},
	{"jobs_experience_level", `CREATE INDEX IF NOT EXISTS jobs_experience_level ON jobs (experience_level)`},
	{"jobs_work_mode", `CREATE INDEX IF NOT EXISTS jobs_work_mode ON jobs (work_mode)`},
	{"jobs_company_scraped", `CREATE INDEX IF NOT EXISTS jobs_company_scraped ON jobs (company, scraped_at DESC)`},
	{"jobs_location_experience", `CREATE INDEX IF NOT EXISTS jobs_location_experience ON jobs (location, experience_level)`},
}

// EnsureSchema creates the jobs table and its indexes. The table must exist
// for writes to work; index creation failures degrade query performance but
// not write correctness, so they are logged as warnings and skipped.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createJobsTableSQL); err != nil {
		return fmt.Errorf("create jobs table: %w", err)
	}
	for _, idx := range jobIndexes {
		if _, err := s.pool.Exec(ctx, idx.sql); err != nil {
			s.logger.Warn("index creation failed",
				zap.String("index", idx.name), zap.Error(err))
		}
	}
	return nil
}
