// Package store provides the Postgres-backed persistence gateway for
// canonical job documents, plus the read-only reporting queries used by the
// stats command.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jobsift/jobsift/internal/jobs"
)

// Outcome classifies a single write attempt.
type Outcome string

// Write attempt outcomes.
const (
	OutcomeSaved            Outcome = "saved"
	OutcomeDuplicate        Outcome = "duplicate"
	OutcomeValidationFailed Outcome = "validation_failed"
	OutcomeStoreError       Outcome = "store_error"
)

// ErrDuplicate marks an insert rejected by the uniqueness constraint over
// (title, company, location). It is an expected outcome, not a defect.
var ErrDuplicate = errors.New("job already exists")

// Detail reports the outcome for one document in a batch, preserving the
// input order and original index.
type Detail struct {
	Index   int
	Title   string
	Company string
	Outcome Outcome
	Err     string
}

// BatchReport aggregates a batch save. Validation failures count as errors.
type BatchReport struct {
	Total      int
	Saved      int
	Duplicates int
	Errors     int
	Details    []Detail
}

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	// WriteRate bounds sequential batch writes, writes per second.
	// Zero applies the default of 10/s.
	WriteRate float64
}

// querier is the narrow pool surface the store depends on; pgxpool.Pool
// satisfies it in production and pgxmock substitutes it in tests.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store writes validated job documents into Postgres and enforces the
// duplicate-suppression invariant through the store's unique index rather
// than a read-then-write check.
type Store struct {
	pool    querier
	logger  *zap.Logger
	limiter *rate.Limiter
}

// New connects a pool using the provided config.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return newStore(pool, cfg.WriteRate, logger), nil
}

// NewWithPool constructs a store from an existing pool (primarily for testing).
func NewWithPool(pool querier, logger *zap.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return newStore(pool, 0, logger), nil
}

func newStore(pool querier, writeRate float64, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if writeRate <= 0 {
		writeRate = 10
	}
	return &Store{
		pool:    pool,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(writeRate), 1),
	}
}

// Close releases the underlying pool resources. Safe to call more than once.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

const insertJobSQL = `
INSERT INTO jobs (
	title, company, location,
	description, summary, requirements,
	job_types, work_mode, experience_level,
	company_rating, company_size, company_status, company_url, company_logo, industry,
	source_url, job_id, source,
	skills, search_keywords, posted_date, has_easy_apply,
	quality, scraped_at, created_at, updated_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26
)`

// SaveJob validates and inserts a single document, classifying the attempt.
// Validation runs again here even though the normalizer already checked:
// the gateway must not trust its callers. The returned error carries detail
// for duplicate and store outcomes; a nil error means the document was saved.
func (s *Store) SaveJob(ctx context.Context, doc jobs.Document) (Outcome, error) {
	validation := jobs.Validate(doc)
	for _, warning := range validation.Warnings {
		s.logger.Warn("job document warning",
			zap.String("title", doc.Title),
			zap.String("company", doc.Company),
			zap.String("warning", warning))
	}
	if !validation.Valid {
		var missing []string
		if doc.Title == "" {
			missing = append(missing, "title")
		}
		if doc.Company == "" {
			missing = append(missing, "company")
		}
		return OutcomeValidationFailed, &jobs.ValidationError{Missing: missing}
	}

	args, err := insertArgs(doc)
	if err != nil {
		return OutcomeStoreError, err
	}
	if _, err := s.pool.Exec(ctx, insertJobSQL, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return OutcomeDuplicate, fmt.Errorf("%w: %s at %s", ErrDuplicate, doc.Title, doc.Company)
		}
		return OutcomeStoreError, fmt.Errorf("insert job: %w", err)
	}
	return OutcomeSaved, nil
}

// SaveJobs writes documents sequentially in input order, pacing writes with
// the store's rate limiter. One failed write never aborts the rest of the
// batch; only context cancellation stops the loop early, and the report
// returned alongside the error covers the documents attempted so far.
func (s *Store) SaveJobs(ctx context.Context, docs []jobs.Document) (BatchReport, error) {
	report := BatchReport{Total: len(docs), Details: make([]Detail, 0, len(docs))}
	for i, doc := range docs {
		if i > 0 {
			if err := s.limiter.Wait(ctx); err != nil {
				return report, fmt.Errorf("batch save interrupted: %w", err)
			}
		}

		outcome, err := s.SaveJob(ctx, doc)
		detail := Detail{Index: i, Title: doc.Title, Company: doc.Company, Outcome: outcome}
		if err != nil {
			detail.Err = err.Error()
		}
		report.Details = append(report.Details, detail)

		switch outcome {
		case OutcomeSaved:
			report.Saved++
		case OutcomeDuplicate:
			report.Duplicates++
			s.logger.Info("duplicate job skipped",
				zap.String("title", doc.Title), zap.String("company", doc.Company))
		default:
			report.Errors++
			s.logger.Warn("job not saved",
				zap.String("title", doc.Title),
				zap.String("outcome", string(outcome)),
				zap.Error(err))
		}
	}
	return report, nil
}

func insertArgs(doc jobs.Document) ([]any, error) {
	requirements, err := json.Marshal(emptyIfNil(doc.Requirements))
	if err != nil {
		return nil, fmt.Errorf("marshal requirements: %w", err)
	}
	jobTypes, err := json.Marshal(emptyIfNil(doc.JobTypes))
	if err != nil {
		return nil, fmt.Errorf("marshal job types: %w", err)
	}
	skills, err := json.Marshal(emptyIfNil(doc.Skills))
	if err != nil {
		return nil, fmt.Errorf("marshal skills: %w", err)
	}
	keywords, err := json.Marshal(emptyIfNil(doc.SearchKeywords))
	if err != nil {
		return nil, fmt.Errorf("marshal search keywords: %w", err)
	}
	quality, err := json.Marshal(doc.Quality)
	if err != nil {
		return nil, fmt.Errorf("marshal quality: %w", err)
	}
	return []any{
		doc.Title, doc.Company, doc.Location,
		doc.Description, doc.Summary, requirements,
		jobTypes, string(doc.WorkMode), string(doc.ExperienceLevel),
		doc.CompanyRating, doc.CompanySize, doc.CompanyStatus, doc.CompanyURL, doc.CompanyLogo, doc.Industry,
		doc.SourceURL, doc.JobID, doc.Source,
		skills, keywords, doc.PostedDate, doc.HasEasyApply,
		quality, doc.ScrapedAt, doc.CreatedAt, doc.UpdatedAt,
	}, nil
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
