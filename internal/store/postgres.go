package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkmn-analytics/battle-features/internal/models"
)

// PgPool defines the subset of the PostgreSQL connection pool used here
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS extraction_runs (
		id          UUID PRIMARY KEY,
		profile     TEXT NOT NULL,
		source      TEXT NOT NULL,
		started_at  TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		battles     INTEGER NOT NULL,
		extracted   INTEGER NOT NULL,
		cache_hits  INTEGER NOT NULL,
		failed      INTEGER NOT NULL,
		incomplete  INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS extraction_failures (
		run_id    UUID NOT NULL REFERENCES extraction_runs(id) ON DELETE CASCADE,
		battle_id TEXT NOT NULL DEFAULT '',
		line      INTEGER NOT NULL DEFAULT 0,
		reason    TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_extraction_failures_run ON extraction_failures(run_id);
`

// OpenPostgres creates a connection pool and verifies it.
func OpenPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// PostgresRunStore records extraction runs and their failures.
type PostgresRunStore struct {
	pool PgPool
}

// NewPostgresRunStore wraps a pool.
func NewPostgresRunStore(pool PgPool) *PostgresRunStore {
	return &PostgresRunStore{pool: pool}
}

// Migrate creates the run tables if needed.
func (s *PostgresRunStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create run tables: %w", err)
	}
	return nil
}

// SaveRun stores a run summary and its failures.
func (s *PostgresRunStore) SaveRun(ctx context.Context, run models.ExtractionRun, failures []models.ExtractionFailure) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO extraction_runs
			(id, profile, source, started_at, finished_at, battles, extracted, cache_hits, failed, incomplete)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			finished_at = EXCLUDED.finished_at,
			extracted   = EXCLUDED.extracted,
			cache_hits  = EXCLUDED.cache_hits,
			failed      = EXCLUDED.failed,
			incomplete  = EXCLUDED.incomplete
	`, run.ID, run.Profile, run.Source, run.StartedAt, run.FinishedAt,
		run.Battles, run.Extracted, run.CacheHits, run.Failed, run.Incomplete)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	if len(failures) == 0 {
		return nil
	}

	ids := make([]string, len(failures))
	lines := make([]int32, len(failures))
	reasons := make([]string, len(failures))
	for i, f := range failures {
		ids[i], lines[i], reasons[i] = f.BattleID, int32(f.Line), f.Reason
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO extraction_failures (run_id, battle_id, line, reason)
		SELECT $1, b, l, r FROM unnest($2::text[], $3::int[], $4::text[]) AS t(b, l, r)
	`, run.ID, ids, lines, reasons)
	if err != nil {
		return fmt.Errorf("insert failures for run %s: %w", run.ID, err)
	}
	return nil
}

// RecentRuns returns the latest runs, newest first.
func (s *PostgresRunStore) RecentRuns(ctx context.Context, limit int) ([]models.ExtractionRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, profile, source, started_at, finished_at,
		       battles, extracted, cache_hits, failed, incomplete
		FROM extraction_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ExtractionRun
	for rows.Next() {
		var r models.ExtractionRun
		if err := rows.Scan(&r.ID, &r.Profile, &r.Source, &r.StartedAt, &r.FinishedAt,
			&r.Battles, &r.Extracted, &r.CacheHits, &r.Failed, &r.Incomplete); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
