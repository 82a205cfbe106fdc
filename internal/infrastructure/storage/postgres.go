// Package storage persists scored tenders into Postgres for run history and
// cross-run deduplication. The archive is optional: the pipeline skips it
// when no DSN is configured.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"tenderscan/internal/domain"
	"tenderscan/internal/ports"
)

// PostgresArchive stores one row per unique tender key.
type PostgresArchive struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.TenderArchive = (*PostgresArchive)(nil)

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*PostgresArchive, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresArchive(db), nil
}

// NewPostgresArchive wires an existing sql.DB.
func NewPostgresArchive(db *sql.DB) *PostgresArchive {
	return &PostgresArchive{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates the archive table when missing.
func (a *PostgresArchive) EnsureSchema(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	_, err := a.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS tenders (
            dedup_key     TEXT PRIMARY KEY,
            tender_id     TEXT,
            title         TEXT NOT NULL,
            portal        TEXT NOT NULL,
            department    TEXT,
            location      TEXT,
            budget_max    DOUBLE PRECISION,
            published_at  TIMESTAMPTZ,
            deadline_at   TIMESTAMPTZ,
            url           TEXT,
            match_score   INTEGER NOT NULL,
            keywords      TEXT[],
            first_seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            last_seen_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SeenKeys returns a map with the keys that already exist in the archive.
func (a *PostgresArchive) SeenKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	if a.db == nil || len(keys) == 0 {
		return map[string]bool{}, nil
	}

	query := `SELECT dedup_key FROM tenders WHERE dedup_key = ANY($1)`
	rows, err := a.db.QueryContext(ctx, query, pq.StringArray(keys))
	if err != nil {
		return nil, fmt.Errorf("query seen keys: %w", err)
	}

	result := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan key: %w", err)
		}
		result[key] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// SaveRun upserts every tender of the finished run; re-seen tenders refresh
// their score and last_seen_at, keeping first_seen_at intact.
func (a *PostgresArchive) SaveRun(ctx context.Context, tenders []domain.Tender) error {
	if a.db == nil || len(tenders) == 0 {
		return nil
	}

	now := time.Now()
	for _, t := range tenders {
		query, args, err := a.builder.
			Insert("tenders").
			Columns("dedup_key", "tender_id", "title", "portal", "department",
				"location", "budget_max", "published_at", "deadline_at", "url",
				"match_score", "keywords", "last_seen_at").
			Values(t.DedupKey(), t.TenderID, t.Title, t.Portal, t.Department,
				t.Location, t.BudgetMax, t.PublishedDate, t.Deadline, t.URL,
				t.MatchScore, pq.StringArray(t.MatchedKeywords), now).
			Suffix(`ON CONFLICT (dedup_key) DO UPDATE
                SET match_score = EXCLUDED.match_score,
                    keywords = EXCLUDED.keywords,
                    deadline_at = EXCLUDED.deadline_at,
                    last_seen_at = EXCLUDED.last_seen_at`).
			ToSql()
		if err != nil {
			return fmt.Errorf("build upsert: %w", err)
		}
		if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert tender %s: %w", t.DedupKey(), err)
		}
	}

	return nil
}

// Close releases the connection pool.
func (a *PostgresArchive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
