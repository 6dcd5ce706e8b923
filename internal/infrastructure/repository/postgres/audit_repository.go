package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/finsolve/knowledge-assistant/internal/core/ports"
)

// AuditRepository persists one row per completed query pipeline call. Only
// the caller role, shape and outcome of the query are stored, never the
// question or the answer text.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent api startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS query_audit (
	id BIGSERIAL PRIMARY KEY,
	caller_role TEXT NOT NULL,
	question_length INT NOT NULL,
	denied BOOLEAN NOT NULL,
	retrieved_count INT NOT NULL,
	duration_ms BIGINT NOT NULL,
	error_kind TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_query_audit_caller_role ON query_audit(caller_role);
CREATE INDEX IF NOT EXISTS idx_query_audit_created_at ON query_audit(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *AuditRepository) RecordQuery(ctx context.Context, entry ports.AuditEntry) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO query_audit (caller_role, question_length, denied, retrieved_count, duration_ms, error_kind)
VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.CallerRole,
		entry.QuestionLength,
		entry.Denied,
		entry.RetrievedCount,
		entry.DurationMillis,
		entry.ErrorKind,
	)
	if err != nil {
		return fmt.Errorf("insert query audit row: %w", err)
	}
	return nil
}
