package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
)

// RecordMirror copies committed records into Postgres for ad-hoc SQL.
// The JSON result files remain authoritative; a row is overwritten whenever
// its record is committed again.
type RecordMirror struct {
	db  *sql.DB
	now func() time.Time
}

func NewRecordMirror(db *sql.DB) *RecordMirror {
	return &RecordMirror{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (m *RecordMirror) EnsureSchema(ctx context.Context) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent reviewer runs.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS syllabus_records (
	scope TEXT NOT NULL,
	source_file TEXT NOT NULL,
	is_error BOOLEAN NOT NULL,
	error_message TEXT,
	course_number TEXT,
	decision TEXT,
	payload JSONB NOT NULL,
	committed_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (scope, source_file)
);

CREATE INDEX IF NOT EXISTS idx_syllabus_records_decision ON syllabus_records(decision);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (m *RecordMirror) RecordCommitted(ctx context.Context, scopeKey string, rec domain.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	var errorMessage, courseNumber, decision sql.NullString
	if rec.IsError() {
		errorMessage = sql.NullString{String: rec.Error, Valid: true}
	} else {
		if cn := rec.Review.CourseNumber(); cn != "" {
			courseNumber = sql.NullString{String: cn, Valid: true}
		}
		decision = sql.NullString{String: string(rec.Review.CourseAnalysis.ReviewDecision.Decision), Valid: true}
	}

	_, err = m.db.ExecContext(ctx, `
INSERT INTO syllabus_records (
	scope, source_file, is_error, error_message, course_number, decision, payload, committed_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (scope, source_file) DO UPDATE SET
	is_error = EXCLUDED.is_error,
	error_message = EXCLUDED.error_message,
	course_number = EXCLUDED.course_number,
	decision = EXCLUDED.decision,
	payload = EXCLUDED.payload,
	committed_at = EXCLUDED.committed_at
`,
		scopeKey, rec.SourceFile, rec.IsError(), errorMessage, courseNumber, decision, payload, m.now(),
	)
	if err != nil {
		return fmt.Errorf("upsert syllabus record: %w", err)
	}
	return nil
}
