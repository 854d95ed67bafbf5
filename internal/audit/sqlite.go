package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/vigil-gate/vigil/internal/model"
)

// SQLiteRecorder spools audit records into a local database. Standalone
// deployments without a reachable portal backend use it as their recording
// endpoint; it also backs the scan-history view of the gate harness.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder opens (and migrates) the audit spool at dbPath.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create audit log directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping audit log: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS scan_records (
			id TEXT PRIMARY KEY,
			action TEXT NOT NULL,
			category TEXT NOT NULL,
			granted INTEGER NOT NULL,
			reason TEXT NOT NULL,
			raw_payload TEXT NOT NULL,
			source TEXT NOT NULL,
			operator_id TEXT NOT NULL,
			operator_name TEXT NOT NULL,
			operator_role TEXT NOT NULL,
			scanned_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_scan_records_scanned_at
			ON scan_records(scanned_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate audit log: %w", err)
	}
	return nil
}

// Record implements Recorder.
func (r *SQLiteRecorder) Record(ctx context.Context, record model.AuditRecord) error {
	if record.At.IsZero() {
		record.At = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scan_records (
			id, action, category, granted, reason, raw_payload, source,
			operator_id, operator_name, operator_role, scanned_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		string(record.Action),
		string(record.Category),
		record.Granted,
		record.Reason,
		record.Raw,
		string(record.Source),
		record.Operator.ID,
		record.Operator.Name,
		string(record.Operator.Role),
		record.At,
	)
	if err != nil {
		return fmt.Errorf("failed to save scan record: %w", err)
	}
	return nil
}

// Recent returns the newest records, most recent first.
func (r *SQLiteRecorder) Recent(ctx context.Context, limit int) ([]model.AuditRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, action, category, granted, reason, raw_payload, source,
			operator_id, operator_name, operator_role, scanned_at
		FROM scan_records
		ORDER BY scanned_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.AuditRecord
	for rows.Next() {
		var rec model.AuditRecord
		var action, category, source, role string
		if err := rows.Scan(
			&rec.ID, &action, &category, &rec.Granted, &rec.Reason,
			&rec.Raw, &source, &rec.Operator.ID, &rec.Operator.Name,
			&role, &rec.At,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		rec.Action = model.AuditAction(action)
		rec.Category = model.Category(category)
		rec.Source = model.PayloadSource(source)
		rec.Operator.Role = model.Role(role)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
