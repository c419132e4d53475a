// Package journal keeps a local audit trail of accepted submissions in a
// SQLite database. It never affects submission semantics; a journaling
// failure is logged by the caller and otherwise ignored.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Entry is one recorded submission.
type Entry struct {
	ID          int64
	SubmittedAt time.Time
	Kind        string // "order" or "secdef"
	Symbol      string
	Payload     string // request body as JSON
}

// Journal records accepted submissions in SQLite.
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at dbPath.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	submitted_at INTEGER NOT NULL,
	kind         TEXT    NOT NULL,
	symbol       TEXT    NOT NULL,
	payload      TEXT    NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// RecordSubmission appends one row for an accepted submission. The payload
// is stored as JSON.
func (j *Journal) RecordSubmission(ctx context.Context, kind, symbol string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding journal payload: %w", err)
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO submissions (submitted_at, kind, symbol, payload) VALUES (?, ?, ?, ?)`,
		time.Now().UnixMilli(), kind, symbol, string(b))
	if err != nil {
		return fmt.Errorf("inserting journal row: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first, up to limit.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, submitted_at, kind, symbol, payload
		 FROM submissions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.ID, &ts, &e.Kind, &e.Symbol, &e.Payload); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		e.SubmittedAt = time.UnixMilli(ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the total number of journaled submissions.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&n)
	return n, err
}
