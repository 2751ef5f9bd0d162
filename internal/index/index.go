// Package index maintains a sqlite catalog of runs under .flow so
// `flow list` does not have to stat every run directory. The run
// directory stays the source of truth; the index is rebuilt from it on
// every upsert.
package index

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/christophervuu/flow/internal/run"
)

// Entry is one indexed run.
type Entry struct {
	RunID     string
	Title     string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Index struct {
	db *sql.DB
}

// Open creates or opens the index database under the .flow directory
// of base.
func Open(base string) (*Index, error) {
	db, err := sql.Open("sqlite", filepath.Join(base, run.FlowDir, "index.db"))
	if err != nil {
		return nil, err
	}

	idx := &Index{db: db}
	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (i *Index) Close() error {
	return i.db.Close()
}

func (i *Index) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
	`

	_, err := i.db.Exec(schema)
	return err
}

// Upsert records or refreshes a run's row.
func (i *Index) Upsert(e Entry) error {
	_, err := i.db.Exec(
		`INSERT INTO runs (run_id, title, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET title = excluded.title, status = excluded.status, updated_at = excluded.updated_at`,
		e.RunID, e.Title, e.Status, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

// Get returns the indexed entry for a run, or nil when absent.
func (i *Index) Get(runID string) (*Entry, error) {
	row := i.db.QueryRow(
		`SELECT run_id, title, status, created_at, updated_at FROM runs WHERE run_id = ?`, runID,
	)

	var e Entry
	err := row.Scan(&e.RunID, &e.Title, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns the most recently created runs, newest first.
func (i *Index) List(limit int) ([]Entry, error) {
	rows, err := i.db.Query(
		`SELECT run_id, title, status, created_at, updated_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RunID, &e.Title, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes a run's row. Missing rows are not an error.
func (i *Index) Delete(runID string) error {
	_, err := i.db.Exec(`DELETE FROM runs WHERE run_id = ?`, runID)
	return err
}

// FormatTimeAgo renders a timestamp for list output.
func FormatTimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("Jan 2")
	}
}
