package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mvp-joe/docsift/internal/docstring"
)

var (
	// ErrNoRuns is returned when the database holds no extraction run yet.
	ErrNoRuns = errors.New("no runs recorded")
	// ErrSchemaMismatch is returned when the database was written by an
	// incompatible version.
	ErrSchemaMismatch = errors.New("index schema version mismatch")
)

// Run describes one persisted extraction run.
type Run struct {
	ID        string
	Root      string
	Files     int
	Symbols   int
	CreatedAt time.Time
}

// IndexReader reads persisted runs.
// Opens database in read-only mode for safety and concurrent access.
type IndexReader struct {
	db *sql.DB
}

// NewIndexReader opens the index database at dbPath read-only.
func NewIndexReader(dbPath string) (*IndexReader, error) {
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check schema version: %w", err)
	}
	if version == "0" {
		db.Close()
		return nil, ErrNoRuns
	}
	if version != SchemaVersion {
		db.Close()
		return nil, fmt.Errorf("%w: found %s, want %s", ErrSchemaMismatch, version, SchemaVersion)
	}

	return &IndexReader{db: db}, nil
}

// LatestRun returns the most recently created run.
func (r *IndexReader) LatestRun() (*Run, error) {
	row := sq.Select("run_id", "root", "file_count", "symbol_count", "created_at").
		From("runs").
		OrderBy("created_at DESC", "rowid DESC").
		Limit(1).
		RunWith(r.db).
		QueryRow()

	var run Run
	var createdAt int64
	err := row.Scan(&run.ID, &run.Root, &run.Files, &run.Symbols, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}

	run.CreatedAt = time.Unix(0, createdAt).UTC()
	return &run, nil
}

// Todos returns the todo entries of a run in traversal order.
func (r *IndexReader) Todos(runID string) ([]docstring.TodoEntry, error) {
	rows, err := sq.Select("path", "text").
		From("todos").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("seq").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	defer rows.Close()

	todos := []docstring.TodoEntry{}
	for rows.Next() {
		var t docstring.TodoEntry
		if err := rows.Scan(&t.Path, &t.Text); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}
	return todos, nil
}

// Deprecations returns the deprecation entries of a run in traversal order.
func (r *IndexReader) Deprecations(runID string) ([]docstring.DeprecationEntry, error) {
	rows, err := sq.Select("path", "reason").
		From("deprecations").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("seq").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query deprecations: %w", err)
	}
	defer rows.Close()

	deps := []docstring.DeprecationEntry{}
	for rows.Next() {
		var d docstring.DeprecationEntry
		if err := rows.Scan(&d.Path, &d.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan deprecation: %w", err)
		}
		deps = append(deps, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deprecations: %w", err)
	}
	return deps, nil
}

// Warnings returns the consistency warnings of a run in traversal order.
func (r *IndexReader) Warnings(runID string) ([]docstring.Warning, error) {
	rows, err := sq.Select("kind", "path", "name").
		From("warnings").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("seq").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query warnings: %w", err)
	}
	defer rows.Close()

	warnings := []docstring.Warning{}
	for rows.Next() {
		var w docstring.Warning
		var kind string
		if err := rows.Scan(&kind, &w.Path, &w.Name); err != nil {
			return nil, fmt.Errorf("failed to scan warning: %w", err)
		}
		w.Kind = docstring.WarningKind(kind)
		warnings = append(warnings, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating warnings: %w", err)
	}
	return warnings, nil
}

// Close closes the database connection.
func (r *IndexReader) Close() error {
	return r.db.Close()
}
