package storage

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mvp-joe/docsift/internal/docstring"
)

// RunRecord is everything persisted for one extraction run.
type RunRecord struct {
	Root      string
	Files     int
	Symbols   int
	Index     *docstring.AggregateIndex
	Warnings  []docstring.Warning
	CreatedAt time.Time // zero means now
}

// IndexWriter appends extraction runs to a SQLite database.
type IndexWriter struct {
	db *sql.DB
}

// NewIndexWriter opens or creates the index database at dbPath.
// Enables foreign keys and creates schema if needed.
func NewIndexWriter(dbPath string) (*IndexWriter, error) {
	// Foreign keys go in the DSN so every pooled connection enforces cascades.
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check schema version: %w", err)
	}

	switch version {
	case "0":
		if err := CreateSchema(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	case SchemaVersion:
	default:
		db.Close()
		return nil, fmt.Errorf("%w: found %s, want %s", ErrSchemaMismatch, version, SchemaVersion)
	}

	return &IndexWriter{db: db}, nil
}

// WriteRun stores a run with its todos, deprecations and warnings in one
// transaction and returns the new run ID. Rows keep the order they have in
// the record.
func (w *IndexWriter) WriteRun(rec RunRecord) (string, error) {
	runID := uuid.New().String()
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := w.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	_, err = sq.Insert("runs").
		Columns("run_id", "root", "file_count", "symbol_count", "created_at").
		Values(runID, rec.Root, rec.Files, rec.Symbols, createdAt.UnixNano()).
		RunWith(tx).
		Exec()
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	if rec.Index != nil {
		for i, todo := range rec.Index.Todos {
			_, err := sq.Insert("todos").
				Columns("run_id", "seq", "path", "text").
				Values(runID, i, todo.Path, todo.Text).
				RunWith(tx).
				Exec()
			if err != nil {
				return "", fmt.Errorf("failed to insert todo for %s: %w", todo.Path, err)
			}
		}

		for i, dep := range rec.Index.Deprecated {
			_, err := sq.Insert("deprecations").
				Columns("run_id", "seq", "path", "reason").
				Values(runID, i, dep.Path, dep.Reason).
				RunWith(tx).
				Exec()
			if err != nil {
				return "", fmt.Errorf("failed to insert deprecation for %s: %w", dep.Path, err)
			}
		}
	}

	for i, warn := range rec.Warnings {
		_, err := sq.Insert("warnings").
			Columns("run_id", "seq", "kind", "path", "name").
			Values(runID, i, string(warn.Kind), warn.Path, warn.Name).
			RunWith(tx).
			Exec()
		if err != nil {
			return "", fmt.Errorf("failed to insert warning for %s: %w", warn.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return runID, nil
}

// PruneRuns deletes all but the newest keep runs. Child rows go with them.
func (w *IndexWriter) PruneRuns(keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	newest := sq.Select("run_id").
		From("runs").
		OrderBy("created_at DESC", "rowid DESC").
		Limit(uint64(keep))
	sub, args, err := newest.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build prune query: %w", err)
	}

	res, err := sq.Delete("runs").
		Where("run_id NOT IN ("+sub+")", args...).
		RunWith(w.db).
		Exec()
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection.
func (w *IndexWriter) Close() error {
	return w.db.Close()
}
