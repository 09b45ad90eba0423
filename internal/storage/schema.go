package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is the current layout of the annotation index database.
const SchemaVersion = "2"

// CreateSchema creates all tables and indexes for the annotation index.
// All statements run in one transaction so a failed bootstrap leaves no
// partial schema behind.
//
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	// Create all tables in dependency order
	tables := []struct {
		name string
		ddl  string
	}{
		{"index_metadata", createIndexMetadataTable},
		{"runs", createRunsTable},
		{"todos", createTodosTable},
		{"deprecations", createDeprecationsTable},
		{"warnings", createWarningsTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		"INSERT INTO index_metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)",
		SchemaVersion, now,
	); err != nil {
		return fmt.Errorf("failed to bootstrap index_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// GetSchemaVersion retrieves the schema version from index_metadata.
// Returns "0" if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='index_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check index_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil // New database
	}

	var version string
	err = db.QueryRow("SELECT value FROM index_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in index_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// Table DDL constants

const createIndexMetadataTable = `
CREATE TABLE index_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

const createRunsTable = `
CREATE TABLE runs (
    run_id TEXT PRIMARY KEY,                     -- UUID
    root TEXT NOT NULL,                          -- Directory the run was started from
    file_count INTEGER NOT NULL DEFAULT 0,
    symbol_count INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL                  -- Unix nanoseconds
)
`

const createTodosTable = `
CREATE TABLE todos (
    run_id TEXT NOT NULL,
    seq INTEGER NOT NULL,                        -- Traversal order within the run
    path TEXT NOT NULL,                          -- Dotted symbol path
    text TEXT NOT NULL,
    PRIMARY KEY (run_id, seq),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
)
`

const createDeprecationsTable = `
CREATE TABLE deprecations (
    run_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    path TEXT NOT NULL,
    reason TEXT NOT NULL,
    PRIMARY KEY (run_id, seq),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
)
`

const createWarningsTable = `
CREATE TABLE warnings (
    run_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    kind TEXT NOT NULL,                          -- missing_param_doc, unknown_param_doc, missing_return_doc
    path TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',               -- Parameter name, empty for return warnings
    PRIMARY KEY (run_id, seq),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
)
`

// getAllIndexes returns all index creation statements.
func getAllIndexes() []string {
	return []string{
		"CREATE INDEX idx_runs_created_at ON runs(created_at)",
		"CREATE INDEX idx_todos_path ON todos(path)",
		"CREATE INDEX idx_deprecations_path ON deprecations(path)",
		"CREATE INDEX idx_warnings_kind ON warnings(kind)",
	}
}
