package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/mvp-joe/docsift/internal/docstring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for IndexWriter/IndexReader:
// - NewIndexWriter creates the schema on first open and reuses it afterwards
// - WriteRun stores todos, deprecations and warnings in encounter order
// - LatestRun returns the newest run; an empty database reports ErrNoRuns
// - Entries of different runs never mix
// - PruneRuns keeps the newest runs and cascades child rows
// - Runs within the same second are ordered by their sub-second time
// - An incompatible schema version is rejected

func sampleRecord(createdAt time.Time) RunRecord {
	return RunRecord{
		Root:    "/src/app",
		Files:   2,
		Symbols: 7,
		Index: &docstring.AggregateIndex{
			Todos: []docstring.TodoEntry{
				{Path: "app.b", Text: "second by name, first by order"},
				{Path: "app.a", Text: "later"},
			},
			Deprecated: []docstring.DeprecationEntry{
				{Path: "app.old", Reason: "Use app.new."},
			},
		},
		Warnings: []docstring.Warning{
			{Kind: docstring.WarnMissingReturnDoc, Path: "app.a"},
			{Kind: docstring.WarnMissingParamDoc, Path: "app.a", Name: "x"},
		},
		CreatedAt: createdAt,
	}
}

func TestIndex_WriteAndReadRun(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "index.db")
	writer, err := NewIndexWriter(dbPath)
	require.NoError(t, err)
	defer writer.Close()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runID, err := writer.WriteRun(sampleRecord(created))
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	reader, err := NewIndexReader(dbPath)
	require.NoError(t, err)
	defer reader.Close()

	run, err := reader.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, Run{ID: runID, Root: "/src/app", Files: 2, Symbols: 7, CreatedAt: created}, *run)

	todos, err := reader.Todos(runID)
	require.NoError(t, err)
	assert.Equal(t, sampleRecord(created).Index.Todos, todos)

	deps, err := reader.Deprecations(runID)
	require.NoError(t, err)
	assert.Equal(t, sampleRecord(created).Index.Deprecated, deps)

	warnings, err := reader.Warnings(runID)
	require.NoError(t, err)
	assert.Equal(t, sampleRecord(created).Warnings, warnings)
}

func TestIndex_LatestRunAndIsolation(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "index.db")
	writer, err := NewIndexWriter(dbPath)
	require.NoError(t, err)
	defer writer.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	firstID, err := writer.WriteRun(sampleRecord(base))
	require.NoError(t, err)

	second := RunRecord{Root: "/src/app", CreatedAt: base.Add(time.Minute)}
	secondID, err := writer.WriteRun(second)
	require.NoError(t, err)

	reader, err := NewIndexReader(dbPath)
	require.NoError(t, err)
	defer reader.Close()

	run, err := reader.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, secondID, run.ID)

	todos, err := reader.Todos(secondID)
	require.NoError(t, err)
	assert.Empty(t, todos)

	todos, err = reader.Todos(firstID)
	require.NoError(t, err)
	assert.Len(t, todos, 2)
}

func TestIndex_EmptyDatabase(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "index.db")
	writer, err := NewIndexWriter(dbPath)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader, err := NewIndexReader(dbPath)
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.LatestRun()
	assert.ErrorIs(t, err, ErrNoRuns)
}

func TestIndex_ReopenKeepsRuns(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "index.db")
	writer, err := NewIndexWriter(dbPath)
	require.NoError(t, err)
	runID, err := writer.WriteRun(sampleRecord(time.Time{}))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	writer, err = NewIndexWriter(dbPath)
	require.NoError(t, err)
	defer writer.Close()

	reader, err := NewIndexReader(dbPath)
	require.NoError(t, err)
	defer reader.Close()

	run, err := reader.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, runID, run.ID)
	assert.False(t, run.CreatedAt.IsZero())
}

func TestIndex_PruneRuns(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "index.db")
	writer, err := NewIndexWriter(dbPath)
	require.NoError(t, err)
	defer writer.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := writer.WriteRun(sampleRecord(base.Add(time.Duration(i) * time.Hour)))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	removed, err := writer.PruneRuns(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	var todoRuns int
	require.NoError(t, writer.db.QueryRow("SELECT COUNT(DISTINCT run_id) FROM todos").Scan(&todoRuns))
	assert.Equal(t, 1, todoRuns)

	var remaining string
	require.NoError(t, writer.db.QueryRow("SELECT run_id FROM runs").Scan(&remaining))
	assert.Equal(t, ids[2], remaining)
}

func TestIndex_SchemaMismatch(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "index.db")
	writer, err := NewIndexWriter(dbPath)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = db.Exec("UPDATE index_metadata SET value = '99' WHERE key = 'schema_version'")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = NewIndexWriter(dbPath)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	_, err = NewIndexReader(dbPath)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestIndex_SubSecondOrdering(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "index.db")
	writer, err := NewIndexWriter(dbPath)
	require.NoError(t, err)
	defer writer.Close()

	// The later run is inserted first so insertion order cannot decide.
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	laterID, err := writer.WriteRun(RunRecord{Root: "/src/app", CreatedAt: base.Add(100 * time.Millisecond)})
	require.NoError(t, err)
	_, err = writer.WriteRun(RunRecord{Root: "/src/app", CreatedAt: base})
	require.NoError(t, err)

	reader, err := NewIndexReader(dbPath)
	require.NoError(t, err)
	defer reader.Close()

	run, err := reader.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, laterID, run.ID)
	assert.Equal(t, base.Add(100*time.Millisecond), run.CreatedAt)

	removed, err := writer.PruneRuns(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	run, err = reader.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, laterID, run.ID)
}
