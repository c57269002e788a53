package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.New(os.Stdout, "[TEST] ", log.LstdFlags)
}

// buildTestIndex writes a small pre-built index file the way the offline
// ingestion pipeline would
func buildTestIndex(t *testing.T, docs map[string][]float32) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "vector_index.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE documents (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		metadata TEXT NOT NULL,
		embedding TEXT NOT NULL
	)`)
	require.NoError(t, err)

	for content, embedding := range docs {
		embJSON, err := json.Marshal(embedding)
		require.NoError(t, err)
		metaJSON, err := json.Marshal(map[string]string{"source": "test.pdf"})
		require.NoError(t, err)

		_, err = db.Exec(`INSERT INTO documents (id, content, metadata, embedding) VALUES (?, ?, ?, ?)`,
			content, content, string(metaJSON), string(embJSON))
		require.NoError(t, err)
	}

	return path
}

func TestSQLiteSearchNearestFirst(t *testing.T) {
	path := buildTestIndex(t, map[string][]float32{
		"exact match":  {1, 0, 0},
		"close match":  {0.9, 0.1, 0},
		"far document": {0, 0, 1},
	})

	repo := NewSQLiteVectorRepository(path, testLogger())
	defer repo.Close()

	results, err := repo.Search(context.Background(), []float32{1, 0, 0}, 3)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "exact match", results[0].Document.Content)
	assert.Equal(t, "close match", results[1].Document.Content)
	assert.Equal(t, "far document", results[2].Document.Content)

	// Distances grow with dissimilarity
	assert.Less(t, results[0].Distance, results[1].Distance)
	assert.Less(t, results[1].Distance, results[2].Distance)
	assert.InDelta(t, 0.0, results[0].Distance, 1e-6)
}

func TestSQLiteSearchLimitsToK(t *testing.T) {
	path := buildTestIndex(t, map[string][]float32{
		"a": {1, 0},
		"b": {0.8, 0.2},
		"c": {0.5, 0.5},
		"d": {0, 1},
	})

	repo := NewSQLiteVectorRepository(path, testLogger())
	defer repo.Close()

	results, err := repo.Search(context.Background(), []float32{1, 0}, 2)

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSQLiteSearchCarriesMetadata(t *testing.T) {
	path := buildTestIndex(t, map[string][]float32{
		"doc": {1, 0},
	})

	repo := NewSQLiteVectorRepository(path, testLogger())
	defer repo.Close()

	results, err := repo.Search(context.Background(), []float32{1, 0}, 1)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "test.pdf", results[0].Document.Metadata["source"])
}

func TestSQLiteMissingIndexIsUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does_not_exist.db")

	repo := NewSQLiteVectorRepository(path, testLogger())

	_, err := repo.Search(context.Background(), []float32{1, 0}, 5)
	assert.ErrorIs(t, err, ErrIndexUnavailable)

	_, err = repo.Count(context.Background())
	assert.ErrorIs(t, err, ErrIndexUnavailable)

	assert.ErrorIs(t, repo.Ping(context.Background()), ErrIndexUnavailable)
}

func TestSQLiteCount(t *testing.T) {
	path := buildTestIndex(t, map[string][]float32{
		"a": {1, 0},
		"b": {0, 1},
	})

	repo := NewSQLiteVectorRepository(path, testLogger())
	defer repo.Close()

	count, err := repo.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestSQLiteCloseReleasesIndex(t *testing.T) {
	path := buildTestIndex(t, map[string][]float32{"a": {1, 0}})

	repo := NewSQLiteVectorRepository(path, testLogger())
	require.NoError(t, repo.Close())

	_, err := repo.Search(context.Background(), []float32{1, 0}, 1)
	assert.ErrorIs(t, err, ErrIndexUnavailable)
}
