package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteVectorRepository serves similarity search over a pre-built SQLite
// index file. The whole index is loaded into memory once at construction and
// queried read-only for the lifetime of the process. A missing index file is
// a degraded state, not a startup failure: Search reports ErrIndexUnavailable
// and the caller falls back to empty retrieval.
type SQLiteVectorRepository struct {
	mu      sync.RWMutex
	path    string
	entries []indexEntry
	loaded  bool
	logger  *log.Logger
}

type indexEntry struct {
	doc       *Document
	embedding []float32
}

// indexRow mirrors one row of the documents table in the index file
type indexRow struct {
	Content   string
	Metadata  string // JSON object of string -> string
	Embedding string // JSON array of float32
}

// NewSQLiteVectorRepository opens the index file at path and loads all
// document vectors into memory. A missing or unreadable file yields a
// repository in the unavailable state rather than an error.
func NewSQLiteVectorRepository(path string, logger *log.Logger) *SQLiteVectorRepository {
	repo := &SQLiteVectorRepository{
		path:   path,
		logger: logger,
	}

	if _, err := os.Stat(path); err != nil {
		logger.Printf("Vector index not found at %s, search will be unavailable", path)
		return repo
	}

	if err := repo.load(); err != nil {
		logger.Printf("Failed to load vector index from %s: %v", path, err)
		return repo
	}

	logger.Printf("Vector index loaded from %s (%d documents)", path, len(repo.entries))
	return repo
}

func (r *SQLiteVectorRepository) load() error {
	db, err := sql.Open("sqlite3", r.path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("opening index database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT content, metadata, embedding FROM documents`)
	if err != nil {
		return fmt.Errorf("reading documents table: %w", err)
	}
	defer rows.Close()

	var entries []indexEntry
	for rows.Next() {
		var row indexRow
		if err := rows.Scan(&row.Content, &row.Metadata, &row.Embedding); err != nil {
			return fmt.Errorf("scanning index row: %w", err)
		}

		var embedding []float32
		if err := json.Unmarshal([]byte(row.Embedding), &embedding); err != nil {
			return fmt.Errorf("decoding embedding: %w", err)
		}

		metadata := make(map[string]string)
		if row.Metadata != "" {
			if err := json.Unmarshal([]byte(row.Metadata), &metadata); err != nil {
				return fmt.Errorf("decoding metadata: %w", err)
			}
		}

		entries = append(entries, indexEntry{
			doc:       &Document{Content: row.Content, Metadata: metadata},
			embedding: embedding,
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating index rows: %w", err)
	}

	r.mu.Lock()
	r.entries = entries
	r.loaded = true
	r.mu.Unlock()

	return nil
}

// Search performs a brute-force cosine similarity scan over the in-memory
// index and returns the k nearest documents, nearest first.
func (r *SQLiteVectorRepository) Search(ctx context.Context, queryEmbedding []float32, k int) ([]*ScoredDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.loaded {
		return nil, ErrIndexUnavailable
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type scored struct {
		entry      indexEntry
		similarity float64
	}

	results := make([]scored, 0, len(r.entries))
	for _, entry := range r.entries {
		results = append(results, scored{
			entry:      entry,
			similarity: cosineSimilarity(queryEmbedding, entry.embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].similarity > results[j].similarity
	})

	if len(results) > k {
		results = results[:k]
	}

	docs := make([]*ScoredDocument, len(results))
	for i, res := range results {
		docs[i] = &ScoredDocument{
			Document: res.entry.doc,
			Distance: 1.0 - res.similarity, // cosine distance
		}
	}

	return docs, nil
}

// Count returns the number of indexed documents
func (r *SQLiteVectorRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.loaded {
		return 0, ErrIndexUnavailable
	}
	return len(r.entries), nil
}

// Ping reports whether the index was loaded
func (r *SQLiteVectorRepository) Ping(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.loaded {
		return ErrIndexUnavailable
	}
	return nil
}

// Close releases the in-memory index
func (r *SQLiteVectorRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
	r.loaded = false
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
