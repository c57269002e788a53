package repositories

import (
	"context"
	"errors"
)

// ErrIndexUnavailable is returned when the vector index was never loaded,
// e.g. the index file is missing at startup. Callers treat it as an empty
// result set, not a crash.
var ErrIndexUnavailable = errors.New("vector index unavailable")

// VectorRepository defines the read-only interface over a pre-built vector
// index. The index is built offline and never mutated at runtime.
type VectorRepository interface {
	// Search returns the k nearest documents to the query embedding,
	// nearest first, with their distances.
	Search(ctx context.Context, queryEmbedding []float32, k int) ([]*ScoredDocument, error)

	// Count returns the number of documents in the index.
	Count(ctx context.Context) (int, error)

	// Ping verifies the index backend is reachable/loaded.
	Ping(ctx context.Context) error

	Close() error
}

// Document is an immutable unit of retrieved content
type Document struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

// ScoredDocument pairs a document with its distance to the query embedding
// (lower is closer)
type ScoredDocument struct {
	Document *Document `json:"document"`
	Distance float64   `json:"distance"`
}

// VectorRepositoryError wraps a failed index operation with context
type VectorRepositoryError struct {
	Operation string
	Err       error
	Message   string
}

func (e *VectorRepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Operation + ": " + e.Err.Error()
	}
	return e.Operation + ": unknown error"
}

func (e *VectorRepositoryError) Unwrap() error {
	return e.Err
}

// NewVectorRepositoryError creates a new vector repository error
func NewVectorRepositoryError(operation string, err error, message string) *VectorRepositoryError {
	return &VectorRepositoryError{
		Operation: operation,
		Err:       err,
		Message:   message,
	}
}
