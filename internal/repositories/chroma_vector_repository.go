package repositories

import (
	"context"
	"fmt"

	"ai-act-chat/internal/db"
)

// ChromaVectorRepository implements VectorRepository against a remote
// ChromaDB collection built offline. Useful when the index outgrows the
// local SQLite file; the default deployment uses SQLiteVectorRepository.
type ChromaVectorRepository struct {
	client     *db.ChromaDBClient
	collection string
}

// NewChromaVectorRepository creates a ChromaDB-backed vector repository over
// a single pre-built collection
func NewChromaVectorRepository(client *db.ChromaDBClient, collection string) VectorRepository {
	return &ChromaVectorRepository{
		client:     client,
		collection: collection,
	}
}

// Search queries the collection and returns the k nearest documents
func (r *ChromaVectorRepository) Search(ctx context.Context, queryEmbedding []float32, k int) ([]*ScoredDocument, error) {
	resp, err := r.client.Query(ctx, r.collection, [][]float32{queryEmbedding}, k)
	if err != nil {
		return nil, NewVectorRepositoryError("search", err, "")
	}

	if len(resp.Documents) == 0 {
		return []*ScoredDocument{}, nil
	}

	// Chroma returns one result list per query embedding; we only send one
	contents := resp.Documents[0]
	results := make([]*ScoredDocument, 0, len(contents))
	for i, content := range contents {
		metadata := make(map[string]string)
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			for key, value := range resp.Metadatas[0][i] {
				metadata[key] = fmt.Sprintf("%v", value)
			}
		}

		var distance float64
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			distance = float64(resp.Distances[0][i])
		}

		results = append(results, &ScoredDocument{
			Document: &Document{Content: content, Metadata: metadata},
			Distance: distance,
		})
	}

	return results, nil
}

// Count returns the number of documents in the collection
func (r *ChromaVectorRepository) Count(ctx context.Context) (int, error) {
	count, err := r.client.CountCollection(ctx, r.collection)
	if err != nil {
		return 0, NewVectorRepositoryError("count", err, "")
	}
	return count, nil
}

// Ping verifies ChromaDB is reachable and the collection exists
func (r *ChromaVectorRepository) Ping(ctx context.Context) error {
	if err := r.client.Heartbeat(ctx); err != nil {
		return NewVectorRepositoryError("ping", err, "")
	}
	if _, err := r.client.GetCollection(ctx, r.collection); err != nil {
		return NewVectorRepositoryError("ping", err, "collection not found: "+r.collection)
	}
	return nil
}

// Close releases client connections
func (r *ChromaVectorRepository) Close() error {
	r.client.Close()
	return nil
}
