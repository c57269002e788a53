package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"ai-act-chat/internal/repositories"
)

const (
	// DefaultK is the number of documents fetched when the caller does not
	// ask for a specific count
	DefaultK = 5

	// MaxK bounds any single retrieval; out-of-range requests are clamped
	// silently
	MaxK = 10

	// expectedContentLength is the content-length baseline used when
	// scoring retrieved documents
	expectedContentLength = 500
)

// Relevance score weights: content length / retrieved count / lexical overlap
const (
	contentWeight = 0.3
	countWeight   = 0.3
	overlapWeight = 0.4
)

// Retriever embeds queries, searches the vector index and attaches a
// heuristic confidence score to the retrieved set. Retrieval never fails a
// request: an unavailable index or upstream error degrades to an empty
// result with a zero score.
type Retriever struct {
	embedder   EmbeddingClient
	vectorRepo repositories.VectorRepository
	logger     *log.Logger
}

// NewRetriever creates a new retriever
func NewRetriever(embedder EmbeddingClient, vectorRepo repositories.VectorRepository, logger *log.Logger) *Retriever {
	return &Retriever{
		embedder:   embedder,
		vectorRepo: vectorRepo,
		logger:     logger,
	}
}

// Retrieve returns up to k documents relevant to the query together with a
// confidence score in [0,1]. If the first pass comes back empty, follow-up
// style queries get one broader retry before giving up.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]*repositories.Document, float64) {
	query = strings.TrimSpace(query)
	if query == "" {
		r.logger.Println("Empty query provided to retriever")
		return nil, 0.0
	}

	k = clampK(k)

	docs, err := r.search(ctx, query, k)
	if err != nil {
		if errors.Is(err, repositories.ErrIndexUnavailable) {
			r.logger.Println("Vector index is not loaded, returning empty retrieval")
		} else {
			r.logger.Printf("Retrieval failed: %v", err)
		}
		return nil, 0.0
	}

	if len(docs) == 0 {
		docs = r.retryBroader(ctx, query, k)
	}

	if len(docs) == 0 {
		r.logger.Printf("No documents retrieved for query: %q", query)
		return nil, 0.0
	}

	score := ScoreRelevance(docs, query, k)
	r.logger.Printf("Retrieved %d documents with relevance score: %.3f", len(docs), score)

	return docs, score
}

// search embeds the query and runs the nearest-neighbor lookup
func (r *Retriever) search(ctx context.Context, query string, k int) ([]*repositories.Document, error) {
	start := time.Now()

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	embedTime := time.Since(start).Seconds() * 1000

	searchStart := time.Now()
	scored, err := r.vectorRepo.Search(ctx, embedding, k)
	if err != nil {
		return nil, err
	}
	searchTime := time.Since(searchStart).Seconds() * 1000

	r.logger.Printf("Search completed: %d results (embed: %.2fms, search: %.2fms)",
		len(scored), embedTime, searchTime)

	docs := make([]*repositories.Document, len(scored))
	for i, s := range scored {
		docs[i] = s.Document
	}
	return docs, nil
}

// retryBroader widens an empty first pass for follow-up style queries:
// example requests drop the "example" words, detail requests fetch more
// documents.
func (r *Retriever) retryBroader(ctx context.Context, query string, k int) []*repositories.Document {
	lower := strings.ToLower(query)

	switch {
	case containsAny(lower, []string{"example", "examples", "instance", "case"}):
		broader := strings.NewReplacer("examples", "", "example", "").Replace(query)
		broader = strings.TrimSpace(broader)
		if broader == "" {
			return nil
		}
		r.logger.Printf("Retrying with broader query: %q", broader)
		docs, err := r.search(ctx, broader, k)
		if err != nil {
			return nil
		}
		return docs

	case containsAny(lower, []string{"detailed", "more", "expand", "elaborate", "further"}):
		wider := clampK(k * 2)
		r.logger.Printf("Retrying detail request with k=%d", wider)
		docs, err := r.search(ctx, query, wider)
		if err != nil {
			return nil
		}
		return docs
	}

	return nil
}

// ScoreRelevance computes a deterministic confidence score in [0,1] for a
// retrieved document set: a weighted mix of average content length against
// the expected baseline, retrieved-count ratio against the requested k, and
// mean lexical overlap between query terms and each document.
func ScoreRelevance(docs []*repositories.Document, query string, k int) float64 {
	if len(docs) == 0 {
		return 0.0
	}
	if k < 1 {
		k = DefaultK
	}

	totalLength := 0
	for _, doc := range docs {
		totalLength += len(doc.Content)
	}
	avgLength := float64(totalLength) / float64(len(docs))

	contentScore := avgLength / expectedContentLength
	if contentScore > 1.0 {
		contentScore = 1.0
	}

	countScore := float64(len(docs)) / float64(k)
	if countScore > 1.0 {
		countScore = 1.0
	}

	queryWords := wordSet(query)
	overlapScore := 0.0
	if len(queryWords) > 0 {
		sum := 0.0
		counted := 0
		for _, doc := range docs {
			docWords := wordSet(doc.Content)
			if len(docWords) == 0 {
				continue
			}
			matches := 0
			for word := range queryWords {
				if docWords[word] {
					matches++
				}
			}
			sum += float64(matches) / float64(len(queryWords))
			counted++
		}
		if counted > 0 {
			overlapScore = sum / float64(counted)
		}
	}

	score := contentScore*contentWeight + countScore*countWeight + overlapScore*overlapWeight
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func clampK(k int) int {
	if k < 1 {
		return 1
	}
	if k > MaxK {
		return MaxK
	}
	return k
}

func wordSet(text string) map[string]bool {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]bool, len(words))
	for _, word := range words {
		set[word] = true
	}
	return set
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
