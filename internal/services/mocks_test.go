package services

import (
	"context"

	"ai-act-chat/internal/models"
	"ai-act-chat/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// ============================================================================
// Shared mocks
// ============================================================================

type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockVectorRepository struct {
	mock.Mock
}

func (m *MockVectorRepository) Search(ctx context.Context, queryEmbedding []float32, k int) ([]*repositories.ScoredDocument, error) {
	args := m.Called(ctx, queryEmbedding, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repositories.ScoredDocument), args.Error(1)
}

func (m *MockVectorRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockVectorRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockVectorRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Complete(ctx context.Context, messages []models.ChatMessage, opts CompletionOptions) (string, error) {
	args := m.Called(ctx, messages, opts)
	return args.String(0), args.Error(1)
}

type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Retrieve(ctx context.Context, query string, k int) ([]*repositories.Document, float64) {
	args := m.Called(ctx, query, k)
	if args.Get(0) == nil {
		return nil, args.Get(1).(float64)
	}
	return args.Get(0).([]*repositories.Document), args.Get(1).(float64)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, query, contextText string, history []models.ChatMessage) (string, error) {
	args := m.Called(ctx, query, contextText, history)
	return args.String(0), args.Error(1)
}

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(query string, history []models.ChatMessage) (*models.QueryAnalysis, error) {
	args := m.Called(query, history)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QueryAnalysis), args.Error(1)
}
