package services

import (
	"context"
	"errors"
	"testing"

	"ai-act-chat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestChatter(t *testing.T) (*Chatter, *MockAnalyzer, *MockRetriever, *MockGenerator, *ConversationMemory) {
	mockAnalyzer := new(MockAnalyzer)
	mockRetriever := new(MockRetriever)
	mockGenerator := new(MockGenerator)
	memory := NewConversationMemory(10)

	chatter := NewChatter(mockAnalyzer, mockRetriever, mockGenerator, memory, testLogger())

	return chatter, mockAnalyzer, mockRetriever, mockGenerator, memory
}

func relevantAnalysis(reformulated string) *models.QueryAnalysis {
	return &models.QueryAnalysis{
		IsRelevant:        true,
		ReformulatedQuery: reformulated,
		QueryType:         models.QueryTypeFactual,
		Confidence:        0.7,
	}
}

func TestChatSuccessAppendsTwoTurns(t *testing.T) {
	chatter, mockAnalyzer, mockRetriever, mockGenerator, memory := setupTestChatter(t)

	mockAnalyzer.On("Analyze", "What is the EU AI Act?", mock.Anything).
		Return(relevantAnalysis("What is the EU AI Act?"), nil)
	mockRetriever.On("Retrieve", mock.Anything, "What is the EU AI Act?", DefaultK).
		Return(plainDocs("The EU AI Act regulates AI systems."), 0.72)
	mockGenerator.On("Generate", mock.Anything, "What is the EU AI Act?", mock.Anything, mock.Anything).
		Return("It is the EU's AI regulation.", nil)

	result := chatter.Chat(context.Background(), "What is the EU AI Act?")

	require.True(t, result.Success)
	assert.True(t, result.ContextUsed)
	assert.Equal(t, 0.72, result.RelevanceScore)
	assert.Equal(t, 1, result.DocumentsRetrieved)
	assert.Equal(t, 1, result.Stats.TotalQueries)
	assert.Equal(t, 1, result.Stats.SuccessfulRetrievals)

	turns := memory.Snapshot()
	require.Len(t, turns, 2)
	assert.Equal(t, models.RoleUser, turns[0].Role)
	assert.Equal(t, "What is the EU AI Act?", turns[0].Content)
	assert.Equal(t, models.RoleAssistant, turns[1].Role)
	assert.Equal(t, "It is the EU's AI regulation.", turns[1].Content)
}

func TestChatContextJoinsDocumentsWithDoubleNewline(t *testing.T) {
	chatter, mockAnalyzer, mockRetriever, mockGenerator, _ := setupTestChatter(t)

	mockAnalyzer.On("Analyze", mock.Anything, mock.Anything).
		Return(relevantAnalysis("risk categories"), nil)
	mockRetriever.On("Retrieve", mock.Anything, mock.Anything, mock.Anything).
		Return(plainDocs("first chunk", "second chunk"), 0.5)
	mockGenerator.On("Generate", mock.Anything, mock.Anything, "first chunk\n\nsecond chunk", mock.Anything).
		Return("answer", nil)

	result := chatter.Chat(context.Background(), "risk categories")

	assert.True(t, result.Success)
	mockGenerator.AssertExpectations(t)
}

func TestChatEmptyQuery(t *testing.T) {
	chatter, mockAnalyzer, mockRetriever, _, memory := setupTestChatter(t)

	mockAnalyzer.On("Analyze", "", mock.Anything).Return(nil, ErrEmptyQuery)

	result := chatter.Chat(context.Background(), "")

	assert.False(t, result.Success)
	assert.Equal(t, ErrorKindEmptyQuery, result.ErrorKind)
	assert.Equal(t, 1, result.Stats.TotalQueries)
	assert.Equal(t, 0, memory.Len())
	mockRetriever.AssertNotCalled(t, "Retrieve")
}

func TestChatIrrelevantQueryLeavesMemoryUntouched(t *testing.T) {
	chatter, mockAnalyzer, mockRetriever, _, memory := setupTestChatter(t)

	memory.Append(models.RoleUser, "earlier question")
	memory.Append(models.RoleAssistant, "earlier answer")

	mockAnalyzer.On("Analyze", mock.Anything, mock.Anything).Return(&models.QueryAnalysis{
		IsRelevant:        false,
		ReformulatedQuery: "weather in Madrid",
		QueryType:         models.QueryTypeFactual,
		Confidence:        0.7,
	}, nil)

	result := chatter.Chat(context.Background(), "weather in Madrid")

	assert.True(t, result.Success)
	assert.False(t, result.ContextUsed)
	assert.Contains(t, result.Response, "weather in Madrid")
	assert.Equal(t, 2, memory.Len())
	assert.Equal(t, 0, result.Stats.SuccessfulRetrievals)
	assert.Equal(t, 0, result.Stats.FailedRetrievals)
	mockRetriever.AssertNotCalled(t, "Retrieve")
}

func TestChatZeroScoreRetrievalUsesPlaceholder(t *testing.T) {
	chatter, mockAnalyzer, mockRetriever, mockGenerator, _ := setupTestChatter(t)

	mockAnalyzer.On("Analyze", mock.Anything, mock.Anything).
		Return(relevantAnalysis("what is the EU AI Act?"), nil)
	mockRetriever.On("Retrieve", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, 0.0)
	mockGenerator.On("Generate", mock.Anything, mock.Anything, noContextPlaceholder, mock.Anything).
		Return("I don't have information about that.", nil)

	result := chatter.Chat(context.Background(), "what is the EU AI Act?")

	assert.True(t, result.Success)
	assert.False(t, result.ContextUsed)
	assert.Equal(t, 0, result.DocumentsRetrieved)
	assert.Equal(t, 1, result.Stats.FailedRetrievals)
	assert.Equal(t, 0, result.Stats.SuccessfulRetrievals)
	mockGenerator.AssertExpectations(t)
}

func TestChatGenerationFailureReturnsApology(t *testing.T) {
	chatter, mockAnalyzer, mockRetriever, mockGenerator, memory := setupTestChatter(t)

	mockAnalyzer.On("Analyze", mock.Anything, mock.Anything).
		Return(relevantAnalysis("high-risk obligations"), nil)
	mockRetriever.On("Retrieve", mock.Anything, mock.Anything, mock.Anything).
		Return(plainDocs("some context"), 0.6)
	mockGenerator.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", &UpstreamError{Service: "llm", Err: errors.New("boom")})

	result := chatter.Chat(context.Background(), "high-risk obligations")

	assert.False(t, result.Success)
	assert.Equal(t, apologyResponse, result.Response)
	assert.Equal(t, ErrorKindGeneration, result.ErrorKind)
	// Retrieval already succeeded, so the counter still moves
	assert.Equal(t, 1, result.Stats.SuccessfulRetrievals)
	// Memory is not updated on the failure path
	assert.Equal(t, 0, memory.Len())
}

func TestChatTimeoutHandledAsGenerationFailure(t *testing.T) {
	chatter, mockAnalyzer, mockRetriever, mockGenerator, memory := setupTestChatter(t)

	mockAnalyzer.On("Analyze", mock.Anything, mock.Anything).
		Return(relevantAnalysis("enforcement"), nil)
	mockRetriever.On("Retrieve", mock.Anything, mock.Anything, mock.Anything).
		Return(plainDocs("context"), 0.4)
	mockGenerator.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", &UpstreamError{Service: "llm", Err: errors.New("deadline exceeded"), Timeout: true})

	result := chatter.Chat(context.Background(), "enforcement")

	assert.False(t, result.Success)
	assert.Equal(t, apologyResponse, result.Response)
	assert.Equal(t, 0, memory.Len())
}

func TestChatStatsAccumulateAcrossCalls(t *testing.T) {
	chatter, mockAnalyzer, mockRetriever, mockGenerator, _ := setupTestChatter(t)

	mockAnalyzer.On("Analyze", mock.Anything, mock.Anything).
		Return(relevantAnalysis("q"), nil)
	mockRetriever.On("Retrieve", mock.Anything, mock.Anything, mock.Anything).
		Return(plainDocs("doc"), 0.5).Once()
	mockRetriever.On("Retrieve", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, 0.0).Once()
	mockGenerator.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("answer", nil)

	chatter.Chat(context.Background(), "first")
	result := chatter.Chat(context.Background(), "second")

	assert.Equal(t, 2, result.Stats.TotalQueries)
	assert.Equal(t, 1, result.Stats.SuccessfulRetrievals)
	assert.Equal(t, 1, result.Stats.FailedRetrievals)
}

func TestResetClearsMemoryNotStats(t *testing.T) {
	chatter, mockAnalyzer, mockRetriever, mockGenerator, memory := setupTestChatter(t)

	mockAnalyzer.On("Analyze", mock.Anything, mock.Anything).
		Return(relevantAnalysis("q"), nil)
	mockRetriever.On("Retrieve", mock.Anything, mock.Anything, mock.Anything).
		Return(plainDocs("doc"), 0.5)
	mockGenerator.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("answer", nil)

	chatter.Chat(context.Background(), "question")
	require.Equal(t, 2, memory.Len())

	chatter.Reset()

	assert.Equal(t, 0, memory.Len())
	stats := chatter.Stats()
	assert.Equal(t, 1, stats.TotalQueries)
	assert.Equal(t, 1, stats.SuccessfulRetrievals)
}

func TestStatsIdempotentWithoutChat(t *testing.T) {
	chatter, _, _, _, _ := setupTestChatter(t)

	first := chatter.Stats()
	second := chatter.Stats()

	assert.Equal(t, first.TotalQueries, second.TotalQueries)
	assert.Equal(t, first.SuccessfulRetrievals, second.SuccessfulRetrievals)
	assert.Equal(t, first.FailedRetrievals, second.FailedRetrievals)
	assert.Equal(t, first.StartTime, second.StartTime)
}

func TestStatsReportsUptime(t *testing.T) {
	chatter, _, _, _, _ := setupTestChatter(t)

	stats := chatter.Stats()

	assert.NotEmpty(t, stats.Uptime)
	assert.False(t, stats.StartTime.IsZero())
}
