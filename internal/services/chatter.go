package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"ai-act-chat/internal/models"
	"ai-act-chat/internal/repositories"
)

// Fixed response strings. Kept as constants so failure paths stay
// deterministic and testable.
const (
	apologyResponse = "I apologize, but I encountered an error while processing your request. Please try again."

	unexpectedErrorResponse = "I'm sorry, but I encountered an unexpected error while processing your request. Please try again or rephrase your question."

	noContextPlaceholder = "No relevant information found in the knowledge base."

	outOfScopeTemplate = `I understand you're asking about "%s", but I'm specifically designed to help with questions related to the documents in my knowledge base.

I can help you with:
- Questions about the content in my knowledge base
- Information retrieval from the available documents
- Clarifications about specific topics covered in the documents

Could you please rephrase your question to be more specific to the content I have access to, or ask me what topics I can help you with?`
)

// DocumentRetriever is the retrieval contract the orchestrator depends on
type DocumentRetriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]*repositories.Document, float64)
}

// Generator is the response-generation contract the orchestrator depends on
type Generator interface {
	Generate(ctx context.Context, query, contextText string, history []models.ChatMessage) (string, error)
}

// Chatter sequences one chat turn end to end: analyze, retrieve, generate,
// record. It owns the conversation memory and the stats counters; both are
// shared across requests and guarded here. The design assumes a single
// shared conversation, so one serializing lock covers the whole pipeline.
type Chatter struct {
	chatMu  sync.Mutex // serializes full chat turns
	statsMu sync.Mutex // guards the counters for cheap reads

	analyzer  Analyzer
	retriever DocumentRetriever
	generator Generator
	memory    *ConversationMemory

	totalQueries         int
	successfulRetrievals int
	failedRetrievals     int
	startTime            time.Time

	logger *log.Logger
}

// NewChatter creates the conversation orchestrator
func NewChatter(analyzer Analyzer, retriever DocumentRetriever, generator Generator, memory *ConversationMemory, logger *log.Logger) *Chatter {
	return &Chatter{
		analyzer:  analyzer,
		retriever: retriever,
		generator: generator,
		memory:    memory,
		startTime: time.Now(),
		logger:    logger,
	}
}

// Chat processes one user query and returns a structured result. No
// collaborator error escapes: every failure is folded into the result with
// an error kind.
func (c *Chatter) Chat(ctx context.Context, query string) (result *models.ChatResult) {
	c.chatMu.Lock()
	defer c.chatMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Printf("Panic while processing query %q: %v", query, r)
			result = &models.ChatResult{
				Response:     unexpectedErrorResponse,
				Success:      false,
				ErrorKind:    ErrorKindInternal,
				ErrorMessage: fmt.Sprintf("%v", r),
				Stats:        c.statsSnapshot(),
			}
		}
	}()

	c.statsMu.Lock()
	c.totalQueries++
	c.statsMu.Unlock()

	c.logger.Printf("Received query: %q", query)

	analysis, err := c.analyzer.Analyze(query, c.memory.Snapshot())
	if err != nil {
		kind := ErrorKindInternal
		if err == ErrEmptyQuery {
			kind = ErrorKindEmptyQuery
		}
		return &models.ChatResult{
			Response:     fmt.Sprintf("I'm sorry, but I couldn't process your query: %v", err),
			Success:      false,
			ErrorKind:    kind,
			ErrorMessage: err.Error(),
			Stats:        c.statsSnapshot(),
		}
	}

	if !analysis.IsRelevant {
		c.logger.Printf("Query classified out of scope: %q", query)
		return &models.ChatResult{
			Response:      fmt.Sprintf(outOfScopeTemplate, query),
			Success:       true,
			ContextUsed:   false,
			QueryAnalysis: analysis,
			Stats:         c.statsSnapshot(),
		}
	}

	docs, relevanceScore := c.retriever.Retrieve(ctx, analysis.ReformulatedQuery, DefaultK)

	var contextText string
	if relevanceScore > 0 {
		c.statsMu.Lock()
		c.successfulRetrievals++
		c.statsMu.Unlock()

		contents := make([]string, len(docs))
		for i, doc := range docs {
			contents[i] = doc.Content
		}
		contextText = strings.Join(contents, "\n\n")
	} else {
		c.statsMu.Lock()
		c.failedRetrievals++
		c.statsMu.Unlock()

		contextText = noContextPlaceholder
	}

	response, err := c.generator.Generate(ctx, query, contextText, c.memory.Snapshot())
	if err != nil {
		// Memory stays untouched on the failure path
		c.logger.Printf("Response generation failed: %v", err)
		return &models.ChatResult{
			Response:           apologyResponse,
			Success:            false,
			ContextUsed:        relevanceScore > 0,
			RelevanceScore:     relevanceScore,
			DocumentsRetrieved: len(docs),
			QueryAnalysis:      analysis,
			ErrorKind:          ErrorKindGeneration,
			ErrorMessage:       err.Error(),
			Stats:              c.statsSnapshot(),
		}
	}

	c.memory.Append(models.RoleUser, query)
	c.memory.Append(models.RoleAssistant, response)

	c.logger.Printf("Generated response successfully. Relevance score: %.3f", relevanceScore)

	return &models.ChatResult{
		Response:           response,
		Success:            true,
		ContextUsed:        relevanceScore > 0,
		RelevanceScore:     relevanceScore,
		DocumentsRetrieved: len(docs),
		QueryAnalysis:      analysis,
		Stats:              c.statsSnapshot(),
	}
}

// Stats returns the conversation counters with uptime
func (c *Chatter) Stats() models.ConversationStats {
	stats := c.statsSnapshot()
	stats.Uptime = time.Since(stats.StartTime).Round(time.Second).String()
	return stats
}

// Reset clears the conversation memory. Counters are untouched.
func (c *Chatter) Reset() {
	c.memory.Clear()
	c.logger.Println("Conversation memory has been reset")
}

// History returns a copy of the current conversation turns
func (c *Chatter) History() []models.ChatMessage {
	return c.memory.Snapshot()
}

func (c *Chatter) statsSnapshot() models.ConversationStats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()

	return models.ConversationStats{
		TotalQueries:         c.totalQueries,
		SuccessfulRetrievals: c.successfulRetrievals,
		FailedRetrievals:     c.failedRetrievals,
		StartTime:            c.startTime,
	}
}
