package models

import "time"

// ChatMessage represents a single message in a conversation
type ChatMessage struct {
	Role    string `json:"role"`    // "user", "assistant", or "system"
	Content string `json:"content"` // The message content
}

// Conversation roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatRequest represents the incoming chat request from the frontend
type ChatRequest struct {
	Message string `json:"message"` // The current user message
}

// ChatResult is the structured outcome of one chat turn. Callers check
// Success and ErrorKind instead of probing a loose map for an "error" key.
type ChatResult struct {
	Response           string            `json:"response"`
	Success            bool              `json:"success"`
	ContextUsed        bool              `json:"context_used"`
	RelevanceScore     float64           `json:"relevance_score"`
	DocumentsRetrieved int               `json:"documents_retrieved"`
	QueryAnalysis      *QueryAnalysis    `json:"query_analysis,omitempty"`
	Stats              ConversationStats `json:"conversation_stats"`
	ErrorKind          string            `json:"error_kind,omitempty"`
	ErrorMessage       string            `json:"error_message,omitempty"`
}

// ChatResponse represents the response sent back to the frontend
type ChatResponse struct {
	RequestID string `json:"request_id"`
	*ChatResult
}

// ConversationStats tracks counters for the lifetime of the process.
// Counters only go up; they survive a conversation reset.
type ConversationStats struct {
	TotalQueries         int       `json:"total_queries"`
	SuccessfulRetrievals int       `json:"successful_retrievals"`
	FailedRetrievals     int       `json:"failed_retrievals"`
	StartTime            time.Time `json:"start_time"`
	Uptime               string    `json:"uptime,omitempty"`
}
