package services

import (
	"fmt"
	"log"
	"strings"

	"ai-act-chat/internal/models"
)

// Analyzer classifies and reformulates an incoming user query against the
// conversation so far. The default implementation is rule-based; a
// model-backed analyzer can be plugged in behind the same interface.
type Analyzer interface {
	Analyze(query string, history []models.ChatMessage) (*models.QueryAnalysis, error)
}

// DefaultFollowUpIndicators are phrases that mark a query as only making
// sense against prior turns
var DefaultFollowUpIndicators = []string{
	"example", "examples", "instance", "instances", "case", "cases",
	"what about", "how about", "tell me more", "explain", "clarify",
	"that", "this", "it", "them", "those", "these",
	"more", "detailed", "detailed explanation", "more detailed",
	"expand", "elaborate", "further", "additional", "extra",
	"go on", "continue", "what else", "anything else",
	"specifically", "in detail", "at length", "comprehensive",
}

// DefaultDomainKeywords mark a standalone query as in-scope for the
// knowledge base
var DefaultDomainKeywords = []string{
	"eu ai act", "artificial intelligence", "ai regulation", "european union",
	"ai system", "risk", "compliance", "regulation", "legal", "law",
}

// recentContextTurns is how many trailing turns feed follow-up reformulation
const recentContextTurns = 4

// HeuristicAnalyzer is the rule-based query analyzer. It detects follow-up
// intent from a fixed indicator set, reformulates follow-ups against recent
// history, and gates standalone queries on domain keywords.
type HeuristicAnalyzer struct {
	followUpIndicators []string
	domainKeywords     []string
	concepts           *KeyConceptExtractor
	logger             *log.Logger
}

// NewHeuristicAnalyzer creates an analyzer with the default keyword sets
func NewHeuristicAnalyzer(logger *log.Logger) *HeuristicAnalyzer {
	return NewHeuristicAnalyzerWithKeywords(DefaultFollowUpIndicators, DefaultDomainKeywords, logger)
}

// NewHeuristicAnalyzerWithKeywords creates an analyzer with caller-supplied
// keyword sets
func NewHeuristicAnalyzerWithKeywords(followUpIndicators, domainKeywords []string, logger *log.Logger) *HeuristicAnalyzer {
	return &HeuristicAnalyzer{
		followUpIndicators: followUpIndicators,
		domainKeywords:     domainKeywords,
		concepts:           NewKeyConceptExtractor(),
		logger:             logger,
	}
}

// Analyze classifies the query. It returns ErrEmptyQuery for a blank query
// and never consults anything beyond the supplied history.
func (a *HeuristicAnalyzer) Analyze(query string, history []models.ChatMessage) (*models.QueryAnalysis, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	lower := strings.ToLower(query)

	if containsAny(lower, a.followUpIndicators) && len(history) > 0 {
		return a.analyzeFollowUp(query, lower, history), nil
	}

	isRelevant := containsAny(lower, a.domainKeywords)

	concepts, err := a.concepts.Extract(query)
	if err != nil {
		a.logger.Printf("Key concept extraction failed: %v", err)
		concepts = nil
	}

	return &models.QueryAnalysis{
		IsRelevant:        isRelevant,
		ReformulatedQuery: query,
		KeyConcepts:       concepts,
		QueryType:         models.QueryTypeFactual,
		Confidence:        0.7,
	}, nil
}

// analyzeFollowUp reformulates a follow-up query by folding in the content
// of the most recent turns
func (a *HeuristicAnalyzer) analyzeFollowUp(query, lower string, history []models.ChatMessage) *models.QueryAnalysis {
	recentContext := recentContext(history, recentContextTurns)

	var reformulated string
	switch {
	case containsAny(lower, []string{"example", "examples", "instance", "case"}):
		reformulated = fmt.Sprintf("examples of %s", recentContext)
	case containsAny(lower, []string{"more", "detailed", "expand", "elaborate", "further"}):
		reformulated = fmt.Sprintf("detailed explanation of %s", recentContext)
	case containsAny(lower, []string{"what about", "how about"}):
		reformulated = fmt.Sprintf("%s in context of %s", query, recentContext)
	default:
		reformulated = fmt.Sprintf("%s in context of %s", query, recentContext)
	}

	a.logger.Printf("Follow-up detected, reformulated query: %q", reformulated)

	return &models.QueryAnalysis{
		IsRelevant:        true,
		ReformulatedQuery: reformulated,
		KeyConcepts:       []string{"follow_up", "context"},
		QueryType:         models.QueryTypeFollowUp,
		Confidence:        0.8,
	}
}

// recentContext concatenates the content of the last n turns
func recentContext(history []models.ChatMessage, n int) string {
	start := len(history) - n
	if start < 0 {
		start = 0
	}

	var sb strings.Builder
	for _, msg := range history[start:] {
		sb.WriteString(msg.Content)
		sb.WriteString(" ")
	}
	return strings.TrimSpace(sb.String())
}
