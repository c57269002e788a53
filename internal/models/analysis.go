package models

// QueryType classifies what kind of answer a query is asking for
type QueryType string

const (
	QueryTypeFactual        QueryType = "factual"
	QueryTypeProcedural     QueryType = "procedural"
	QueryTypeComparative    QueryType = "comparative"
	QueryTypeClarification  QueryType = "clarification"
	QueryTypeFollowUp       QueryType = "follow_up"
	QueryTypeExampleRequest QueryType = "example_request"
)

// QueryAnalysis is the result of analyzing a single user query.
// Built fresh per request and never persisted.
type QueryAnalysis struct {
	IsRelevant        bool      `json:"is_relevant"`
	ReformulatedQuery string    `json:"reformulated_query"`
	KeyConcepts       []string  `json:"key_concepts"`
	QueryType         QueryType `json:"query_type"`
	Confidence        float64   `json:"confidence"`
}
