package services

import (
	"errors"
	"fmt"
)

// Error kinds reported in ChatResult.ErrorKind. The orchestrator converts
// every collaborator failure into one of these; raw errors never escape to
// the HTTP layer.
const (
	ErrorKindEmptyQuery  = "empty_query"
	ErrorKindGeneration  = "generation_error"
	ErrorKindRateLimited = "rate_limit_exceeded"
	ErrorKindInternal    = "internal_error"
)

// ErrEmptyQuery is returned when a query is blank after trimming
var ErrEmptyQuery = errors.New("empty query provided")

// ErrRateLimited is returned when the daily request budget is exhausted
var ErrRateLimited = errors.New("daily request limit exceeded")

// UpstreamError wraps a failure from the language-model or embedding
// service. Timeout marks retryable deadline failures; both flavors are
// handled the same way by the orchestrator (apology response, memory
// untouched).
type UpstreamError struct {
	Service string
	Err     error
	Timeout bool
}

func (e *UpstreamError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s timed out: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
