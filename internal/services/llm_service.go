package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"ai-act-chat/internal/models"
)

const (
	DefaultLLMBaseURL = "https://api.openai.com/v1"
	DefaultModel      = "gpt-4o-mini"

	// Lower temperature for more consistent responses
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 1000
)

// CompletionOptions tunes a single model invocation
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// LLMClient is the language-model invocation contract the generator and
// the (optional) model-based analyzer depend on
type LLMClient interface {
	Complete(ctx context.Context, messages []models.ChatMessage, opts CompletionOptions) (string, error)
}

// chatCompletionRequest represents the request format for the
// OpenAI-compatible chat completions API
type chatCompletionRequest struct {
	Model       string               `json:"model"`
	Messages    []models.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens"`
	Stream      bool                 `json:"stream"`
}

// chatCompletionResponse represents the response from the API
type chatCompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// LLMService talks to an OpenAI-compatible chat completions endpoint
// (OpenAI, LM Studio, ollama's compat layer)
type LLMService struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewLLMService creates a new LLM service instance
func NewLLMService(baseURL, apiKey, model string, timeout time.Duration) *LLMService {
	if baseURL == "" {
		baseURL = DefaultLLMBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout == 0 {
		timeout = 120 * time.Second // LLMs can be slow
	}

	return &LLMService{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Complete sends the message sequence to the model and returns the
// assistant text. Failures come back as *UpstreamError.
func (s *LLMService) Complete(ctx context.Context, messages []models.ChatMessage, opts CompletionOptions) (string, error) {
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = DefaultMaxTokens
	}

	request := chatCompletionRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Stream:      false,
	}

	jsonBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", &UpstreamError{Service: "llm", Err: err, Timeout: isTimeout(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{Service: "llm", Err: err, Timeout: isTimeout(err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{
			Service: "llm",
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", &UpstreamError{Service: "llm", Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	if len(completion.Choices) == 0 {
		return "", &UpstreamError{Service: "llm", Err: errors.New("no choices in response")}
	}

	return completion.Choices[0].Message.Content, nil
}

// HealthCheck verifies the endpoint is reachable and has models loaded
func (s *LLMService) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/models", nil)
	if err != nil {
		return err
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("LLM endpoint not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("LLM endpoint returned status %d", resp.StatusCode)
	}

	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
