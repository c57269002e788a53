package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultEmbeddingModel = "text-embedding-3-small"

// EmbeddingClient turns text into a fixed-length vector for similarity
// search
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// embeddingRequest represents the request format for the OpenAI-compatible
// embeddings API
type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// embeddingResponse represents the response from the embeddings API
type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// EmbeddingService talks to an OpenAI-compatible embeddings endpoint
type EmbeddingService struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewEmbeddingService creates a new embedding service instance
func NewEmbeddingService(baseURL, apiKey, model string, timeout time.Duration) *EmbeddingService {
	if baseURL == "" {
		baseURL = DefaultLLMBaseURL
	}
	if model == "" {
		model = DefaultEmbeddingModel
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &EmbeddingService{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Embed returns the embedding vector for a single text
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	jsonBody, err := json.Marshal(embeddingRequest{Model: s.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/embeddings", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Service: "embedding", Err: err, Timeout: isTimeout(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Service: "embedding", Err: err, Timeout: isTimeout(err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{
			Service: "embedding",
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, &UpstreamError{Service: "embedding", Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	if len(embResp.Data) == 0 {
		return nil, &UpstreamError{Service: "embedding", Err: errors.New("no embedding in response")}
	}

	return embResp.Data[0].Embedding, nil
}
