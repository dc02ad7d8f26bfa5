package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/pgvector/pgvector-go"
)

// EmbeddingService handles interactions with an OpenAI-compatible embeddings API
type EmbeddingService struct {
	apiKey    string
	apiURL    string
	model     string
	batchSize int
	client    *http.Client
}

// EmbeddingOptions configures an EmbeddingService
type EmbeddingOptions struct {
	APIKey    string
	BaseURL   string
	Model     string
	BatchSize int
	Client    *http.Client
}

// NewEmbeddingService creates a new EmbeddingService instance. A missing API
// key is not an error here; calls fail with ErrMissingAPIKey instead.
func NewEmbeddingService(opts EmbeddingOptions) *EmbeddingService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = "text-embedding-3-small"
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	return &EmbeddingService{
		apiKey:    opts.APIKey,
		apiURL:    opts.BaseURL + "/embeddings",
		model:     opts.Model,
		batchSize: opts.BatchSize,
		client:    opts.Client,
	}
}

// Model returns the embedding model name
func (s *EmbeddingService) Model() string {
	return s.model
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// GenerateEmbedding returns the embedding for a single text
func (s *EmbeddingService) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	vecs, err := s.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return pgvector.Vector{}, err
	}
	return vecs[0], nil
}

// GenerateEmbeddings embeds texts in batches, preserving input order
func (s *EmbeddingService) GenerateEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if s.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	out := make([]pgvector.Vector, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := s.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (s *EmbeddingService) embedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	jsonData, err := json.Marshal(embeddingRequest{Model: s.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp)
	}

	var result embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(result.Data))
	}

	sort.Slice(result.Data, func(i, j int) bool {
		return result.Data[i].Index < result.Data[j].Index
	})
	vecs := make([]pgvector.Vector, len(result.Data))
	for i, d := range result.Data {
		if len(d.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding at index %d", d.Index)
		}
		vecs[i] = pgvector.NewVector(d.Embedding)
	}
	return vecs, nil
}

// APIError is a non-200 response from the provider
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

func newAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
}
