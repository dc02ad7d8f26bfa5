package service

import (
	"context"
	"errors"

	"github.com/pgvector/pgvector-go"
)

// ErrMissingAPIKey is returned by provider calls when no credential is configured
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY or OPENAI_API_KEY_FILE must be set")

// EmbeddingServiceInterface maps text to embedding vectors
type EmbeddingServiceInterface interface {
	GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error)
}

// LLMServiceInterface streams a completion for a prompt
type LLMServiceInterface interface {
	StreamCompletion(ctx context.Context, prompt string, emit func(token string) error) error
}
