// Package mocks provides testify mocks for the provider-facing interfaces.
package mocks

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/hansik/backend/internal/model"
)

// MockEmbeddingService is a mock implementation of the embedding service
type MockEmbeddingService struct {
	mock.Mock
}

// GenerateEmbedding mocks the GenerateEmbedding method
func (m *MockEmbeddingService) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(pgvector.Vector), args.Error(1)
}

// GenerateEmbeddings mocks the GenerateEmbeddings method
func (m *MockEmbeddingService) GenerateEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pgvector.Vector), args.Error(1)
}

// MockLLMService is a mock implementation of the streaming chat model.
// The first return value is the token list to emit, the second the error
// returned after emitting them.
type MockLLMService struct {
	mock.Mock
}

// StreamCompletion mocks the StreamCompletion method
func (m *MockLLMService) StreamCompletion(ctx context.Context, prompt string, emit func(token string) error) error {
	args := m.Called(ctx, prompt)
	if tokens, ok := args.Get(0).([]string); ok {
		for _, tok := range tokens {
			if err := emit(tok); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}

// MockRetriever is a mock implementation of the document retriever
type MockRetriever struct {
	mock.Mock
}

// Retrieve mocks the Retrieve method
func (m *MockRetriever) Retrieve(ctx context.Context, query string) ([]model.Document, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}
