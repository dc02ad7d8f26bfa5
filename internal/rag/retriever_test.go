package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/hansik/backend/internal/mocks"
	"github.com/pageza/hansik/backend/internal/model"
	"github.com/pageza/hansik/backend/internal/vectorstore"
)

func indexedStore(t *testing.T) vectorstore.Store {
	t.Helper()
	header := []string{"name"}
	docs := []model.Document{
		model.NewDocument("recipes.csv", 0, header, []string{"Kimchi Jjigae"}),
		model.NewDocument("recipes.csv", 1, header, []string{"Bulgogi"}),
		model.NewDocument("recipes.csv", 2, header, []string{"Japchae"}),
		model.NewDocument("recipes.csv", 3, header, []string{"Tteokbokki"}),
	}
	vectors := []pgvector.Vector{
		pgvector.NewVector([]float32{1, 0, 0}),
		pgvector.NewVector([]float32{0, 1, 0}),
		pgvector.NewVector([]float32{0, 0, 1}),
		pgvector.NewVector([]float32{0.8, 0.2, 0}),
	}
	store := vectorstore.NewMemoryStore()
	require.NoError(t, store.Index(context.Background(), docs, vectors))
	return store
}

func TestRetrieverReturnsTopK(t *testing.T) {
	embedder := new(mocks.MockEmbeddingService)
	embedder.On("GenerateEmbedding", mock.Anything, "spicy stew").
		Return(pgvector.NewVector([]float32{1, 0.1, 0}), nil)

	retriever := NewRetriever(embedder, indexedStore(t), 0)
	assert.Equal(t, DefaultTopK, retriever.K())

	docs, err := retriever.Retrieve(context.Background(), "spicy stew")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "Kimchi Jjigae", docs[0].Metadata["name"])
	assert.Equal(t, "Tteokbokki", docs[1].Metadata["name"])
	assert.Equal(t, "Bulgogi", docs[2].Metadata["name"])
}

func TestRetrieverFewerDocumentsThanK(t *testing.T) {
	embedder := new(mocks.MockEmbeddingService)
	embedder.On("GenerateEmbedding", mock.Anything, mock.Anything).
		Return(pgvector.NewVector([]float32{0, 0, 1}), nil)

	docs, err := NewRetriever(embedder, indexedStore(t), 10).Retrieve(context.Background(), "noodles")
	require.NoError(t, err)
	assert.Len(t, docs, 4)
}

func TestRetrieverErrors(t *testing.T) {
	t.Run("embedding failure", func(t *testing.T) {
		failure := errors.New("rate limited")
		embedder := new(mocks.MockEmbeddingService)
		embedder.On("GenerateEmbedding", mock.Anything, "q").Return(pgvector.Vector{}, failure)

		_, err := NewRetriever(embedder, indexedStore(t), 3).Retrieve(context.Background(), "q")
		assert.ErrorIs(t, err, failure)
	})
}
