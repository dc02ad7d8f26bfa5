// Package rag wires retrieval and generation into a streaming answer pipeline.
package rag

import (
	"context"
	"fmt"

	"github.com/pageza/hansik/backend/internal/model"
	"github.com/pageza/hansik/backend/internal/service"
	"github.com/pageza/hansik/backend/internal/vectorstore"
)

// DefaultTopK is the number of documents fetched per question
const DefaultTopK = 3

// Retriever returns the documents most relevant to a query. It holds no
// mutable state of its own and is safe to share between requests.
type Retriever struct {
	embedder service.EmbeddingServiceInterface
	store    vectorstore.Store
	k        int
}

// NewRetriever creates a retriever over an already indexed store
func NewRetriever(embedder service.EmbeddingServiceInterface, store vectorstore.Store, k int) *Retriever {
	if k <= 0 {
		k = DefaultTopK
	}
	return &Retriever{embedder: embedder, store: store, k: k}
}

// K returns the number of documents returned per query
func (r *Retriever) K() int {
	return r.k
}

// Retrieve embeds query and returns the top k documents
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]model.Document, error) {
	vec, err := r.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	results, err := r.store.Search(ctx, vec, r.k)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}
	docs := make([]model.Document, len(results))
	for i, res := range results {
		docs[i] = res.Document
	}
	return docs, nil
}
