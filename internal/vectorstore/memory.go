package vectorstore

import (
	"context"
	"sync"

	"github.com/pgvector/pgvector-go"

	"github.com/pageza/hansik/backend/internal/model"
)

// MemoryStore is an in-process brute-force cosine index
type MemoryStore struct {
	mu      sync.RWMutex
	docs    []model.Document
	vectors [][]float32
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Index implements Store
func (s *MemoryStore) Index(_ context.Context, docs []model.Document, vectors []pgvector.Vector) error {
	if err := validate(docs, vectors); err != nil {
		return err
	}

	sources := make(map[string]bool)
	for _, d := range docs {
		sources[d.Source] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keptDocs := s.docs[:0:0]
	keptVecs := s.vectors[:0:0]
	for i, d := range s.docs {
		if !sources[d.Source] {
			keptDocs = append(keptDocs, d)
			keptVecs = append(keptVecs, s.vectors[i])
		}
	}
	if len(keptVecs) > 0 && len(vectors) > 0 && len(keptVecs[0]) != len(vectors[0].Slice()) {
		return ErrDimensionMismatch
	}
	for i, d := range docs {
		d.Embedding = vectors[i]
		keptDocs = append(keptDocs, d)
		keptVecs = append(keptVecs, vectors[i].Slice())
	}

	s.docs = keptDocs
	s.vectors = keptVecs
	return nil
}

// Search implements Store
func (s *MemoryStore) Search(_ context.Context, query pgvector.Vector, k int) ([]Result, error) {
	if k <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rank(query.Slice(), s.docs, s.vectors, k), nil
}

// Count implements Store
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}
