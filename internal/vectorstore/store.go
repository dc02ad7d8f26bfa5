// Package vectorstore holds embedded documents and answers nearest-neighbour queries.
package vectorstore

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/pgvector/pgvector-go"

	"github.com/pageza/hansik/backend/internal/model"
)

var (
	// ErrLengthMismatch is returned when documents and vectors are not parallel
	ErrLengthMismatch = errors.New("documents and vectors length mismatch")
	// ErrDimensionMismatch is returned when vectors in one index differ in size
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Result is a document with its cosine similarity to the query
type Result struct {
	Document model.Document
	Score    float64
}

// Store persists embedded documents and supports similarity search.
// Implementations must be safe for concurrent Search calls.
type Store interface {
	// Index replaces every document previously indexed from the same source.
	Index(ctx context.Context, docs []model.Document, vectors []pgvector.Vector) error
	// Search returns up to k documents ordered by descending similarity.
	Search(ctx context.Context, query pgvector.Vector, k int) ([]Result, error)
	// Count returns the number of indexed documents.
	Count(ctx context.Context) (int, error)
}

func validate(docs []model.Document, vectors []pgvector.Vector) error {
	if len(docs) != len(vectors) {
		return ErrLengthMismatch
	}
	dim := -1
	for _, v := range vectors {
		n := len(v.Slice())
		if n == 0 {
			return ErrDimensionMismatch
		}
		if dim == -1 {
			dim = n
		} else if n != dim {
			return ErrDimensionMismatch
		}
	}
	return nil
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when either is a zero vector or their sizes differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// rank scores every document against query and keeps the top k
func rank(query []float32, docs []model.Document, vectors [][]float32, k int) []Result {
	results := make([]Result, 0, len(docs))
	for i := range docs {
		if len(vectors[i]) != len(query) {
			continue
		}
		results = append(results, Result{Document: docs[i], Score: CosineSimilarity(query, vectors[i])})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if k < len(results) {
		results = results[:k]
	}
	return results
}
