package vectorstore

import (
	"context"
	"sync"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/hansik/backend/internal/model"
)

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreEmpty(t *testing.T) {
	results, err := NewMemoryStore().Search(context.Background(), pgvector.NewVector([]float32{1}), 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryStoreDimensionAcrossSources(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	docs, vectors := fixture()
	require.NoError(t, store.Index(ctx, docs, vectors))

	other := model.NewDocument("other.csv", 0, []string{"name"}, []string{"Galbi"})
	err := store.Index(ctx, []model.Document{other}, []pgvector.Vector{pgvector.NewVector([]float32{1, 2})})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	// replacing the only source may change the dimension
	err = store.Index(ctx, docs[:1], []pgvector.Vector{pgvector.NewVector([]float32{1, 2, 3, 4})})
	require.NoError(t, err)
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStoreConcurrentSearch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	docs, vectors := fixture()
	require.NoError(t, store.Index(ctx, docs, vectors))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := store.Search(ctx, pgvector.NewVector([]float32{0, 0, 1}), 1)
			assert.NoError(t, err)
			assert.Equal(t, []string{"Japchae"}, names(results))
		}()
	}
	wg.Wait()
}
