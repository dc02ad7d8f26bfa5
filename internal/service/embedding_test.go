package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/hansik/backend/internal/testhelpers"
)

func TestEmbeddingService_GenerateEmbeddings(t *testing.T) {
	t.Run("should batch and preserve input order", func(t *testing.T) {
		fake := testhelpers.NewFakeOpenAI(t)
		svc := NewEmbeddingService(EmbeddingOptions{
			APIKey:    "test-api-key",
			BaseURL:   fake.BaseURL(),
			BatchSize: 2,
		})
		texts := []string{"kimchi jjigae", "bulgogi", "japchae", "tteokbokki", "bibimbap"}

		vecs, err := svc.GenerateEmbeddings(context.Background(), texts)

		require.NoError(t, err)
		require.Len(t, vecs, len(texts))
		for i, text := range texts {
			assert.Equal(t, testhelpers.Embed(text), vecs[i].Slice(), "text %d", i)
		}
		assert.Equal(t, 3, fake.EmbedCalls())
	})

	t.Run("should embed a single text", func(t *testing.T) {
		fake := testhelpers.NewFakeOpenAI(t)
		svc := NewEmbeddingService(EmbeddingOptions{APIKey: "k", BaseURL: fake.BaseURL()})

		vec, err := svc.GenerateEmbedding(context.Background(), "spicy pork")

		require.NoError(t, err)
		assert.Equal(t, testhelpers.Embed("spicy pork"), vec.Slice())
		assert.Equal(t, "text-embedding-3-small", svc.Model())
	})

	t.Run("should fail without API key", func(t *testing.T) {
		svc := NewEmbeddingService(EmbeddingOptions{})

		_, err := svc.GenerateEmbeddings(context.Background(), []string{"x"})

		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("should surface provider errors", func(t *testing.T) {
		fake := testhelpers.NewFakeOpenAI(t)
		fake.EmbeddingStatus(http.StatusTooManyRequests)
		svc := NewEmbeddingService(EmbeddingOptions{APIKey: "k", BaseURL: fake.BaseURL()})

		_, err := svc.GenerateEmbeddings(context.Background(), []string{"x"})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	})

	t.Run("should reject a short response", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{{"index": 0, "embedding": []float32{1, 2}}},
			})
		}))
		defer server.Close()
		svc := NewEmbeddingService(EmbeddingOptions{APIKey: "k", BaseURL: server.URL})

		_, err := svc.GenerateEmbeddings(context.Background(), []string{"a", "b"})

		assert.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})
}
