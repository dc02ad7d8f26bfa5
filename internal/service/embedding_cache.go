package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/redis/go-redis/v9"
)

// CachedEmbeddingService stores embeddings in Redis so a restart does not
// re-embed an unchanged knowledge base. Redis failures are logged and the
// call falls through to the provider.
type CachedEmbeddingService struct {
	next  EmbeddingServiceInterface
	redis *redis.Client
	model string
	ttl   time.Duration
}

// NewCachedEmbeddingService wraps next with a Redis cache
func NewCachedEmbeddingService(next EmbeddingServiceInterface, client *redis.Client, model string, ttl time.Duration) *CachedEmbeddingService {
	return &CachedEmbeddingService{
		next:  next,
		redis: client,
		model: model,
		ttl:   ttl,
	}
}

func (s *CachedEmbeddingService) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embedding:%s:%s", s.model, hex.EncodeToString(sum[:]))
}

// GenerateEmbedding returns the embedding for a single text
func (s *CachedEmbeddingService) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	vecs, err := s.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return pgvector.Vector{}, err
	}
	return vecs[0], nil
}

// GenerateEmbeddings serves hits from Redis and embeds only the misses
func (s *CachedEmbeddingService) GenerateEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = s.key(t)
	}

	out := make([]pgvector.Vector, len(texts))
	var (
		missIdx   []int
		missTexts []string
	)

	cached, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		log.Printf("[EmbeddingCache] Redis lookup failed, embedding all %d texts: %v", len(texts), err)
		cached = make([]interface{}, len(texts))
	}
	for i, v := range cached {
		raw, ok := v.(string)
		if ok {
			var vals []float32
			if err := json.Unmarshal([]byte(raw), &vals); err == nil && len(vals) > 0 {
				out[i] = pgvector.NewVector(vals)
				continue
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, texts[i])
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := s.next.GenerateEmbeddings(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	pipe := s.redis.Pipeline()
	for j, i := range missIdx {
		out[i] = fresh[j]
		data, err := json.Marshal(fresh[j].Slice())
		if err != nil {
			continue
		}
		pipe.Set(ctx, keys[i], data, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[EmbeddingCache] Failed to store %d embeddings: %v", len(missIdx), err)
	}

	log.Printf("[EmbeddingCache] %d hits, %d misses", len(texts)-len(missTexts), len(missTexts))
	return out, nil
}
