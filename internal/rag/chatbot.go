package rag

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/pageza/hansik/backend/internal/model"
	"github.com/pageza/hansik/backend/internal/service"
	"github.com/pageza/hansik/backend/internal/vectorstore"
)

// ErrNotReady is returned when the knowledge base has not been indexed
var ErrNotReady = errors.New("chatbot is not ready")

// ErrEmptyKnowledgeBase is returned when the data source yields no documents
var ErrEmptyKnowledgeBase = errors.New("knowledge base contains no documents")

// DocumentLoader reads the knowledge base
type DocumentLoader interface {
	Load(ctx context.Context, path string) ([]model.Document, error)
}

// InitError reports which initialization stage failed
type InitError struct {
	Stage string
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("chatbot initialization failed at %s: %v", e.Stage, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// ChatbotOptions configures a Chatbot
type ChatbotOptions struct {
	Loader   DocumentLoader
	Embedder service.EmbeddingServiceInterface
	Store    vectorstore.Store
	DataPath string
	TopK     int
}

// Chatbot owns the process-wide retriever. It starts unset and becomes ready
// after one successful Initialize; it never reverts.
type Chatbot struct {
	opts      ChatbotOptions
	mu        sync.Mutex
	retriever atomic.Pointer[Retriever]
}

// NewChatbot creates an uninitialized chatbot
func NewChatbot(opts ChatbotOptions) *Chatbot {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	return &Chatbot{opts: opts}
}

// Initialize loads, embeds and indexes the knowledge base, then publishes
// the retriever. Calls are serialized; once ready further calls are no-ops.
// On failure the chatbot stays not ready and may be initialized again.
func (b *Chatbot) Initialize(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.retriever.Load() != nil {
		log.Printf("[Chatbot] Retriever already initialized")
		return nil
	}

	log.Printf("[Chatbot] Loading documents from %s", b.opts.DataPath)
	docs, err := b.opts.Loader.Load(ctx, b.opts.DataPath)
	if err != nil {
		return b.fail("load", err)
	}
	if len(docs) == 0 {
		return b.fail("load", ErrEmptyKnowledgeBase)
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	log.Printf("[Chatbot] Embedding %d documents", len(docs))
	vectors, err := b.opts.Embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return b.fail("embed", err)
	}

	if err := b.opts.Store.Index(ctx, docs, vectors); err != nil {
		return b.fail("index", err)
	}

	b.retriever.Store(NewRetriever(b.opts.Embedder, b.opts.Store, b.opts.TopK))
	log.Printf("[Chatbot] Initialized with %d documents", len(docs))
	return nil
}

func (b *Chatbot) fail(stage string, err error) error {
	log.Printf("[Chatbot] Initialization failed at %s: %v", stage, err)
	return &InitError{Stage: stage, Err: err}
}

// Ready reports whether a retriever has been published
func (b *Chatbot) Ready() bool {
	return b.retriever.Load() != nil
}

// Retriever returns the published retriever or ErrNotReady
func (b *Chatbot) Retriever() (*Retriever, error) {
	r := b.retriever.Load()
	if r == nil {
		return nil, ErrNotReady
	}
	return r, nil
}
