// Package testhelpers provides a fake OpenAI-compatible provider for tests.
package testhelpers

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode"
)

// EmbeddingDim is the size of the vectors produced by FakeOpenAI
const EmbeddingDim = 64

// FakeOpenAI serves /embeddings and streaming /chat/completions.
// Embeddings are a hashed bag of words so related texts score higher.
type FakeOpenAI struct {
	Server *httptest.Server

	mu          sync.Mutex
	tokens      []string
	failAfter   int
	embedStatus int
	prompts     []string
	embedCalls  int
	chatCalls   int
}

// NewFakeOpenAI starts a fake provider that streams tokens for every chat call
func NewFakeOpenAI(t *testing.T, tokens ...string) *FakeOpenAI {
	t.Helper()
	f := &FakeOpenAI{tokens: tokens, failAfter: -1}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/embeddings", f.handleEmbeddings)
	mux.HandleFunc("/v1/chat/completions", f.handleChat)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL is the value to use as OPENAI_BASE_URL
func (f *FakeOpenAI) BaseURL() string {
	return f.Server.URL + "/v1"
}

// FailAfter makes chat streams send an error chunk after n tokens
func (f *FakeOpenAI) FailAfter(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAfter = n
}

// EmbeddingStatus forces the embeddings endpoint to answer with status
func (f *FakeOpenAI) EmbeddingStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedStatus = status
}

// Prompts returns every prompt received by the chat endpoint
func (f *FakeOpenAI) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// EmbedCalls returns how many embedding requests were served
func (f *FakeOpenAI) EmbedCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.embedCalls
}

// ChatCalls returns how many chat requests were served
func (f *FakeOpenAI) ChatCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chatCalls
}

// Embed is the deterministic embedding the fake returns for text
func Embed(text string) []float32 {
	vec := make([]float32, EmbeddingDim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%EmbeddingDim]++
	}
	return vec
}

func (f *FakeOpenAI) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.embedCalls++
	status := f.embedStatus
	f.mu.Unlock()

	if status != 0 && status != http.StatusOK {
		http.Error(w, `{"error":{"message":"forced failure"}}`, status)
		return
	}

	var req struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	type item struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	}
	resp := struct {
		Data []item `json:"data"`
	}{}
	// reversed on purpose: clients must order by index
	for i := len(req.Input) - 1; i >= 0; i-- {
		resp.Data = append(resp.Data, item{Index: i, Embedding: Embed(req.Input[i])})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *FakeOpenAI) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Stream   bool `json:"stream"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.chatCalls++
	f.prompts = append(f.prompts, req.Messages[len(req.Messages)-1].Content)
	tokens := append([]string(nil), f.tokens...)
	failAfter := f.failAfter
	f.mu.Unlock()

	w.Header().Set("Content-Type", "text/event-stream")
	flusher, _ := w.(http.Flusher)
	for i, tok := range tokens {
		if failAfter >= 0 && i == failAfter {
			fmt.Fprint(w, "data: {\"error\":{\"message\":\"model overloaded\"}}\n\n")
			return
		}
		chunk, _ := json.Marshal(map[string]any{
			"choices": []map[string]any{{"delta": map[string]string{"content": tok}}},
		})
		fmt.Fprintf(w, "data: %s\n\n", chunk)
		if flusher != nil {
			flusher.Flush()
		}
	}
	if failAfter >= 0 && failAfter >= len(tokens) {
		fmt.Fprint(w, "data: {\"error\":{\"message\":\"model overloaded\"}}\n\n")
		return
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}
