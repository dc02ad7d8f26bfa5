package rag

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/pageza/hansik/backend/internal/model"
	"github.com/pageza/hansik/backend/internal/service"
)

// streamBuffer bounds how far generation may run ahead of the response writer
const streamBuffer = 16

// ErrStreamConsumed is reported when a composer is streamed a second time
var ErrStreamConsumed = errors.New("composer stream already consumed")

// Event is one element of an answer stream: a token, or a terminal error
type Event struct {
	Token string
	Err   error
}

// DocumentRetriever fetches context documents for a question
type DocumentRetriever interface {
	Retrieve(ctx context.Context, query string) ([]model.Document, error)
}

// Composer is a single-use retrieval and generation pipeline. Build one per request.
type Composer struct {
	retriever DocumentRetriever
	llm       service.LLMServiceInterface
	used      atomic.Bool
}

// NewComposer creates a pipeline over a ready retriever and a chat model
func NewComposer(retriever DocumentRetriever, llm service.LLMServiceInterface) (*Composer, error) {
	if retriever == nil {
		return nil, errors.New("retriever is not initialized")
	}
	if llm == nil {
		return nil, errors.New("chat model is not configured")
	}
	return &Composer{retriever: retriever, llm: llm}, nil
}

// Stream answers question. Tokens arrive in generation order; a failure
// arrives as exactly one Event with Err set, after which the channel is
// closed. Cancelling ctx abandons the provider call and closes the channel
// without an error event.
func (c *Composer) Stream(ctx context.Context, question string) <-chan Event {
	out := make(chan Event, streamBuffer)
	if !c.used.CompareAndSwap(false, true) {
		out <- Event{Err: ErrStreamConsumed}
		close(out)
		return out
	}

	go func() {
		defer close(out)

		send := func(ev Event) bool {
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		docs, err := c.retriever.Retrieve(ctx, question)
		if err != nil {
			if ctx.Err() == nil {
				send(Event{Err: err})
			}
			return
		}

		err = c.llm.StreamCompletion(ctx, BuildPrompt(docs, question), func(token string) error {
			if !send(Event{Token: token}) {
				return ctx.Err()
			}
			return nil
		})
		if err != nil && ctx.Err() == nil {
			send(Event{Err: err})
		}
	}()

	return out
}
