package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/hansik/backend/internal/mocks"
	"github.com/pageza/hansik/backend/internal/model"
)

func contextDocs() []model.Document {
	header := []string{"name", "ingredients"}
	return []model.Document{
		model.NewDocument("recipes.csv", 0, header, []string{"Kimchi Jjigae", "kimchi, pork, tofu"}),
		model.NewDocument("recipes.csv", 1, header, []string{"Bulgogi", "beef, soy sauce"}),
	}
}

// collect drains the stream, failing the test if it does not close in time
func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var out []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("stream did not close")
			return out
		}
	}
}

func TestComposerStreamsTokensInOrder(t *testing.T) {
	retriever := new(mocks.MockRetriever)
	llm := new(mocks.MockLLMService)
	question := "How do I make kimchi jjigae?"

	retriever.On("Retrieve", mock.Anything, question).Return(contextDocs(), nil)
	llm.On("StreamCompletion", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "name: Kimchi Jjigae") &&
			strings.Contains(prompt, "name: Bulgogi") &&
			strings.Contains(prompt, question)
	})).Return([]string{"Fry ", "the ", "kimchi."}, nil)

	composer, err := NewComposer(retriever, llm)
	require.NoError(t, err)

	events := collect(t, composer.Stream(context.Background(), question))

	var answer strings.Builder
	for _, ev := range events {
		require.NoError(t, ev.Err)
		answer.WriteString(ev.Token)
	}
	assert.Equal(t, "Fry the kimchi.", answer.String())
	retriever.AssertExpectations(t)
	llm.AssertExpectations(t)
}

func TestComposerGenerationError(t *testing.T) {
	retriever := new(mocks.MockRetriever)
	llm := new(mocks.MockLLMService)
	failure := errors.New("provider unavailable")

	retriever.On("Retrieve", mock.Anything, "q").Return(contextDocs(), nil)
	llm.On("StreamCompletion", mock.Anything, mock.Anything).Return([]string{"partial ", "answer"}, failure)

	composer, err := NewComposer(retriever, llm)
	require.NoError(t, err)

	events := collect(t, composer.Stream(context.Background(), "q"))

	require.Len(t, events, 3)
	assert.Equal(t, "partial ", events[0].Token)
	assert.Equal(t, "answer", events[1].Token)
	assert.ErrorIs(t, events[2].Err, failure)
	assert.Empty(t, events[2].Token)
}

func TestComposerRetrievalError(t *testing.T) {
	retriever := new(mocks.MockRetriever)
	llm := new(mocks.MockLLMService)
	failure := errors.New("embedding failed")

	retriever.On("Retrieve", mock.Anything, "q").Return(nil, failure)

	composer, err := NewComposer(retriever, llm)
	require.NoError(t, err)

	events := collect(t, composer.Stream(context.Background(), "q"))

	require.Len(t, events, 1)
	assert.ErrorIs(t, events[0].Err, failure)
	llm.AssertNotCalled(t, "StreamCompletion", mock.Anything, mock.Anything)
}

func TestComposerSingleUse(t *testing.T) {
	retriever := new(mocks.MockRetriever)
	llm := new(mocks.MockLLMService)
	retriever.On("Retrieve", mock.Anything, "q").Return(contextDocs(), nil).Once()
	llm.On("StreamCompletion", mock.Anything, mock.Anything).Return([]string{"ok"}, nil).Once()

	composer, err := NewComposer(retriever, llm)
	require.NoError(t, err)

	first := collect(t, composer.Stream(context.Background(), "q"))
	require.Len(t, first, 1)

	second := collect(t, composer.Stream(context.Background(), "q"))
	require.Len(t, second, 1)
	assert.ErrorIs(t, second[0].Err, ErrStreamConsumed)
}

func TestComposerCancellation(t *testing.T) {
	retriever := new(mocks.MockRetriever)
	llm := new(mocks.MockLLMService)

	tokens := make([]string, 200)
	for i := range tokens {
		tokens[i] = "tok "
	}
	retriever.On("Retrieve", mock.Anything, "q").Return(contextDocs(), nil)
	llm.On("StreamCompletion", mock.Anything, mock.Anything).Return(tokens, nil)

	composer, err := NewComposer(retriever, llm)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	events := composer.Stream(ctx, "q")

	first := <-events
	require.NoError(t, first.Err)
	cancel()

	rest := collect(t, events)
	assert.Less(t, len(rest)+1, len(tokens))
	for _, ev := range rest {
		assert.NoError(t, ev.Err)
	}
}

func TestNewComposerRequiresDependencies(t *testing.T) {
	_, err := NewComposer(nil, new(mocks.MockLLMService))
	assert.Error(t, err)

	_, err = NewComposer(new(mocks.MockRetriever), nil)
	assert.Error(t, err)
}
