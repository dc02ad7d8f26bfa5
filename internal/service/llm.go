package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const defaultBaseURL = "https://api.openai.com/v1"

// LLMService streams chat completions from an OpenAI-compatible API
type LLMService struct {
	apiKey      string
	apiURL      string
	model       string
	temperature float64
	client      *http.Client
}

// LLMOptions configures an LLMService
type LLMOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Client      *http.Client
}

// NewLLMService creates a new LLMService instance. A missing API key is not
// an error here; calls fail with ErrMissingAPIKey instead.
func NewLLMService(opts LLMOptions) *LLMService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = "gpt-3.5-turbo"
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	return &LLMService{
		apiKey:      opts.APIKey,
		apiURL:      opts.BaseURL + "/chat/completions",
		model:       opts.Model,
		temperature: opts.Temperature,
		client:      opts.Client,
	}
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a streaming chat completion request
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// StreamCompletion sends prompt as a single user message and calls emit for
// every non-empty content fragment, in order. It returns when the provider
// signals [DONE], the body ends, emit fails, or ctx is cancelled.
func (s *LLMService) StreamCompletion(ctx context.Context, prompt string, emit func(token string) error) error {
	if s.apiKey == "" {
		return ErrMissingAPIKey
	}

	jsonData, err := json.Marshal(Request{
		Model:       s.model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: s.temperature,
		Stream:      true,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			return nil
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("failed to decode stream chunk: %w", err)
		}
		if chunk.Error != nil {
			return fmt.Errorf("provider error: %s", chunk.Error.Message)
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := emit(choice.Delta.Content); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stream: %w", err)
	}
	return nil
}
