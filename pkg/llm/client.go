// Package llm drives the chat-completion backend and exposes generation as
// an incremental fragment stream.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/gitpraise/gitpraise/pkg/config"
)

// Sentinel errors classifying upstream failures.
var (
	// ErrCapacity marks an upstream overload response (HTTP 429). Likely
	// temporary; callers may retry later.
	ErrCapacity = errors.New("generation capacity exhausted")
	// ErrGeneration marks any other upstream failure.
	ErrGeneration = errors.New("generation failed")
)

// Client wraps the chat-completion backend. One Client is constructed at
// startup and shared by all requests.
type Client struct {
	oai       openai.Client
	model     string
	maxTokens int64
}

// New creates a Client from the backend configuration. Retries are disabled:
// retry is a caller decision, never performed here.
func New(cfg config.LLMConfig) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1280
	}

	return &Client{
		oai:       openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: maxTokens,
	}
}

// Stream requests a streaming completion for the given instruction and
// content, calling emit for every text fragment as it arrives. It returns
// the concatenation of all fragments once the upstream stream completes
// cleanly. On upstream failure the accumulated text is discarded and the
// returned error wraps ErrCapacity or ErrGeneration; fragments already
// emitted cannot be recalled. A failed call is not restartable.
func (c *Client) Stream(ctx context.Context, instruction, content string, emit func(fragment string) error) (string, error) {
	stream := c.oai.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instruction),
			openai.UserMessage(content),
		},
		MaxTokens: openai.Int(c.maxTokens),
	})
	defer stream.Close()

	var full strings.Builder
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		fragment := chunk.Choices[0].Delta.Content
		if fragment == "" {
			continue
		}
		full.WriteString(fragment)
		if err := emit(fragment); err != nil {
			return "", fmt.Errorf("emit fragment: %w", err)
		}
	}
	if err := stream.Err(); err != nil {
		return "", classify(err)
	}

	return full.String(), nil
}

// classify maps an upstream error onto the service error taxonomy.
func classify(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) && apierr.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ErrCapacity, err)
	}
	return fmt.Errorf("%w: %v", ErrGeneration, err)
}
