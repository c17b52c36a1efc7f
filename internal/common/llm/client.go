// internal/common/llm/client.go
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"crm-assistant/internal/common/config"
	"crm-assistant/internal/common/metrics"
)

// CompletionClient is the narrow interface the answer synthesizer consumes.
type CompletionClient interface {
	Complete(ctx context.Context, system, user string, temperature float64) (string, error)
}

// EmbeddingClient is the narrow interface the semantic searcher consumes.
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Client talks to an OpenAI-compatible endpoint for both completions and embeddings.
type Client struct {
	llm       *openai.LLM
	maxTokens int
	timeout   time.Duration
}

// NewClient creates a client against the configured endpoint.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	model, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	return &Client{
		llm:       model,
		maxTokens: cfg.MaxTokens,
		timeout:   config.GetDuration(cfg.Timeout),
	}, nil
}

// Complete sends a system instruction plus user message and returns the generated text.
func (c *Client) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, system),
			llms.TextParts(llms.ChatMessageTypeHuman, user),
		},
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(c.maxTokens),
	)
	metrics.ExternalCallDuration.WithLabelValues("llm").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("llm completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm completion: empty response")
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// Embed returns the embedding vector for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	vectors, err := c.llm.CreateEmbedding(ctx, []string{text})
	metrics.ExternalCallDuration.WithLabelValues("embedding").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("create embedding: empty response")
	}

	return vectors[0], nil
}
