// ABOUTME: OpenAI client for guideline embeddings and optional narrative advice
// ABOUTME: Uses text-embedding-3-small for embeddings, gpt-4o-mini for advice (configurable)
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harper/carrierfit/internal/config"
	"github.com/harper/carrierfit/internal/logging"
	"github.com/harper/carrierfit/internal/models"
	"github.com/harper/carrierfit/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
)

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey            string
	BaseURL           string
	ChatModel         string
	EmbeddingModel    openai.EmbeddingModel
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	RequestsPerSecond float64
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:            apiKey,
		ChatModel:         DefaultChatModel,
		EmbeddingModel:    DefaultEmbeddingModel,
		Timeout:           30 * time.Second,
		MaxRetries:        3,
		RetryDelay:        2 * time.Second,
		RequestsPerSecond: 5,
	}
}

// ConfigFrom builds a client configuration from application config
func ConfigFrom(cfg *config.Config) *ClientConfig {
	cc := DefaultConfig(cfg.OpenAIKey)
	if cfg.ChatModel != "" {
		cc.ChatModel = cfg.ChatModel
	}
	if cfg.EmbeddingModel != "" {
		cc.EmbeddingModel = openai.EmbeddingModel(cfg.EmbeddingModel)
	}
	if cfg.Timeout > 0 {
		cc.Timeout = cfg.Timeout
	}
	cc.MaxRetries = cfg.MaxRetries
	cc.RetryDelay = cfg.RetryDelay
	cc.RequestsPerSecond = cfg.RequestsPerSecond
	return cc
}

// OpenAIClient wraps the OpenAI API client with retry and rate limiting.
// It satisfies both the embedder and advisor ports.
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
	limiter        *util.RateLimiter
	logger         *log.Logger
}

// NewOpenAIClient creates a new OpenAI client with the given API key using default configuration
func NewOpenAIClient(apiKey string, logger *log.Logger) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey), logger)
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration
func NewOpenAIClientWithConfig(cfg *ClientConfig, logger *log.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(oc),
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
		timeout:        timeout,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
		limiter:        util.NewRateLimiter(cfg.RequestsPerSecond, 1),
		logger:         logging.Component(logging.OrDiscard(logger), "openai"),
	}, nil
}

// Embed generates an embedding vector for text
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float64, error) {
	var embedding []float64

	err := util.Retry(ctx, c.maxRetries, c.retryDelay, c.retryable, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: c.embeddingModel,
		})
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return models.ErrEmptyEmbedding
		}

		// Convert []float32 to []float64
		embedding32 := resp.Data[0].Embedding
		embedding = make([]float64, len(embedding32))
		for i, v := range embedding32 {
			embedding[i] = float64(v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding after %d attempts: %w", c.maxRetries+1, err)
	}
	return embedding, nil
}

const adviceSystemPrompt = `You are a life insurance field underwriting assistant. You are given a client profile,
one carrier, its rule-based fit score, and guideline excerpts. Write short, factual notes for an agent.

Return ONLY a JSON object with exactly two fields:
- "reasons": up to 3 strings explaining why the carrier may fit
- "advisories": up to 3 strings naming underwriting concerns

Each string must be under 200 characters. Do not restate the score. Do not invent guideline content.`

// Advise asks the chat model for narrative reasons about one recommendation.
// The raw response is returned unparsed.
func (c *OpenAIClient) Advise(ctx context.Context, req models.AdviceRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal advice request: %w", err)
	}
	userPrompt := fmt.Sprintf("Carrier evaluation:\n\n%s", payload)

	var content string
	err = util.Retry(ctx, c.maxRetries, c.retryDelay, c.retryable, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: adviceSystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: userPrompt,
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: 0.2,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("no completion choices returned")
		}
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to get advice after %d attempts: %w", c.maxRetries+1, err)
	}
	return content, nil
}

// retryable reports whether an API error is worth another attempt.
// Rate-limit responses also pause the shared limiter.
func (c *OpenAIClient) retryable(err error) bool {
	if errors.Is(err, context.Canceled) ||
		errors.Is(err, models.ErrEmptyEmbedding) ||
		errors.Is(err, models.ErrEmbeddingUnavailable) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			c.limiter.Backoff(c.retryDelay)
			c.logger.Warn("rate limited", "backoff", c.retryDelay)
			return true
		case apiErr.HTTPStatusCode >= 500:
			return true
		default:
			return false
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}

	return true
}

// UnavailableEmbedder is used when no API key is configured.
// Every call fails so ingestion stores text without vectors.
type UnavailableEmbedder struct{}

// Embed always returns models.ErrEmbeddingUnavailable
func (UnavailableEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return nil, models.ErrEmbeddingUnavailable
}
