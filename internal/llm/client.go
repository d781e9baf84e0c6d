// Package llm wraps the OpenAI chat-completion API behind a small client
// interface so the lesson generator can be tested against a fake.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	log "github.com/sirupsen/logrus"
)

// Client issues a single chat completion and returns the raw text content.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Model() string
}

// Request describes one completion call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  *float64 // nil = model default
}

// Response carries the completion text and token accounting.
type Response struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// Config holds connection settings for the OpenAI API.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

const (
	defaultMaxTokens = 4000
	maxAttempts      = 3
	baseBackoff      = time.Second
)

type openaiClient struct {
	client openai.Client
	model  string
}

// New builds an OpenAI-backed Client.
func New(cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}

	return &openaiClient{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Complete runs the completion, retrying transient failures with backoff.
func (c *openaiClient) Complete(ctx context.Context, req Request) (*Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
		MaxTokens: openai.Int(int64(maxTokens)),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := baseBackoff << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		start := time.Now()
		resp, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			lastErr = err
			if !isRetryable(ctx, err) {
				return nil, fmt.Errorf("llm: chat completion: %w", err)
			}
			continue
		}

		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("llm: no choices in response")
		}

		log.WithFields(log.Fields{
			"model":             c.model,
			"duration_ms":       time.Since(start).Milliseconds(),
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
		}).Debug("llm: chat completion finished")

		return &Response{
			Content:          resp.Choices[0].Message.Content,
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
		}, nil
	}
	return nil, fmt.Errorf("llm: chat completion after %d attempts: %w", maxAttempts, lastErr)
}

// Model returns the configured model name.
func (c *openaiClient) Model() string {
	return c.model
}

// isRetryable reports whether the error is a transient API or network failure.
func isRetryable(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			log.WithField("status_code", apiErr.StatusCode).Warn("llm: rate limited, will retry")
			return true
		case apiErr.StatusCode >= 500:
			log.WithField("status_code", apiErr.StatusCode).Warn("llm: server error, will retry")
			return true
		default:
			return false
		}
	}

	// Network errors without an API response are generally retryable.
	log.WithError(err).Warn("llm: network error, will retry")
	return true
}

// StripFences removes a surrounding markdown code fence from raw model output.
func StripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
