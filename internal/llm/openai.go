package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sevigo/review-bot/internal/config"
	"github.com/sevigo/review-bot/internal/core"
)

// OpenAIGenerator calls an OpenAI-compatible chat completions endpoint.
// It makes exactly one attempt per prompt.
type OpenAIGenerator struct {
	client       *openai.Client
	model        string
	systemPrompt string
	maxTokens    int
	temperature  float32
}

// NewOpenAIGenerator creates a generator from explicit configuration.
// cfg.BaseURL overrides the API root (default https://api.openai.com/v1).
func NewOpenAIGenerator(cfg config.AIConfig, httpClient *http.Client) *OpenAIGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if httpClient == nil {
		httpClient = newHTTPClient(cfg.RequestTimeout)
	}
	clientCfg.HTTPClient = httpClient

	return &OpenAIGenerator{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.GeneratorModel,
		systemPrompt: cfg.SystemPrompt,
		maxTokens:    cfg.MaxTokens,
		temperature:  requestTemperature(cfg.Temperature),
	}
}

// requestTemperature keeps a configured 0 on the wire; the client omits a
// zero temperature, which the API reads as its default of 1.
func requestTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

func (o *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	content, err := o.complete(ctx, prompt)
	if err != nil {
		return "", &core.GenerationError{Err: err}
	}
	return strings.TrimSpace(content), nil
}

func (o *OpenAIGenerator) complete(ctx context.Context, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if o.systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: o.systemPrompt})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		MaxTokens:   o.maxTokens, //nolint:staticcheck // max_tokens is what gpt-3.5-turbo accepts
		Temperature: o.temperature,
	})
	if err != nil {
		return "", describeAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// describeAPIError classifies a failed call by HTTP status.
func describeAPIError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		return fmt.Errorf("chat completion request: %w", err)
	}

	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("rate limited by API (status 429): %w", err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("authentication failed (status %d): %w", status, err)
	default:
		return fmt.Errorf("API error (status %d): %w", status, err)
	}
}
