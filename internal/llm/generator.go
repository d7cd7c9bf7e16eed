// Package llm builds review prompts and talks to text-generation services.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/sevigo/review-bot/internal/config"
	"github.com/sevigo/review-bot/internal/core"
)

// Generator produces review feedback for a single prompt. Implementations
// return whitespace-trimmed text or a *core.GenerationError.
//go:generate mockgen -destination=../../mocks/mock_generator.go -package=mocks . Generator
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewGenerator builds the Generator selected by cfg.LLMProvider. Credentials
// come only from cfg.
func NewGenerator(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (Generator, error) {
	switch cfg.LLMProvider {
	case "openai":
		logger.Info("using OpenAI generator", "model", cfg.GeneratorModel)
		return NewOpenAIGenerator(cfg, newHTTPClient(cfg.RequestTimeout)), nil
	case "gemini", "ollama":
		model, err := NewModel(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewModelGenerator(model, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}

// NewModel creates a goframe model for the gemini and ollama providers.
func NewModel(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (llms.Model, error) {
	switch cfg.LLMProvider {
	case "gemini":
		logger.Info("using Gemini LLM provider", "model", cfg.GeneratorModel)
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("api key is not set for gemini provider")
		}
		return gemini.New(ctx,
			gemini.WithModel(cfg.GeneratorModel),
			gemini.WithAPIKey(cfg.APIKey),
		)
	case "ollama":
		logger.Info("using Ollama LLM provider", "model", cfg.GeneratorModel, "host", cfg.OllamaHost)
		return ollama.New(
			ollama.WithServerURL(cfg.OllamaHost),
			ollama.WithHTTPClient(newHTTPClient(cfg.RequestTimeout)),
			ollama.WithModel(cfg.GeneratorModel),
			ollama.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}

// ModelGenerator adapts a goframe llms.Model to Generator.
type ModelGenerator struct {
	model        llms.Model
	systemPrompt string
	timeout      time.Duration
}

// NewModelGenerator wraps model. The system prompt is prepended to every
// request because single-prompt models take no separate system message.
func NewModelGenerator(model llms.Model, cfg config.AIConfig) *ModelGenerator {
	return &ModelGenerator{
		model:        model,
		systemPrompt: cfg.SystemPrompt,
		timeout:      cfg.RequestTimeout,
	}
}

func (g *ModelGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if g.systemPrompt != "" {
		prompt = g.systemPrompt + "\n\n" + prompt
	}

	response, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt)
	if err != nil {
		return "", &core.GenerationError{Err: err}
	}
	return strings.TrimSpace(response), nil
}

// newHTTPClient creates an HTTP client with generous timeouts; generation
// requests can take minutes on local models.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxConnsPerHost:     10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		Timeout: timeout,
	}
}
