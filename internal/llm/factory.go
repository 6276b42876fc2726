package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"idea2app/internal/llmclient"
)

// Settings selects and configures the synthesis provider.
type Settings struct {
	Provider string // gemini | openai | anthropic | fake
	Model    string
	APIKey   string
	BaseURL  string

	RPS        float64
	Burst      int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *log.Logger
}

// New builds the provider client for s and wraps it with the standard
// middleware stack: hooks, logging, retry, rate limit.
func New(ctx context.Context, s Settings) (LLMClient, error) {
	inner, err := newProvider(ctx, s)
	if err != nil {
		return nil, err
	}
	return Wrap(inner,
		WithHooks(),
		WithLogging(s.Logger),
		Retry(s.MaxRetries, s.RetryDelay),
		RateLimit(s.RPS, s.Burst),
	), nil
}

func newProvider(ctx context.Context, s Settings) (LLMClient, error) {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case "gemini":
		return llmclient.NewGeminiClient(ctx, s.APIKey, s.Model)
	case "openai":
		return llmclient.NewOpenAIClient(llmclient.OpenAISettings{
			Provider: "OpenAI",
			Model:    s.Model,
			APIKey:   s.APIKey,
			BaseURL:  s.BaseURL,
		})
	case "anthropic":
		return llmclient.NewAnthropicClient(s.APIKey, s.Model, s.BaseURL)
	case "fake", "":
		return NewFakeClient(), nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", s.Provider)
	}
}
