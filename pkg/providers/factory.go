// Package providers builds the language backend named in configuration.
package providers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/snow-ghost/interviewer/llm"
	"github.com/snow-ghost/interviewer/llm/gemini"
	"github.com/snow-ghost/interviewer/llm/mock"
	"github.com/snow-ghost/interviewer/llm/openai"
	"github.com/snow-ghost/interviewer/pkg/limiter"
	"github.com/snow-ghost/interviewer/pkg/metrics"
	"github.com/snow-ghost/interviewer/pkg/tokens"
)

// compatibleBaseURLs are OpenAI-compatible servers reachable through the openai backend.
var compatibleBaseURLs = map[string]string{
	"openrouter": "https://openrouter.ai/api/v1",
	"ollama":     "http://localhost:11434/v1",
	"vllm":       "http://localhost:8000/v1",
	"lmstudio":   "http://localhost:1234/v1",
}

// GetSupportedProviders returns a list of supported provider names
func GetSupportedProviders() []string {
	return []string{"mock", "openai", "gemini", "openrouter", "ollama", "vllm", "lmstudio"}
}

// Supported reports whether name is a known provider.
func Supported(name string) bool {
	for _, p := range GetSupportedProviders() {
		if p == name {
			return true
		}
	}
	return false
}

// New returns the configured backend. Real backends are wrapped in
// llm.Guarded so every call is rate limited, retried and circuit broken.
func New(ctx context.Context, cfg llm.Config, m *metrics.Metrics, logger *zap.Logger) (llm.Ports, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var completer llm.Completer
	switch cfg.Provider {
	case "", "mock":
		return mock.NewMockLLM(), nil
	case "openai":
		c, err := openai.New(cfg.APIKey, cfg.BaseURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		completer = c
	case "gemini":
		c, err := gemini.New(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		completer = c
	case "openrouter", "ollama", "vllm", "lmstudio":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = compatibleBaseURLs[cfg.Provider]
		}
		c, err := openai.New(cfg.APIKey, baseURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		completer = c
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}

	// tiktoken vocabularies only describe OpenAI models.
	var encoder tokens.Encoder = tokens.RuneEncoder{}
	if cfg.Provider == "openai" {
		encoder = tokens.ForModel(cfg.Model)
	}

	protection := limiter.NewProtection(cfg.Limits, cfg.Capabilities, logger)
	guarded := llm.NewGuarded(completer, protection, m, logger)

	logger.Info("language backend ready",
		zap.String("provider", cfg.Provider),
		zap.String("backend", completer.Name()))

	return llm.NewAdapter(guarded,
		llm.WithPersona(cfg.Persona),
		llm.WithEncoder(encoder),
		llm.WithTranscriptLimit(cfg.TranscriptTokens),
		llm.WithLogger(logger),
	), nil
}
