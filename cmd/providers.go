package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/ai/gemini"
	"github.com/spigell/resume-screener/internal/ai/ollama"
	"github.com/spigell/resume-screener/internal/ai/openai"
	"github.com/spigell/resume-screener/internal/screening"
	"github.com/spigell/resume-screener/internal/secrets"
)

// newGenerator builds the configured model backend. ai.model overrides the
// backend specific model.
func newGenerator(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	switch provider {
	case "", "ollama":
		o := cfg.Ollama
		if o == nil {
			o = &OllamaConfig{}
		}
		return ollama.New(o.BaseURL, pick(cfg.Model, o.Model), cfg.Timeout), nil

	case "openai":
		o := cfg.OpenAI
		if o == nil {
			o = &OpenAIConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: o.APIKey,
			File:  o.APIKeyFile,
			Env:   "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY_FILE)", err)
		}
		return openai.New(apiKey, o.BaseURL, pick(cfg.Model, o.Model), cfg.Timeout)

	case "gemini":
		g := cfg.Gemini
		if g == nil {
			g = &GeminiConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: g.APIKey,
			File:  g.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}
		return gemini.NewGenerator(ctx, apiKey, pick(cfg.Model, g.Model), cfg.Timeout, logger)

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

func screeningOptions(cfg *AIConfig, concurrency int) screening.Options {
	return screening.Options{
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		Concurrency:  concurrency,
		MaxLogLength: cfg.MaxLogLength,
	}
}

func pick(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
