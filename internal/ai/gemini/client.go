// Package gemini is the Google GenAI backend.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/resume-screener/internal/ai"
)

const (
	defaultModel = "gemini-2.5-flash"
	// DefaultTimeout bounds a single GenerateContent call.
	DefaultTimeout = 120 * time.Second

	providerName = "gemini"
)

// contentModels is the part of genai.Models the generator uses.
type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator wraps the Google GenAI client as an ai.Generator.
type Generator struct {
	models  contentModels
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, timeout time.Duration, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, model, timeout, logger), nil
}

func newGenerator(models contentModels, model string, timeout time.Duration, logger *zap.Logger) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{models: models, model: model, timeout: timeout, logger: logger}
}

// Generate sends the prompt to Gemini and returns the joined text parts of the reply.
func (g *Generator) Generate(ctx context.Context, req ai.Request) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = g.model
	}

	temperature := float32(req.Temperature)
	config := &genai.GenerateContentConfig{Temperature: &temperature}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if system := strings.TrimSpace(req.System); system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", classify(err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		g.logger.Debug("gemini returned no text parts", zap.Int("candidates", len(resp.Candidates)))
		return "", fmt.Errorf("gemini generate content: %w", &ai.UpstreamError{
			StatusCode: 200,
			Status:     "empty response",
		})
	}

	return output, nil
}

// classify maps genai API errors to ai.UpstreamError and network failures
// to ai.ErrConnectionFailed. Anything else (request validation inside the
// SDK) is returned wrapped as is.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("gemini generate content: %w", &ai.UpstreamError{
			StatusCode: apiErr.Code,
			Status:     apiErr.Status,
			Body:       apiErr.Message,
		})
	}

	if ai.IsTransportError(err) {
		return ai.ConnectionError("gemini generate content", err)
	}

	return fmt.Errorf("gemini generate content: %w", err)
}

// Provider returns the backend name used in logs.
func (g *Generator) Provider() string { return providerName }

// Model returns the default model identifier.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
