// Package openai calls a hosted chat-completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spigell/resume-screener/internal/ai"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-3.5-turbo"
	DefaultTimeout = 60 * time.Second

	providerName    = "openai"
	completionsPath = "/chat/completions"
	userAgent       = "spigell/resume-screener"
)

// Client implements ai.Generator for the chat-completions protocol.
type Client struct {
	backend *ai.HTTPBackend
	model   string
}

// New creates a Client authenticated with apiKey.
func New(apiKey, baseURL, model string, timeout time.Duration) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		backend: &ai.HTTPBackend{
			HTTPClient: &http.Client{Timeout: timeout},
			BaseURL:    baseURL,
			UserAgent:  userAgent,
			Headers:    map[string]string{"Authorization": "Bearer " + apiKey},
		},
		model: model,
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
		Text    string  `json:"text"`
	} `json:"choices"`
}

// Generate sends a system + user message pair and returns the first choice.
func (c *Client) Generate(ctx context.Context, req ai.Request) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
	}

	system := strings.TrimSpace(req.System)
	if system == "" {
		system = ai.DefaultSystemPrompt
	}

	payload := completionRequest{
		Model: model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var resp completionResponse
	if err := c.backend.PostJSON(ctx, completionsPath, payload, &resp); err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: %w", &ai.UpstreamError{
			StatusCode: http.StatusOK,
			Status:     "no choices in response",
		})
	}

	choice := resp.Choices[0]
	if choice.Message.Content != "" {
		return choice.Message.Content, nil
	}

	return choice.Text, nil
}

// Provider returns the backend name used in logs.
func (c *Client) Provider() string { return providerName }

// Model returns the default model identifier.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}
