// Package ollama talks to a locally hosted Ollama inference server.
package ollama

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
	// DefaultBaseURL is where a local Ollama listens out of the box.
	DefaultBaseURL = "http://localhost:11434"
	// DefaultModel is used when neither the config nor the request names one.
	DefaultModel = "llama3.1"
	// DefaultTimeout is generous because local models on CPU are slow.
	DefaultTimeout = 720 * time.Second

	providerName = "ollama"
	generatePath = "/api/generate"
	userAgent    = "spigell/resume-screener"
)

// Client implements ai.Generator for the /api/generate endpoint.
type Client struct {
	backend *ai.HTTPBackend
	model   string
}

// New creates a Client. Empty values take the package defaults.
func New(baseURL, model string, timeout time.Duration) *Client {
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
		},
		model: model,
	}
}

type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	System      string  `json:"system,omitempty"`
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate posts a non-streaming generate request and returns the response field.
func (c *Client) Generate(ctx context.Context, req ai.Request) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
	}

	payload := generateRequest{
		Model:       model,
		Prompt:      prompt,
		System:      req.System,
		Stream:      false,
		Temperature: req.Temperature,
	}

	var resp generateResponse
	if err := c.backend.PostJSON(ctx, generatePath, payload, &resp); err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	return resp.Response, nil
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
