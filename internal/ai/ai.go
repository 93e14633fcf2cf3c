// Package ai defines the contract shared by the language-model backends.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// DefaultSystemPrompt is sent by chat-style backends as the system role.
const DefaultSystemPrompt = "You are a professional HR specialist who evaluates resumes objectively."

var (
	// ErrConnectionFailed means the backend could not be reached or did not
	// answer within the timeout.
	ErrConnectionFailed = errors.New("model backend unreachable")
	// ErrUpstream means the backend answered with a non-success status.
	ErrUpstream = errors.New("model backend returned an error")
)

// Request is a single prompt sent to a backend. Empty Model selects the
// backend default; zero MaxTokens leaves the cap to the backend.
type Request struct {
	System      string
	Prompt      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Generator sends a prompt to a language model and returns its raw reply.
// Implementations perform exactly one call; retries belong to the caller.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Provider() string
	Model() string
}

// UpstreamError carries the status of a failed backend response.
type UpstreamError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %s", ErrUpstream, e.Status)
	}
	return fmt.Sprintf("%s: %s: %s", ErrUpstream, e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// ConnectionError wraps a transport failure as ErrConnectionFailed.
func ConnectionError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrConnectionFailed, op, err)
}

// IsTransportError reports whether err came from the network layer (dial
// failures, resets, timeouts) rather than from request construction.
func IsTransportError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
