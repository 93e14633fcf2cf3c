package screening

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spigell/resume-screener/internal/ai"
)

// stubGenerator answers prompts with reply, or fails for prompts containing
// one of the failFor markers.
type stubGenerator struct {
	reply   func(prompt string) string
	failFor map[string]error

	mu       sync.Mutex
	requests []ai.Request
}

func (s *stubGenerator) Generate(_ context.Context, req ai.Request) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	for marker, err := range s.failFor {
		if strings.Contains(req.Prompt, marker) {
			return "", err
		}
	}
	return s.reply(req.Prompt), nil
}

func (s *stubGenerator) Provider() string { return "stub" }
func (s *stubGenerator) Model() string    { return "stub-model" }

func (s *stubGenerator) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func constantReply(reply string) func(string) string {
	return func(string) string { return reply }
}

func writeResume(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
