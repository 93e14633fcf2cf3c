package ai

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spigell/resume-screener/internal/utils"
)

const (
	contentType = "application/json"
	// maxErrorBody bounds how much of a failed response ends up in errors.
	maxErrorBody = 512
)

// HTTPBackend holds what the JSON-over-HTTP backends have in common.
type HTTPBackend struct {
	HTTPClient *http.Client
	BaseURL    string
	UserAgent  string
	Headers    map[string]string
}

// PostJSON posts payload to path and decodes a 200 response into target.
// Transport failures (including the client timeout) map to
// ErrConnectionFailed, non-200 statuses to *UpstreamError.
func (b *HTTPBackend) PostJSON(ctx context.Context, path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(b.BaseURL, "/") + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", "gzip")
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}
	for key, val := range b.Headers {
		req.Header.Set(key, val)
	}

	client := b.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return ConnectionError("post "+path, err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return ConnectionError("decompress response", err)
		}
		defer gz.Close()
		reader = gz
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return ConnectionError("read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       utils.TruncateForLog(string(data), maxErrorBody),
		}
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return &UpstreamError{
			StatusCode: resp.StatusCode,
			Status:     "malformed response body",
			Body:       err.Error(),
		}
	}

	return nil
}
