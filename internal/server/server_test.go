package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/screening"
)

type stubAnalyzer struct {
	err    error
	panics bool
	calls  int

	resumeText     string
	jobDescription string
	criteria       string
}

func (s *stubAnalyzer) Analyze(_ context.Context, resumeText, jobDescription, criteria string) (*screening.Analysis, error) {
	s.calls++
	s.resumeText, s.jobDescription, s.criteria = resumeText, jobDescription, criteria
	if s.panics {
		panic("boom")
	}
	if s.err != nil {
		return nil, s.err
	}
	return screening.KeywordAnalysis(screening.CriteriaLines(criteria), resumeText), nil
}

func (s *stubAnalyzer) Model() string { return "llama3.1" }

func newTestServer(a *stubAnalyzer) http.Handler {
	return New(Config{}, a, extract.New(nil), nil).Handler()
}

func postForm(t *testing.T, h http.Handler, path string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postMultipart(t *testing.T, h http.Handler, fields map[string]string, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("resume", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze-resume", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	a := &stubAnalyzer{}
	rec := httptest.NewRecorder()
	newTestServer(a).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "ok", "model": "llama3.1"}, decode(t, rec))
	assert.Zero(t, a.calls)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestAnalyzeResume(t *testing.T) {
	for _, path := range []string{"/analyze-resume", "/screen"} {
		t.Run(path, func(t *testing.T) {
			a := &stubAnalyzer{}
			rec := postForm(t, newTestServer(a), path, url.Values{
				"resume_text":     {"Python and Docker engineer"},
				"job_description": {"Backend role"},
				"criteria":        {"Python\nDocker\nRust"},
			})

			require.Equal(t, http.StatusOK, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, true, body["success"])
			assert.Equal(t, true, body["overall_decision"])
			assert.Len(t, body["criteria_decisions"], 3)
			assert.Equal(t, "heuristic", body["method"])
			assert.Equal(t, true, body["fallback"])
			assert.Equal(t, 1, a.calls)
		})
	}
}

func TestAnalyzeResumeJSONBody(t *testing.T) {
	a := &stubAnalyzer{}
	payload := `{"resume_text": "Go developer", "job_description": "Role", "criteria": "Go"}`
	req := httptest.NewRequest(http.MethodPost, "/analyze-resume", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newTestServer(a).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Go developer", a.resumeText)
}

func TestAnalyzeResumeValidation(t *testing.T) {
	tests := map[string]url.Values{
		"empty job description": {"resume_text": {"Go"}, "job_description": {" "}, "criteria": {"Go"}},
		"missing criteria":      {"resume_text": {"Go"}, "job_description": {"Role"}},
		"no resume":             {"job_description": {"Role"}, "criteria": {"Go"}},
	}

	for name, values := range tests {
		t.Run(name, func(t *testing.T) {
			a := &stubAnalyzer{}
			rec := postForm(t, newTestServer(a), "/analyze-resume", values)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Contains(t, body["error"], ErrValidationFailed.Error())
			assert.Zero(t, a.calls)
		})
	}
}

func TestAnalyzeResumeUploadAppendsText(t *testing.T) {
	a := &stubAnalyzer{}
	rec := postMultipart(t, newTestServer(a), map[string]string{
		"resume_text":     "Summary line",
		"job_description": "Role",
		"criteria":        "Kubernetes",
	}, "cv.txt", []byte("Five years of Kubernetes"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Summary line\nFive years of Kubernetes", a.resumeText)
}

func TestAnalyzeResumeUploadOnly(t *testing.T) {
	a := &stubAnalyzer{}
	rec := postMultipart(t, newTestServer(a), map[string]string{
		"job_description": "Role",
		"criteria":        "Kubernetes",
	}, "cv.txt", []byte("Kubernetes operator"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Kubernetes operator", a.resumeText)
}

func TestAnalyzeResumeBadUploadIgnoredWithText(t *testing.T) {
	a := &stubAnalyzer{}
	rec := postMultipart(t, newTestServer(a), map[string]string{
		"resume_text":     "Plain text resume",
		"job_description": "Role",
		"criteria":        "Go",
	}, "cv.png", []byte("binary"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Plain text resume", a.resumeText)
}

func TestAnalyzeResumeBadUploadWithoutText(t *testing.T) {
	a := &stubAnalyzer{}
	rec := postMultipart(t, newTestServer(a), map[string]string{
		"job_description": "Role",
		"criteria":        "Go",
	}, "cv.docx", []byte("not a zip"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])
	assert.Zero(t, a.calls)
}

func TestAnalyzeResumeModelFailure(t *testing.T) {
	a := &stubAnalyzer{err: ai.ConnectionError("post", errors.New("connection refused"))}
	rec := postForm(t, newTestServer(a), "/analyze-resume", url.Values{
		"resume_text": {"Go"}, "job_description": {"Role"}, "criteria": {"Go"},
	})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "connection refused")
}

func TestAnalyzeResumePanicBecomesJSON(t *testing.T) {
	a := &stubAnalyzer{panics: true}
	rec := postForm(t, newTestServer(a), "/analyze-resume", url.Values{
		"resume_text": {"Go"}, "job_description": {"Role"}, "criteria": {"Go"},
	})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]any{"success": false, "error": "internal server error"}, decode(t, rec))
}

func TestCORSAllowList(t *testing.T) {
	h := newTestServer(&stubAnalyzer{})

	allowed := httptest.NewRequest(http.MethodGet, "/health", nil)
	allowed.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, allowed)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))

	denied := httptest.NewRequest(http.MethodGet, "/health", nil)
	denied.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, denied)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()

	newTestServer(&stubAnalyzer{}).ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}
