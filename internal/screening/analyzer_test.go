package screening

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai"
)

func TestAnalyzeUsesModelReply(t *testing.T) {
	reply := `{"criteria_decisions": [{"criteria": "Go", "decision": true, "reasoning": "Listed."}],
"overall_decision": true, "overall_reasoning": "Fits."}`
	gen := &stubGenerator{reply: constantReply(reply)}
	a := NewAnalyzer(gen, Options{Temperature: 0.3}, zap.NewNop())

	analysis, err := a.Analyze(context.Background(), "Go developer", "Backend role", "Go")
	require.NoError(t, err)

	assert.Equal(t, MethodLLM, analysis.Method)
	assert.True(t, analysis.OverallDecision)
	require.Len(t, gen.requests, 1)
	assert.Contains(t, gen.requests[0].Prompt, "Backend role")
}

func TestAnalyzeFallsBackToKeywords(t *testing.T) {
	gen := &stubGenerator{reply: constantReply("The resume looks fine to me.")}
	a := NewAnalyzer(gen, Options{}, nil)

	analysis, err := a.Analyze(context.Background(), "Python and Docker", "Role", "Python\nDocker\nKubernetes")
	require.NoError(t, err)

	assert.True(t, analysis.Fallback())
	require.Len(t, analysis.CriteriaDecisions, 3)
	assert.True(t, analysis.OverallDecision)
}

func TestAnalyzeReturnsBackendErrors(t *testing.T) {
	gen := &stubGenerator{
		reply:   constantReply("{}"),
		failFor: map[string]error{"Role": &ai.UpstreamError{StatusCode: 500, Status: "500 Internal Server Error"}},
	}
	a := NewAnalyzer(gen, Options{}, nil)

	_, err := a.Analyze(context.Background(), "text", "Role", "Go")
	require.ErrorIs(t, err, ai.ErrUpstream)
}

func TestAnalyzerModel(t *testing.T) {
	gen := &stubGenerator{reply: constantReply("{}")}

	assert.Equal(t, "stub-model", NewAnalyzer(gen, Options{}, nil).Model())
	assert.Equal(t, "custom", NewAnalyzer(gen, Options{Model: "custom"}, nil).Model())
}
