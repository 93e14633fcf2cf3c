package screening

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEvaluationPromptNamesEveryKey(t *testing.T) {
	prompt := BuildEvaluationPrompt("Go developer", DefaultJobDescription(), DefaultCriteria())

	for _, key := range EvaluationKeys {
		assert.Contains(t, prompt, `"`+key+`"`)
	}
	assert.NotContains(t, prompt, "{{")
}

func TestBuildEvaluationPromptRendersJobAndCriteria(t *testing.T) {
	job := JobDescription{
		Title:            "Backend Engineer",
		Requirements:     []string{"Go", "PostgreSQL", "Kubernetes"},
		Responsibilities: []string{"Own services"},
	}
	criteria := Criteria{MinExperienceYears: 5, RequiredSkills: []string{"Go", "SQL"}, MinimumScore: 6.5}

	prompt := BuildEvaluationPrompt("resume", job, criteria)

	assert.Contains(t, prompt, "Backend Engineer")
	assert.Contains(t, prompt, "- Go\n- PostgreSQL\n- Kubernetes")
	assert.Contains(t, prompt, "Go, SQL")
	assert.Contains(t, prompt, "6.5")

	first := strings.Index(prompt, "- Go")
	second := strings.Index(prompt, "- PostgreSQL")
	third := strings.Index(prompt, "- Kubernetes")
	require.True(t, first >= 0 && second > first && third > second)
}

func TestBuildEvaluationPromptTruncatesResume(t *testing.T) {
	resume := strings.Repeat("Ж", MaxResumeChars) + strings.Repeat("Ω", 1000)

	prompt := BuildEvaluationPrompt(resume, DefaultJobDescription(), DefaultCriteria())

	assert.Equal(t, MaxResumeChars, strings.Count(prompt, "Ж"))
	assert.NotContains(t, prompt, "Ω")
}

func TestBuildEvaluationPromptKeepsShortResume(t *testing.T) {
	resume := "Built distributed systems in Go for eight years."

	prompt := BuildEvaluationPrompt(resume, DefaultJobDescription(), DefaultCriteria())

	assert.Contains(t, prompt, resume)
}

func TestBuildAnalysisPrompt(t *testing.T) {
	prompt := BuildAnalysisPrompt("Resume body", "  Senior Go role  ", "Go\n\n  Kafka  \n")

	assert.Contains(t, prompt, "Resume body")
	assert.Contains(t, prompt, "Senior Go role")
	assert.Contains(t, prompt, "Go\nKafka")
	for _, key := range AnalysisKeys {
		assert.Contains(t, prompt, key)
	}
}
