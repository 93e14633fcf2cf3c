package screening

import (
	_ "embed"
	"strconv"
	"strings"

	"github.com/spigell/resume-screener/internal/utils"
)

// MaxResumeChars caps the resume text embedded in a prompt, in characters.
// Longer resumes are cut silently to stay inside model context limits.
const MaxResumeChars = 4000

// EvaluationKeys is the JSON schema the evaluation prompt asks for.
var EvaluationKeys = []string{
	"overall_score",
	"skill_match_score",
	"experience_match_score",
	"education_match_score",
	"recommendation",
	"matched_keywords",
	"missing_keywords",
	"feedback",
}

// AnalysisKeys is the JSON schema the criteria analysis prompt asks for.
var AnalysisKeys = []string{
	"criteria_decisions",
	"overall_decision",
	"overall_reasoning",
}

//go:embed prompts/evaluation.md
var evaluationTemplate string

//go:embed prompts/analysis.md
var analysisTemplate string

// BuildEvaluationPrompt renders the rubric prompt for one resume.
func BuildEvaluationPrompt(resumeText string, job JobDescription, criteria Criteria) string {
	r := strings.NewReplacer(
		"{{JOB_TITLE}}", job.Title,
		"{{JOB_DEPARTMENT}}", job.Department,
		"{{JOB_LEVEL}}", job.Level,
		"{{JOB_LOCATION}}", job.Location,
		"{{JOB_EMPLOYMENT_TYPE}}", job.EmploymentType,
		"{{JOB_REQUIREMENTS}}", bullets(job.Requirements),
		"{{JOB_RESPONSIBILITIES}}", bullets(job.Responsibilities),
		"{{MIN_EXPERIENCE_YEARS}}", strconv.Itoa(criteria.MinExperienceYears),
		"{{REQUIRED_SKILLS}}", strings.Join(criteria.RequiredSkills, ", "),
		"{{PREFERRED_SKILLS}}", strings.Join(criteria.PreferredSkills, ", "),
		"{{REQUIRED_EDUCATION}}", criteria.RequiredEducation,
		"{{MINIMUM_SCORE}}", strconv.FormatFloat(criteria.MinimumScore, 'f', -1, 64),
		"{{RESUME_TEXT}}", utils.TruncateRunes(resumeText, MaxResumeChars),
	)
	return r.Replace(evaluationTemplate)
}

// BuildAnalysisPrompt renders the per-criterion decision prompt used by the
// HTTP service.
func BuildAnalysisPrompt(resumeText, jobDescription, criteria string) string {
	r := strings.NewReplacer(
		"{{JOB_DESCRIPTION}}", strings.TrimSpace(jobDescription),
		"{{CRITERIA}}", strings.Join(CriteriaLines(criteria), "\n"),
		"{{RESUME_TEXT}}", utils.TruncateRunes(resumeText, MaxResumeChars),
	)
	return r.Replace(analysisTemplate)
}

func bullets(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}
