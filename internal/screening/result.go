package screening

import (
	"strings"
	"time"
)

// Recommendation is the categorical verdict attached to a scored resume.
type Recommendation string

const (
	RecommendationPass   Recommendation = "PASS"
	RecommendationReview Recommendation = "REVIEW"
	RecommendationReject Recommendation = "REJECT"
)

// ParseRecommendation normalizes a model supplied tag. Unknown or empty
// values become REVIEW.
func ParseRecommendation(s string) (Recommendation, bool) {
	switch r := Recommendation(strings.ToUpper(strings.TrimSpace(s))); r {
	case RecommendationPass, RecommendationReview, RecommendationReject:
		return r, true
	default:
		return RecommendationReview, false
	}
}

// Rank orders recommendations for reports: PASS, REVIEW, REJECT, then anything else.
func (r Recommendation) Rank() int {
	switch r {
	case RecommendationPass:
		return 1
	case RecommendationReview:
		return 2
	case RecommendationReject:
		return 3
	default:
		return 4
	}
}

// Method names how an evaluation was produced.
type Method string

const (
	MethodLLM       Method = "llm"
	MethodHeuristic Method = "heuristic"
)

// Evaluation is the typed form of a rubric reply. Scores are on a 0-10 scale.
type Evaluation struct {
	OverallScore         float64
	SkillMatchScore      float64
	ExperienceMatchScore float64
	EducationMatchScore  float64
	Recommendation       Recommendation
	MatchedKeywords      []string
	MissingKeywords      []string
	Feedback             []string
	Method               Method
}

// Fallback reports whether the evaluation came from keyword matching
// instead of the model.
func (e *Evaluation) Fallback() bool { return e.Method == MethodHeuristic }

// Result is the outcome of successfully screening one resume.
type Result struct {
	ResumeID             string         `json:"resume_id"`
	Path                 string         `json:"path"`
	ApplicantName        string         `json:"applicant_name"`
	OverallScore         float64        `json:"overall_score"`
	SkillMatchScore      float64        `json:"skill_match_score"`
	ExperienceMatchScore float64        `json:"experience_match_score"`
	EducationMatchScore  float64        `json:"education_match_score"`
	Recommendation       Recommendation `json:"recommendation"`
	Feedback             []string       `json:"feedback"`
	MatchedKeywords      []string       `json:"matched_keywords"`
	MissingKeywords      []string       `json:"missing_keywords"`
	ScreenedAt           time.Time      `json:"screened_at"`
	Criteria             Criteria       `json:"criteria"`
	Method               Method         `json:"method"`
	Fallback             bool           `json:"fallback"`
}

// State is a step of the per-resume pipeline.
type State int

const (
	StatePending State = iota
	StateExtracting
	StatePrompting
	StateAwaitingModel
	StateParsing
	StateScored
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateExtracting:
		return "EXTRACTING"
	case StatePrompting:
		return "PROMPTING"
	case StateAwaitingModel:
		return "AWAITING_MODEL"
	case StateParsing:
		return "PARSING"
	case StateScored:
		return "SCORED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether s ends a pipeline.
func (s State) Terminal() bool { return s == StateScored || s == StateFailed }

// Outcome is the terminal record of one resume in a batch: either Result is
// set (State SCORED) or Err is set (State FAILED, FailedAt names the step).
type Outcome struct {
	ResumeID string
	Path     string
	State    State
	FailedAt State
	Result   *Result
	Err      error
}

// Succeeded reports whether the resume was scored.
func (o Outcome) Succeeded() bool { return o.State == StateScored && o.Result != nil }
