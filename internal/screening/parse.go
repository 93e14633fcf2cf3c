package screening

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrParseFailed is returned when a model reply holds no decodable JSON object.
var ErrParseFailed = errors.New("model response is not valid JSON")

// evaluationPayload mirrors the rubric schema. Decoding is weakly typed so
// "7.5" and 7.5 both land in a float.
type evaluationPayload struct {
	OverallScore         float64  `mapstructure:"overall_score"`
	SkillMatchScore      float64  `mapstructure:"skill_match_score"`
	ExperienceMatchScore float64  `mapstructure:"experience_match_score"`
	EducationMatchScore  float64  `mapstructure:"education_match_score"`
	Recommendation       string   `mapstructure:"recommendation"`
	MatchedKeywords      []string `mapstructure:"matched_keywords"`
	MissingKeywords      []string `mapstructure:"missing_keywords"`
	Feedback             []string `mapstructure:"feedback"`
}

type analysisPayload struct {
	CriteriaDecisions []CriteriaDecision `mapstructure:"criteria_decisions"`
	OverallDecision   bool               `mapstructure:"overall_decision"`
	OverallReasoning  string             `mapstructure:"overall_reasoning"`
}

// ExtractJSONObject returns the text between the first '{' and the last '}'
// of raw, dropping any prose or code fences around it.
func ExtractJSONObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// ParseEvaluation decodes a rubric reply. Missing keys are backfilled with
// zero scores, REVIEW and empty lists.
func ParseEvaluation(raw string) (*Evaluation, error) {
	var payload evaluationPayload
	if err := decodeReply(raw, &payload); err != nil {
		return nil, err
	}

	recommendation, _ := ParseRecommendation(payload.Recommendation)

	return &Evaluation{
		OverallScore:         clampScore(payload.OverallScore),
		SkillMatchScore:      clampScore(payload.SkillMatchScore),
		ExperienceMatchScore: clampScore(payload.ExperienceMatchScore),
		EducationMatchScore:  clampScore(payload.EducationMatchScore),
		Recommendation:       recommendation,
		MatchedKeywords:      cleanList(payload.MatchedKeywords),
		MissingKeywords:      cleanList(payload.MissingKeywords),
		Feedback:             cleanList(payload.Feedback),
		Method:               MethodLLM,
	}, nil
}

// ParseAnalysis decodes a per-criterion decision reply. Missing keys become
// an empty decision list, false and an empty reasoning.
func ParseAnalysis(raw string) (*Analysis, error) {
	var payload analysisPayload
	if err := decodeReply(raw, &payload); err != nil {
		return nil, err
	}

	decisions := make([]CriteriaDecision, 0, len(payload.CriteriaDecisions))
	for _, d := range payload.CriteriaDecisions {
		d.Criteria = strings.TrimSpace(d.Criteria)
		d.Reasoning = strings.TrimSpace(d.Reasoning)
		decisions = append(decisions, d)
	}

	return &Analysis{
		CriteriaDecisions: decisions,
		OverallDecision:   payload.OverallDecision,
		OverallReasoning:  strings.TrimSpace(payload.OverallReasoning),
		Method:            MethodLLM,
	}, nil
}

func decodeReply(raw string, target any) error {
	object, ok := ExtractJSONObject(raw)
	if !ok {
		return fmt.Errorf("%w: no JSON object found", ErrParseFailed)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(object), &data); err != nil {
		return fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ZeroFields:       true,
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}

	if err := decoder.Decode(data); err != nil {
		return fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	return nil
}

func clampScore(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 10:
		return 10
	default:
		return v
	}
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
