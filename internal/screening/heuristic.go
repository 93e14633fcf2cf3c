package screening

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// minKeywordRunes is the shortest word that takes part in keyword matching.
const minKeywordRunes = 3

// CriteriaDecision is the verdict for a single criterion line.
type CriteriaDecision struct {
	Criteria  string `json:"criteria" mapstructure:"criteria"`
	Decision  bool   `json:"decision" mapstructure:"decision"`
	Reasoning string `json:"reasoning" mapstructure:"reasoning"`
}

// Analysis is the per-criterion verdict returned by the HTTP service.
type Analysis struct {
	CriteriaDecisions []CriteriaDecision `json:"criteria_decisions"`
	OverallDecision   bool               `json:"overall_decision"`
	OverallReasoning  string             `json:"overall_reasoning"`
	Method            Method             `json:"method"`
}

// Fallback reports whether the analysis came from keyword matching.
func (a *Analysis) Fallback() bool { return a.Method == MethodHeuristic }

// CriteriaLines splits free-form criteria into trimmed, non-empty lines.
func CriteriaLines(criteria string) []string {
	raw := strings.Split(strings.ReplaceAll(criteria, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// MatchLine reports whether every word of line longer than two characters
// occurs in resumeText, ignoring case. Leading and trailing punctuation is
// stripped from each word, inner punctuation (node.js, c++) is kept.
// A line without such words matches.
func MatchLine(line, resumeText string) bool {
	lowered := strings.ToLower(resumeText)
	for _, word := range strings.Fields(strings.ToLower(line)) {
		word = strings.TrimFunc(word, unicode.IsPunct)
		if utf8.RuneCountInString(word) < minKeywordRunes {
			continue
		}
		if !strings.Contains(lowered, word) {
			return false
		}
	}
	return true
}

// KeywordAnalysis evaluates criteria lines by substring matching. It never
// fails: an empty criteria list yields an empty decision list and a negative
// overall decision. The overall decision passes when more than half of the
// lines match.
func KeywordAnalysis(lines []string, resumeText string) *Analysis {
	decisions := make([]CriteriaDecision, 0, len(lines))
	passed := 0
	for _, line := range lines {
		matched := MatchLine(line, resumeText)
		reasoning := fmt.Sprintf("Could not find clear evidence for '%s'.", line)
		if matched {
			passed++
			reasoning = fmt.Sprintf("Found evidence for '%s' in the resume.", line)
		}
		decisions = append(decisions, CriteriaDecision{Criteria: line, Decision: matched, Reasoning: reasoning})
	}

	overall := passed*2 > len(lines)

	reasoning := fmt.Sprintf("Matched %d of %d criteria.", passed, len(lines))
	if len(lines) > 0 {
		verdict := "recommend rejecting"
		if overall {
			verdict = "recommend passing"
		}
		reasoning = fmt.Sprintf("Matched %d of %d criteria, %s.", passed, len(lines), verdict)
	}

	return &Analysis{
		CriteriaDecisions: decisions,
		OverallDecision:   overall,
		OverallReasoning:  reasoning,
		Method:            MethodHeuristic,
	}
}

// KeywordEvaluation turns a keyword analysis over the batch criteria into a
// rubric evaluation: matched lines become matched keywords, the overall
// score is the matched share scaled to 10, and the recommendation is PASS or
// REJECT.
func KeywordEvaluation(job JobDescription, criteria Criteria, resumeText string) *Evaluation {
	lines := batchCriteriaLines(job, criteria)
	analysis := KeywordAnalysis(lines, resumeText)

	matched := make([]string, 0, len(lines))
	missing := make([]string, 0, len(lines))
	for _, d := range analysis.CriteriaDecisions {
		if d.Decision {
			matched = append(matched, d.Criteria)
		} else {
			missing = append(missing, d.Criteria)
		}
	}

	skillsMatched := 0
	for _, skill := range criteria.RequiredSkills {
		if MatchLine(skill, resumeText) {
			skillsMatched++
		}
	}

	recommendation := RecommendationReject
	if analysis.OverallDecision {
		recommendation = RecommendationPass
	}

	feedback := []string{"Automatic keyword evaluation used because the model reply could not be parsed", analysis.OverallReasoning}

	return &Evaluation{
		OverallScore:    share(len(matched), len(lines)),
		SkillMatchScore: share(skillsMatched, len(criteria.RequiredSkills)),
		Recommendation:  recommendation,
		MatchedKeywords: matched,
		MissingKeywords: missing,
		Feedback:        feedback,
		Method:          MethodHeuristic,
	}
}

// batchCriteriaLines lists required skills, then job requirements.
func batchCriteriaLines(job JobDescription, criteria Criteria) []string {
	var b strings.Builder
	for _, s := range criteria.RequiredSkills {
		b.WriteString(s)
		b.WriteString("\n")
	}
	for _, r := range job.Requirements {
		b.WriteString(r)
		b.WriteString("\n")
	}
	return CriteriaLines(b.String())
}

func share(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*100) / 10
}
