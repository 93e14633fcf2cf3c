// Package screening evaluates resumes against a job description and a fixed
// rubric with a language model, falling back to keyword matching when the
// model reply cannot be decoded.
package screening

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
)

// DefaultMinimumScore is the passing threshold on the 0-10 scale.
const DefaultMinimumScore = 7

// ErrConfigInvalid is returned when a criteria or job description source is
// unreadable or malformed.
var ErrConfigInvalid = errors.New("invalid screening config")

var validate = validator.New()

// Criteria holds the thresholds a resume is judged by. Values are
// treated as immutable once loaded; use Clone before handing out copies.
type Criteria struct {
	MinExperienceYears int      `json:"min_experience_years" mapstructure:"min_experience_years" validate:"gte=0"`
	RequiredSkills     []string `json:"required_skills" mapstructure:"required_skills"`
	PreferredSkills    []string `json:"preferred_skills" mapstructure:"preferred_skills"`
	RequiredEducation  string   `json:"required_education" mapstructure:"required_education"`
	MinimumScore       float64  `json:"minimum_score" mapstructure:"minimum_score" validate:"gte=0,lte=10"`
}

// JobDescription describes the position resumes are screened for.
type JobDescription struct {
	Title            string   `json:"title" mapstructure:"title"`
	Department       string   `json:"department" mapstructure:"department"`
	Level            string   `json:"level" mapstructure:"level"`
	Location         string   `json:"location" mapstructure:"location"`
	EmploymentType   string   `json:"employment_type" mapstructure:"employment_type"`
	Requirements     []string `json:"requirements" mapstructure:"requirements"`
	Responsibilities []string `json:"responsibilities" mapstructure:"responsibilities"`
}

// Clone returns a deep copy.
func (c Criteria) Clone() Criteria {
	c.RequiredSkills = cloneStrings(c.RequiredSkills)
	c.PreferredSkills = cloneStrings(c.PreferredSkills)
	return c
}

// Clone returns a deep copy.
func (j JobDescription) Clone() JobDescription {
	j.Requirements = cloneStrings(j.Requirements)
	j.Responsibilities = cloneStrings(j.Responsibilities)
	return j
}

// DefaultCriteria is used when no criteria file is configured.
func DefaultCriteria() Criteria {
	return Criteria{
		MinExperienceYears: 3,
		RequiredSkills:     []string{"Python", "JavaScript", "React"},
		PreferredSkills:    []string{"Node.js", "AWS", "Docker"},
		RequiredEducation:  "Bachelor's degree",
		MinimumScore:       DefaultMinimumScore,
	}
}

// DefaultJobDescription is used when no job description file is configured.
func DefaultJobDescription() JobDescription {
	return JobDescription{
		Title:            "Software Engineer",
		Department:       "Engineering",
		Level:            "Mid-level",
		Location:         "Seoul",
		EmploymentType:   "Full-time",
		Requirements:     []string{"3+ years of development experience", "Proficient in Python", "Experience with React"},
		Responsibilities: []string{"Develop web applications", "Review code", "Write technical documentation"},
	}
}

// LoadCriteria reads criteria from a JSON file.
func LoadCriteria(path string) (Criteria, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Criteria{}, fmt.Errorf("%w: read criteria %q: %w", ErrConfigInvalid, path, err)
	}
	return ParseCriteria(data)
}

// ParseCriteria decodes criteria JSON. Missing fields take their documented
// defaults: zero years, empty skill lists, minimum score 7.
func ParseCriteria(data []byte) (Criteria, error) {
	c := Criteria{MinimumScore: DefaultMinimumScore}
	if err := decodeStrict(data, &c); err != nil {
		return Criteria{}, fmt.Errorf("%w: decode criteria: %v", ErrConfigInvalid, err)
	}

	c.RequiredSkills = nonNil(c.RequiredSkills)
	c.PreferredSkills = nonNil(c.PreferredSkills)

	if err := validate.Struct(c); err != nil {
		return Criteria{}, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	return c, nil
}

// LoadJobDescription reads a job description from a JSON file.
func LoadJobDescription(path string) (JobDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return JobDescription{}, fmt.Errorf("%w: read job description %q: %w", ErrConfigInvalid, path, err)
	}
	return ParseJobDescription(data)
}

// ParseJobDescription decodes job description JSON. Missing fields are empty.
func ParseJobDescription(data []byte) (JobDescription, error) {
	var j JobDescription
	if err := decodeStrict(data, &j); err != nil {
		return JobDescription{}, fmt.Errorf("%w: decode job description: %v", ErrConfigInvalid, err)
	}

	j.Requirements = nonNil(j.Requirements)
	j.Responsibilities = nonNil(j.Responsibilities)

	return j, nil
}

// decodeStrict decodes a single JSON object into target. Unknown keys are
// tolerated; trailing data is not.
func decodeStrict(data []byte, target any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.New("empty document")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(target); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON object")
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}
