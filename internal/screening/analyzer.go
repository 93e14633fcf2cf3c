package screening

import (
	"context"
	"errors"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/utils"
)

const analysisSystemPrompt = "You evaluate resumes against criteria and job descriptions and return concise JSON responses."

// Analyzer decides free-form criteria for a single resume text. It backs the
// HTTP service.
type Analyzer struct {
	generator ai.Generator
	opts      Options
	logger    *zap.Logger
}

// NewAnalyzer wires an Analyzer.
func NewAnalyzer(generator ai.Generator, opts Options, log *zap.Logger) *Analyzer {
	if opts.MaxLogLength <= 0 {
		opts.MaxLogLength = defaultMaxLogLength
	}

	return &Analyzer{
		generator: generator,
		opts:      opts,
		logger:    logger.WithCommonFields(log, generator.Provider(), generator.Model()),
	}
}

// Model returns the model identifier requests are sent to.
func (a *Analyzer) Model() string {
	if a.opts.Model != "" {
		return a.opts.Model
	}
	return a.generator.Model()
}

// Analyze asks the model for per-criterion decisions. An undecodable reply
// falls back to keyword matching; backend failures are returned.
func (a *Analyzer) Analyze(ctx context.Context, resumeText, jobDescription, criteria string) (*Analysis, error) {
	prompt := BuildAnalysisPrompt(resumeText, jobDescription, criteria)

	a.logger.Debug("model request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.opts.MaxLogLength)),
	)

	raw, err := a.generator.Generate(ctx, ai.Request{
		System:      analysisSystemPrompt,
		Prompt:      prompt,
		Model:       a.opts.Model,
		Temperature: a.opts.Temperature,
		MaxTokens:   a.opts.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	a.logger.Debug("model response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.opts.MaxLogLength)),
	)

	analysis, err := ParseAnalysis(raw)
	if err != nil {
		if !errors.Is(err, ErrParseFailed) {
			return nil, err
		}
		a.logger.Warn("falling back to keyword analysis", zap.Error(err))
		return KeywordAnalysis(CriteriaLines(criteria), resumeText), nil
	}

	return analysis, nil
}
