package screening

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/utils"
)

const defaultMaxLogLength = 200

// fileExtractor is the part of extract.Extractor the screener needs.
type fileExtractor interface {
	ExtractFile(path string) (string, error)
}

// Options tune model calls and batch fan-out.
type Options struct {
	// Model overrides the generator's default model when set.
	Model       string
	Temperature float64
	MaxTokens   int
	// Concurrency bounds parallel pipelines in a batch; 0 means unbounded.
	Concurrency int
	// MaxLogLength bounds prompt and reply previews in debug logs.
	MaxLogLength int
}

// Screener runs the extract, prompt, model, parse pipeline for resumes and
// keeps the successful results of every batch it ran.
type Screener struct {
	extractor fileExtractor
	generator ai.Generator
	opts      Options
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	history []*Result
}

// NewScreener wires a Screener. A nil logger disables logging.
func NewScreener(extractor fileExtractor, generator ai.Generator, opts Options, log *zap.Logger) *Screener {
	if opts.MaxLogLength <= 0 {
		opts.MaxLogLength = defaultMaxLogLength
	}

	return &Screener{
		extractor: extractor,
		generator: generator,
		opts:      opts,
		logger:    logger.WithCommonFields(log, generator.Provider(), generator.Model()),
		now:       time.Now,
	}
}

// Batch collects one Outcome per discovered resume, in discovery order.
type Batch struct {
	ID       string
	Dir      string
	Outcomes []Outcome
}

// Results returns the scored resumes in discovery order.
func (b *Batch) Results() []*Result {
	results := make([]*Result, 0, len(b.Outcomes))
	for _, o := range b.Outcomes {
		if o.Succeeded() {
			results = append(results, o.Result)
		}
	}
	return results
}

// Failures returns the failed outcomes in discovery order.
func (b *Batch) Failures() []Outcome {
	failures := make([]Outcome, 0)
	for _, o := range b.Outcomes {
		if !o.Succeeded() {
			failures = append(failures, o)
		}
	}
	return failures
}

// Succeeded is the number of scored resumes.
func (b *Batch) Succeeded() int { return len(b.Results()) }

// Failed is the number of failed resumes.
func (b *Batch) Failed() int { return len(b.Outcomes) - b.Succeeded() }

// ListFiles returns every regular file directly under dir, sorted by name.
// Subdirectories are skipped.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read resume directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	return paths, nil
}

// DiscoverResumes lists files with a supported extension directly under dir,
// sorted by name.
func DiscoverResumes(dir string) ([]string, error) {
	paths, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}

	supported := paths[:0]
	for _, path := range paths {
		if extract.IsSupported(path) {
			supported = append(supported, path)
		}
	}

	return supported, nil
}

// ScreenDirectory screens every supported resume under dir. The only error
// returned is an unreadable directory.
func (s *Screener) ScreenDirectory(ctx context.Context, dir string, job JobDescription, criteria Criteria) (*Batch, error) {
	paths, err := DiscoverResumes(dir)
	if err != nil {
		return nil, err
	}

	batch := s.ScreenFiles(ctx, paths, job, criteria)
	batch.Dir = dir
	return batch, nil
}

// ScreenFiles screens the given resume files concurrently and waits for all
// of them. A failing resume never stops its siblings.
func (s *Screener) ScreenFiles(ctx context.Context, paths []string, job JobDescription, criteria Criteria) *Batch {
	batch := &Batch{
		ID:       uuid.NewString(),
		Outcomes: make([]Outcome, len(paths)),
	}

	log := s.logger.With(zap.String(logger.FieldBatchID, batch.ID))
	log.Info("screening resumes", zap.Int("count", len(paths)))

	var g errgroup.Group
	if s.opts.Concurrency > 0 {
		g.SetLimit(s.opts.Concurrency)
	}

	for i, path := range paths {
		g.Go(func() error {
			outcome := s.screen(ctx, log, path, job, criteria)
			batch.Outcomes[i] = outcome
			if outcome.Succeeded() {
				s.record(outcome.Result)
			}
			return nil
		})
	}

	// Pipelines report failures through their Outcome, never through Wait.
	_ = g.Wait()

	for _, failure := range batch.Failures() {
		log.Warn("resume screening failed",
			zap.String(logger.FieldResumeID, failure.ResumeID),
			zap.Stringer("failed_at", failure.FailedAt),
			zap.Error(failure.Err),
		)
	}

	log.Info("screening completed",
		zap.Int("total", len(batch.Outcomes)),
		zap.Int("succeeded", batch.Succeeded()),
		zap.Int("failed", batch.Failed()),
	)

	return batch
}

// ScreenResume runs the pipeline for a single resume file.
func (s *Screener) ScreenResume(ctx context.Context, path string, job JobDescription, criteria Criteria) (*Result, error) {
	outcome := s.screen(ctx, s.logger, path, job, criteria)
	if !outcome.Succeeded() {
		return nil, outcome.Err
	}
	s.record(outcome.Result)
	return outcome.Result, nil
}

// History returns a copy of all results recorded so far.
func (s *Screener) History() []*Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Result, len(s.history))
	copy(out, s.history)
	return out
}

// ClearHistory drops recorded results, typically after an export.
func (s *Screener) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = nil
}

func (s *Screener) record(result *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, result)
}

// pipeline tracks the state of one resume.
type pipeline struct {
	outcome Outcome
	logger  *zap.Logger
}

func (p *pipeline) enter(state State) {
	p.outcome.State = state
	p.logger.Debug("resume state", zap.Stringer("state", state))
}

func (p *pipeline) fail(err error) Outcome {
	p.outcome.FailedAt = p.outcome.State
	p.outcome.Err = fmt.Errorf("%s: %w", strings.ToLower(p.outcome.State.String()), err)
	p.enter(StateFailed)
	return p.outcome
}

func (s *Screener) screen(ctx context.Context, log *zap.Logger, path string, job JobDescription, criteria Criteria) Outcome {
	resumeID := filepath.Base(path)
	p := &pipeline{
		outcome: Outcome{ResumeID: resumeID, Path: path, State: StatePending},
		logger:  logger.WithResume(log, resumeID),
	}

	p.enter(StateExtracting)
	text, err := s.extractor.ExtractFile(path)
	if err != nil {
		return p.fail(err)
	}
	if strings.TrimSpace(text) == "" {
		return p.fail(fmt.Errorf("%w: no text in %s", extract.ErrExtractionFailed, resumeID))
	}

	p.enter(StatePrompting)
	prompt := BuildEvaluationPrompt(text, job, criteria)

	p.enter(StateAwaitingModel)
	p.logger.Debug("model request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.opts.MaxLogLength)),
	)

	raw, err := s.generator.Generate(ctx, ai.Request{
		System:      ai.DefaultSystemPrompt,
		Prompt:      prompt,
		Model:       s.opts.Model,
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
	})
	if err != nil {
		return p.fail(err)
	}

	p.logger.Debug("model response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.opts.MaxLogLength)),
	)

	p.enter(StateParsing)
	evaluation, err := ParseEvaluation(raw)
	if err != nil {
		if !errors.Is(err, ErrParseFailed) {
			return p.fail(err)
		}
		p.logger.Warn("falling back to keyword evaluation", zap.Error(err))
		evaluation = KeywordEvaluation(job, criteria, text)
	}

	s.applyMinimumScore(p.logger, evaluation, criteria)

	p.outcome.Result = s.newResult(path, evaluation, criteria)
	p.enter(StateScored)

	p.logger.Info("resume screened",
		zap.Float64("overall_score", evaluation.OverallScore),
		zap.String("recommendation", string(evaluation.Recommendation)),
		zap.Bool("fallback", evaluation.Fallback()),
	)

	return p.outcome
}

// applyMinimumScore downgrades a model PASS below the passing threshold to REVIEW.
func (s *Screener) applyMinimumScore(log *zap.Logger, e *Evaluation, criteria Criteria) {
	if e.Method != MethodLLM || e.Recommendation != RecommendationPass {
		return
	}
	if e.OverallScore >= criteria.MinimumScore {
		return
	}

	log.Debug("set recommendation to review by score threshold",
		zap.Float64("score", e.OverallScore),
		zap.Float64("threshold", criteria.MinimumScore),
	)
	e.Recommendation = RecommendationReview
}

func (s *Screener) newResult(path string, e *Evaluation, criteria Criteria) *Result {
	base := filepath.Base(path)

	return &Result{
		ResumeID:             base,
		Path:                 path,
		ApplicantName:        strings.TrimSuffix(base, filepath.Ext(base)),
		OverallScore:         e.OverallScore,
		SkillMatchScore:      e.SkillMatchScore,
		ExperienceMatchScore: e.ExperienceMatchScore,
		EducationMatchScore:  e.EducationMatchScore,
		Recommendation:       e.Recommendation,
		Feedback:             e.Feedback,
		MatchedKeywords:      e.MatchedKeywords,
		MissingKeywords:      e.MissingKeywords,
		ScreenedAt:           s.now(),
		Criteria:             criteria.Clone(),
		Method:               e.Method,
		Fallback:             e.Fallback(),
	}
}
