package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/filtering"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/report"
	"github.com/spigell/resume-screener/internal/screening"
)

const (
	PromptExport              = "Export report"
	PromptNo                  = "No"
	PromptReportByDecision    = "Report by recommendation"
	PromptAppendToExcludeFile = "Append all resumes to exclude file"
	PromptResultsToFile       = "Dump results to file"
)

var errExit = errors.New("exit requested")

var screenCmd = &cobra.Command{
	Use:   "screen [dir]",
	Short: "Screen every resume in a directory and export a report",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		screen(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().BoolP("auto-approve", "y", false, "export the report without asking")
	screenCmd.Flags().Bool("ignore-exclude-file", false, "screen resumes even if they are listed in the exclude file")
	screenCmd.Flags().StringP("exclude-file", "e", "", "file with already screened resumes to skip. Default is unset.")
	screenCmd.Flags().StringP("output", "o", "", "xlsx report path (default is screening_results.xlsx)")
	screenCmd.Flags().String("criteria", "", "screening criteria JSON file")
	screenCmd.Flags().String("job-description", "", "job description JSON file")
	screenCmd.Flags().Int("concurrency", 0, "maximum resumes screened at once, 0 means no limit")

	for _, name := range []string{"exclude-file", "output", "criteria", "job-description", "concurrency"} {
		viper.BindPFlag(name, screenCmd.Flags().Lookup(name))
	}
}

// screen runs the batch pipeline: discover, filter, screen, then export.
func screen(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := getConfig()
	if err != nil {
		log.Fatalf("getting a config: %s", err)
	}

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), config.LogFile)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	if len(args) > 0 {
		config.Dir = args[0]
	}

	logger.Info("starting the resume-screener", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	job, criteria, err := loadInputs(config, logger)
	if err != nil {
		logger.Fatal("loading screening inputs", zap.Error(err))
	}

	generator, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building model backend", zap.Error(err))
	}

	ignoreExclude, _ := cmd.Flags().GetBool("ignore-exclude-file")
	files, err := discoverFiles(ctx, config, ignoreExclude, logger)
	if err != nil {
		logger.Fatal("discovering resumes", zap.Error(err))
	}

	if files.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no resumes left after filters"))
		return
	}

	screener := screening.NewScreener(extract.New(logger), generator, screeningOptions(config.AI, config.Concurrency), logger)
	batch := screener.ScreenFiles(ctx, files.Paths, job, criteria)

	for _, r := range batch.Results() {
		logger.Info("screened",
			zap.String("applicant", r.ApplicantName),
			zap.Float64("overall_score", r.OverallScore),
			zap.String("recommendation", string(r.Recommendation)),
			zap.Bool("fallback", r.Fallback),
		)
	}

	if len(screener.History()) == 0 {
		logger.Info("exiting", zap.String("reason", "no resumes were screened successfully"))
		return
	}

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	if autoApprove {
		if err := handleAction(PromptExport, screener, config, logger); err != nil && !errors.Is(err, errExit) {
			logger.Fatal("exiting", zap.Error(err))
		}
		return
	}

	items := []string{PromptExport, PromptNo, PromptReportByDecision, PromptResultsToFile}
	if config.ExcludeFile != "" {
		items = append(items, PromptAppendToExcludeFile)
	}
	prompt := promptui.Select{
		Label: "Export the report?",
		Items: items,
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, screener, config, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// discoverFiles lists the resume directory and runs the filter chain over it.
func discoverFiles(ctx context.Context, config *Config, ignoreExclude bool, logger *zap.Logger) (*filtering.Files, error) {
	paths, err := screening.ListFiles(config.Dir)
	if err != nil {
		return nil, err
	}

	logger.Info("discovered files", zap.String("dir", config.Dir), zap.Int("count", len(paths)))

	steps := []filtering.Filter{
		filtering.NewSupportedFormat(),
		filtering.NewExcludeFile(config.ExcludeFile),
		filtering.NewMaxSize(config.MaxFileSize),
	}

	if ignoreExclude {
		filtering.DisableByName(steps, "exclude_file", "skip requested via flag")
	}

	for _, status := range filtering.Describe(steps) {
		logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	return filtering.Run(ctx, filtering.Deps{Logger: logger}, steps, filtering.NewFiles(paths))
}

func handleAction(action string, screener *screening.Screener, config *Config, logger *zap.Logger) error {
	results := screener.History()

	switch action {
	case PromptExport:
		if err := report.WriteXLSX(config.Output, results); err != nil {
			return fmt.Errorf("export report: %w", err)
		}
		logger.Info("report exported", zap.String("filename", config.Output), zap.Int("count", len(results)))
		screener.ClearHistory()
		return errExit
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptReportByDecision:
		pretty, _ := json.MarshalIndent(report.ByRecommendation(results), "", "  ")
		logger.Info(string(pretty), zap.Int("results count", len(results)))
		return nil
	case PromptResultsToFile:
		filename, err := report.DumpToTmpFile(results)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(config.ExcludeFile, results, logger)
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func appendToExcludeFile(path string, results []*screening.Result, logger *zap.Logger) error {
	excluded, err := filtering.ReadExcludeFile(path)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, r := range results {
		excluded.Append(&filtering.ExcludedResume{
			ID:             r.ResumeID,
			Path:           r.Path,
			Recommendation: string(r.Recommendation),
			ExcludedAt:     now,
		})
	}

	if err := excluded.ToFile(path); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", path), zap.Int("count", len(excluded.Items)))
	return nil
}
