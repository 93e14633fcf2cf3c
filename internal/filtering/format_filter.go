package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/extract"
)

type formatFilter struct {
	toggle
}

// NewSupportedFormat creates a filter that removes files the extractor cannot read.
func NewSupportedFormat() Filter {
	return &formatFilter{}
}

func (f *formatFilter) Name() string { return "supported_format" }

func (f *formatFilter) Apply(_ context.Context, deps Deps, files *Files) (*Files, Step, error) {
	initial := files.Len()
	excluded := files.Exclude(func(path string) bool { return !extract.IsSupported(path) })
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding files with unsupported formats",
			zap.Strings("excluded_files", excluded),
			zap.Int("files_left", files.Len()),
		)
	}

	return files, Step{Initial: initial, Dropped: len(excluded), Left: files.Len()}, nil
}

func (f *formatFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"extensions": strings.Join(extract.SupportedExtensions(), ",")},
	}
}
