package filtering

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile creates a filter that removes resumes listed in the exclude file.
func NewExcludeFile(path string) Filter {
	return &excludeFileFilter{path: path}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, files *Files) (*Files, Step, error) {
	initial := files.Len()
	if f.path == "" {
		return files, Step{Initial: initial, Dropped: 0, Left: files.Len()}, nil
	}

	excluded, err := ReadExcludeFile(f.path)
	if err != nil {
		return files, Step{}, fmt.Errorf("getting excluded resumes from file: %w", err)
	}

	ids := excluded.IDs()
	removed := files.Exclude(func(path string) bool { return slices.Contains(ids, ResumeID(path)) })
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding resumes based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_resumes", removed),
			zap.Int("resumes_left", files.Len()),
		)
	}

	return files, Step{Initial: initial, Dropped: len(removed), Left: files.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
