package filtering

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
)

// DefaultMaxFileSize is the largest resume file screened by default.
const DefaultMaxFileSize int64 = 10 << 20

type sizeFilter struct {
	toggle
	limit int64
}

// NewMaxSize creates a filter that removes files larger than limit bytes.
// A non-positive limit keeps every file.
func NewMaxSize(limit int64) Filter {
	return &sizeFilter{limit: limit}
}

func (f *sizeFilter) Name() string { return "max_size" }

func (f *sizeFilter) Apply(_ context.Context, deps Deps, files *Files) (*Files, Step, error) {
	initial := files.Len()
	if f.limit <= 0 {
		return files, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	var statErr error
	excluded := files.Exclude(func(path string) bool {
		info, err := os.Stat(path)
		if err != nil {
			if statErr == nil {
				statErr = fmt.Errorf("stat %s: %w", path, err)
			}
			return false
		}
		return info.Size() > f.limit
	})
	if statErr != nil {
		return files, Step{}, statErr
	}

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding files over the size limit",
			zap.Int64("limit_bytes", f.limit),
			zap.Strings("excluded_files", excluded),
			zap.Int("files_left", files.Len()),
		)
	}

	return files, Step{Initial: initial, Dropped: len(excluded), Left: files.Len()}, nil
}

func (f *sizeFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"limit_bytes": strconv.FormatInt(f.limit, 10)},
	}
}
