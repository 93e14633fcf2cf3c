package filtering

import (
	"path/filepath"
	"slices"
)

// Files is the working list of resume paths.
type Files struct {
	Paths []string
}

// NewFiles wraps paths; the slice is copied.
func NewFiles(paths []string) *Files {
	return &Files{Paths: slices.Clone(paths)}
}

// Len returns the number of files left.
func (f *Files) Len() int {
	return len(f.Paths)
}

// IDs returns the resume identifiers (base names) in order.
func (f *Files) IDs() []string {
	ids := make([]string, 0, len(f.Paths))
	for _, p := range f.Paths {
		ids = append(ids, ResumeID(p))
	}
	return ids
}

// Exclude removes files matching drop and returns their resume IDs.
func (f *Files) Exclude(drop func(path string) bool) []string {
	excluded := make([]string, 0)
	kept := f.Paths[:0]
	for _, p := range f.Paths {
		if drop(p) {
			excluded = append(excluded, ResumeID(p))
			continue
		}
		kept = append(kept, p)
	}
	f.Paths = kept
	return excluded
}

// ResumeID is the identifier a resume file is known by in results and
// exclude files.
func ResumeID(path string) string {
	return filepath.Base(path)
}
