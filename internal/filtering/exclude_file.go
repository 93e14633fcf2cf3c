package filtering

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// ExcludedResumes is the content of an exclude file.
type ExcludedResumes struct {
	Items []*ExcludedResume `json:"items"`
}

// ExcludedResume records a resume that later runs should skip.
type ExcludedResume struct {
	ID             string    `json:"id"`
	Path           string    `json:"path,omitempty"`
	Recommendation string    `json:"recommendation,omitempty"`
	ExcludedAt     time.Time `json:"excluded_at"`
}

// ReadExcludeFile loads an exclude file. A missing or empty file yields an
// empty list.
func ReadExcludeFile(path string) (*ExcludedResumes, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExcludedResumes{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedResumes{}, nil
	}

	var excluded ExcludedResumes
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, fmt.Errorf("decode exclude file %s: %w", path, err)
	}
	return &excluded, nil
}

// Append adds entries whose IDs are not present yet.
func (e *ExcludedResumes) Append(items ...*ExcludedResume) {
	seen := make(map[string]bool, len(e.Items))
	for _, item := range e.Items {
		seen[item.ID] = true
	}
	for _, item := range items {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		e.Items = append(e.Items, item)
	}
}

// IDs returns the excluded resume identifiers.
func (e *ExcludedResumes) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// ToFile overwrites path with the list.
func (e *ExcludedResumes) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
