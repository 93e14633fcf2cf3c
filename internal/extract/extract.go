// Package extract turns resume files into plain UTF-8 text.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Format is a supported resume file format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatDOC  Format = "doc"
	FormatTXT  Format = "txt"
)

var (
	// ErrUnsupportedFormat is returned before any I/O for unknown extensions.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrExtractionFailed is returned when a file cannot be opened or decoded at all.
	ErrExtractionFailed = errors.New("extraction failed")
)

var supported = map[Format]bool{
	FormatPDF:  true,
	FormatDOCX: true,
	FormatDOC:  true,
	FormatTXT:  true,
}

// SupportedExtensions lists the accepted file extensions with leading dots.
func SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".txt", ".doc"}
}

// FormatOf returns the format declared by the file name's extension.
func FormatOf(name string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	format := Format(ext)
	if !supported[format] {
		if ext == "" {
			ext = "<none>"
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return format, nil
}

// IsSupported reports whether name has a supported extension.
func IsSupported(name string) bool {
	_, err := FormatOf(name)
	return err == nil
}

// Extractor converts resume documents into text. Page or paragraph level
// problems are logged and skipped; only a document that cannot be read at all
// is an error.
type Extractor struct {
	logger *zap.Logger
}

// New creates an Extractor.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// ExtractFile reads the file at path and extracts its text. The extension is
// checked first so unsupported files are never opened.
func (e *Extractor) ExtractFile(path string) (string, error) {
	format, err := FormatOf(path)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrExtractionFailed, filepath.Base(path), err)
	}

	return e.Extract(data, format)
}

// Extract extracts text from raw bytes in the declared format.
func (e *Extractor) Extract(data []byte, format Format) (string, error) {
	switch format {
	case FormatPDF:
		return e.extractPDF(data)
	case FormatDOCX:
		return e.extractDOCX(data)
	case FormatDOC:
		return e.extractDOC(data)
	case FormatTXT:
		return extractTXT(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
