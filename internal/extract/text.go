package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func extractTXT(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text is not valid UTF-8", ErrExtractionFailed)
	}
	return string(data), nil
}

// minDOCRun is the shortest printable run kept from a legacy .doc file.
const minDOCRun = 4

// extractDOC recovers printable ASCII runs from a legacy binary Word file.
// The binary format is not parsed; text stored as UTF-16 is lost.
func (e *Extractor) extractDOC(data []byte) (string, error) {
	var (
		builder strings.Builder
		run     []byte
	)

	flush := func() {
		if len(strings.TrimSpace(string(run))) >= minDOCRun {
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.Write(bytes.TrimSpace(run))
		}
		run = run[:0]
	}

	for _, b := range data {
		if (b >= 32 && b <= 126) || b == '\t' {
			run = append(run, b)
			continue
		}
		flush()
	}
	flush()

	if builder.Len() == 0 {
		return "", fmt.Errorf("%w: no readable text in doc file", ErrExtractionFailed)
	}

	e.logger.Debug("legacy doc extracted with printable-run heuristic", zap.Int("length", builder.Len()))

	return builder.String(), nil
}
