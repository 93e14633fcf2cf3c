package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

func (e *Extractor) extractPDF(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: open pdf: %v", ErrExtractionFailed, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", ErrExtractionFailed, err)
	}

	var builder strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		text, err := pageText(reader, i)
		if err != nil {
			e.logger.Warn("skipping unreadable pdf page", zap.Int("page", i), zap.Error(err))
			continue
		}
		builder.WriteString(text)
	}

	return builder.String(), nil
}

func pageText(reader *pdf.Reader, index int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("page %d: %v", index, r)
		}
	}()

	page := reader.Page(index)
	if page.V.IsNull() {
		return "", nil
	}

	return page.GetPlainText(nil)
}
