package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

const (
	documentPart = "word/document.xml"
	wordNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// extractDOCX walks word/document.xml and emits one line per paragraph in
// document order.
func (e *Extractor) extractDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open docx: %v", ErrExtractionFailed, err)
	}

	var part *zip.File
	for _, f := range archive.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", fmt.Errorf("%w: docx has no %s", ErrExtractionFailed, documentPart)
	}

	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", ErrExtractionFailed, documentPart, err)
	}
	defer rc.Close()

	paragraphs, err := readParagraphs(rc)
	if err != nil {
		if len(paragraphs) == 0 {
			return "", fmt.Errorf("%w: parse %s: %v", ErrExtractionFailed, documentPart, err)
		}
		e.logger.Warn("docx truncated, keeping paragraphs read so far",
			zap.Int("paragraphs", len(paragraphs)),
			zap.Error(err),
		)
	}

	return strings.Join(paragraphs, "\n"), nil
}

// readParagraphs collects the text of every w:p element. Paragraphs nested
// inside another (text boxes, shapes) are emitted on their own and do not
// clobber the text already collected for the enclosing paragraph.
func readParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		open       []*strings.Builder
		inText     bool
	)

	write := func(s string) {
		if len(open) > 0 {
			open[len(open)-1].WriteString(s)
		}
	}

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return paragraphs, nil
		}
		if err != nil {
			return paragraphs, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				open = append(open, &strings.Builder{})
			case "t":
				inText = true
			case "tab":
				write("\t")
			case "br", "cr":
				write(" ")
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if len(open) == 0 {
					continue
				}
				last := open[len(open)-1]
				open = open[:len(open)-1]
				paragraphs = append(paragraphs, last.String())
			}
		case xml.CharData:
			if inText {
				write(string(t))
			}
		}
	}
}
