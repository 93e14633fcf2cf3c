package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	for _, p := range paragraphs {
		fmt.Fprintf(&body, `<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, p)
	}

	return docxArchive(t, body.String())
}

// docxArchive wraps raw w:body content into a minimal DOCX package.
func docxArchive(t *testing.T, body string) []byte {
	t.Helper()

	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body +
		`</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

// buildPDF writes a single-page PDF with a correct cross-reference table.
func buildPDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{name: "cv.pdf", want: FormatPDF},
		{name: "CV.PDF", want: FormatPDF},
		{name: "resume.docx", want: FormatDOCX},
		{name: "resume.doc", want: FormatDOC},
		{name: "notes.txt", want: FormatTXT},
		{name: "sheet.xlsx", wantErr: true},
		{name: "noext", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatOf(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractFileUnsupportedDoesNotOpen(t *testing.T) {
	// The file does not exist; an unsupported extension must fail before any read.
	_, err := New(nil).ExtractFile(filepath.Join(t.TempDir(), "missing.odt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.NotErrorIs(t, err, ErrExtractionFailed)
}

func TestExtractFileMissingIsExtractionFailed(t *testing.T) {
	_, err := New(nil).ExtractFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestExtractTXT(t *testing.T) {
	path := writeFile(t, "jane.txt", append([]byte{0xEF, 0xBB, 0xBF}, []byte("Jane Doe\nGo, Kubernetes")...))

	text, err := New(nil).ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo, Kubernetes", text)
}

func TestExtractTXTInvalidUTF8(t *testing.T) {
	_, err := New(nil).Extract([]byte{0xff, 0xfe, 0x41}, FormatTXT)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestExtractDOCXParagraphOrder(t *testing.T) {
	path := writeFile(t, "john.docx", buildDOCX(t, "John Smith", "Senior Go Engineer", "Python &amp; React"))

	text, err := New(nil).ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, "John Smith\nSenior Go Engineer\nPython & React", text)
}

func TestExtractDOCXNestedParagraphKeepsOuterText(t *testing.T) {
	body := `<w:p><w:r><w:t>Contact: </w:t></w:r>` +
		`<w:r><w:pict><w:txbxContent><w:p><w:r><w:t>Text box</w:t></w:r></w:p></w:txbxContent></w:pict></w:r>` +
		`<w:r><w:t>john@example.com</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Go Engineer</w:t></w:r></w:p>`

	text, err := New(nil).Extract(docxArchive(t, body), FormatDOCX)
	require.NoError(t, err)
	assert.Equal(t, "Text box\nContact: john@example.com\nGo Engineer", text)
}

func TestExtractDOCXNotAZip(t *testing.T) {
	_, err := New(nil).Extract([]byte("plain text pretending"), FormatDOCX)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestExtractDOCXMissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = New(nil).Extract(buf.Bytes(), FormatDOCX)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestExtractPDF(t *testing.T) {
	path := writeFile(t, "ann.pdf", buildPDF("Hello Resume"))

	text, err := New(nil).ExtractFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(text))
	assert.Contains(t, text, "Hello")
}

func TestExtractPDFMalformed(t *testing.T) {
	_, err := New(nil).Extract([]byte("%PDF-1.4\nnot really a pdf"), FormatPDF)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestExtractDOC(t *testing.T) {
	data := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0x00, 0x01}, []byte("Experienced Go developer")...)
	data = append(data, 0x00, 0x02, 'x', 0x00)
	data = append(data, []byte("Seoul, Korea")...)

	text, err := New(nil).Extract(data, FormatDOC)
	require.NoError(t, err)
	assert.Equal(t, "Experienced Go developer\nSeoul, Korea", text)
}

func TestExtractDOCWithoutText(t *testing.T) {
	_, err := New(nil).Extract([]byte{0x00, 0x01, 0x02, 'a', 0x00}, FormatDOC)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestIsSupported(t *testing.T) {
	for _, ext := range SupportedExtensions() {
		assert.True(t, IsSupported("resume"+ext), ext)
	}
	assert.False(t, IsSupported("resume.rtf"))
}
