// ABOUTME: Best-effort plain text extraction from guideline files
// ABOUTME: Reads .txt/.md as-is and pulls text out of PDFs with ledongthuc/pdf
package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/harper/carrierfit/internal/models"
	"github.com/ledongthuc/pdf"
)

// SupportedExtensions lists the file types File can read
var SupportedExtensions = []string{".txt", ".md", ".markdown", ".pdf"}

// Supported reports whether path has an extension File can read
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// File returns the plain text of a guideline file
func File(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return PDF(path)
	case ".txt", ".md", ".markdown":
		return Text(path)
	default:
		return "", fmt.Errorf("%w: unsupported file type %q", models.ErrInvalidInput, filepath.Ext(path))
	}
}

// Text reads a UTF-8 text file, normalizing line endings
func Text(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8 text", models.ErrInvalidInput, path)
	}
	return normalize(string(data)), nil
}

// PDF extracts plain text from a PDF. Layout is not preserved.
func PDF(path string) (string, error) {
	f, rdr, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	b, err := rdr.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, b); err != nil {
		return "", fmt.Errorf("failed to read pdf buffer: %w", err)
	}

	text := normalize(buf.String())
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no text extracted from %s", models.ErrInvalidInput, path)
	}
	return text, nil
}

func normalize(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
