// Package reader converts raw document bytes into plain text.
package reader

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/JakeFAU/contract-extractor/internal/contracts"
)

// OCR extracts text from scanned document formats. Implementations wrap an
// external OCR or PDF-parsing service.
type OCR interface {
	ExtractText(ctx context.Context, name string, data []byte) (string, error)
}

// Reader dispatches on file extension to the right text decoder.
type Reader struct {
	ocr OCR
}

// New creates a reader. The OCR engine may be nil, in which case PDF
// documents fail with a non-retryable error.
func New(ocr OCR) *Reader {
	return &Reader{ocr: ocr}
}

// SupportedExtensions lists the formats Read accepts.
func SupportedExtensions() []string {
	return []string{".txt", ".docx", ".pdf"}
}

// Read decodes the document into plain text. Unsupported extensions and
// unreadable documents are permanent failures for the item.
func (r *Reader) Read(ctx context.Context, item contracts.WorkItem, data []byte) (string, error) {
	switch item.Extension() {
	case ".txt":
		return readPlainText(item.Name, data)
	case ".docx":
		return readDocx(item.Name, data)
	case ".pdf":
		if r.ocr == nil {
			return "", fmt.Errorf("%s: no OCR engine configured for PDF input", item.Name)
		}
		text, err := r.ocr.ExtractText(ctx, item.Name, data)
		if err != nil {
			return "", fmt.Errorf("%s: ocr: %w", item.Name, err)
		}
		return text, nil
	default:
		return "", fmt.Errorf("%s: unsupported file type %q", item.Name, item.Extension())
	}
}

func readPlainText(name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%s: document is empty", name)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: document is not valid UTF-8 text", name)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%s: document contains no text", name)
	}
	return text, nil
}
