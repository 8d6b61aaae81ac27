// Package extractor converts raw document bytes into per-page line sets.
// PDF pages map one to one; formats without physical pages (markdown, HTML,
// docx) yield one page per heading section, and plain text splits on form
// feeds. Downstream detection only cares that recurring furniture lands on
// separate pages, so the mapping is a fidelity question, not a correctness
// one.
package extractor

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nkotake/seion/internal/pagetext"
)

// Extractor converts one document into its pages.
type Extractor interface {
	Extract(r io.Reader, filename string) ([]pagetext.Page, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate extractor for a filename. pdfFallback
// controls whether PDF extraction may shell out to pdftotext when the
// library yields nothing.
func ForFile(filename string, pdfFallback bool) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: pdfFallback}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// pagesFromTexts numbers the non-empty texts sequentially from 1 and splits
// each into lines.
func pagesFromTexts(texts []string) []pagetext.Page {
	var pages []pagetext.Page
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, pagetext.Page{
			Index: i + 1,
			Lines: strings.Split(text, "\n"),
		})
	}
	return pages
}
