// Package extract turns stored documents into ordered per-page text.
package extract

import (
	"fmt"
	"log/slog"

	"github.com/ledongthuc/pdf"

	"github.com/askpdf/askpdf/pkg/chunker"
)

// PageExtractor produces one cleaned text string per page, in page
// order. A page that cannot be extracted degrades to an empty string;
// only a document that cannot be opened at all is an error.
type PageExtractor interface {
	ExtractPages(path string) ([]string, error)
}

type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

func (e *PDFExtractor) ExtractPages(path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// one corrupt page must not block the rest of the document
			slog.Warn("page extraction failed", "path", path, "page", i-1, "error", err)
			text = ""
		}
		pages = append(pages, chunker.Normalize(text))
	}
	return pages, nil
}
