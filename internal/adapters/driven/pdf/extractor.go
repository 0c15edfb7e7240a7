// Package pdf provides a PDF text extractor backed by ledongthuc/pdf.
package pdf

import (
	"context"
	"fmt"
	"io"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
	"github.com/sidenote-labs/sidenote/internal/core/ports/driven"
	"github.com/sidenote-labs/sidenote/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.PDFExtractor = (*Extractor)(nil)

// Extractor extracts per-page plain text from PDF files. Extraction
// problems are reported inside the result rather than as an error, so
// callers can store a descriptive fallback document.
type Extractor struct{}

// NewExtractor creates a PDF extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the PDF and returns per-page text. A page that cannot
// be read gets a placeholder; a file that cannot be opened at all is
// reported as a failed extraction.
func (e *Extractor) Extract(ctx context.Context, r io.ReaderAt, size int64, name string) domain.PDFExtraction {
	reader, err := openReader(r, size)
	if err != nil {
		logger.Warn("Could not open PDF %q: %v", name, err)
		return domain.PDFExtraction{Success: false, Err: err}
	}

	totalPages := reader.NumPage()
	extraction := domain.PDFExtraction{
		Pages:      make([]domain.PDFPage, 0, totalPages),
		TotalPages: totalPages,
		Success:    true,
	}

	extracted := 0
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return domain.PDFExtraction{Success: false, Err: err}
		}

		text, err := extractPage(reader, pageNum)
		if err != nil {
			logger.Warn("Failed to extract text from page %d of %q: %v", pageNum, name, err)
			extraction.Pages = append(extraction.Pages, domain.PDFPage{
				PageNumber: pageNum,
				Text:       fmt.Sprintf("[Error extracting text from page %d]", pageNum),
			})
			continue
		}

		text = strings.TrimSpace(text)
		extraction.Pages = append(extraction.Pages, domain.PDFPage{
			PageNumber: pageNum,
			Text:       text,
			WordCount:  len(strings.Fields(text)),
		})
		if text != "" {
			extracted++
		}
	}

	// A file where no page produced text is a failed extraction:
	// typically a scanned, image-only document.
	if extracted == 0 {
		logger.Warn("PDF %q produced no extractable text across %d pages", name, totalPages)
		return domain.PDFExtraction{
			Pages:      extraction.Pages,
			TotalPages: totalPages,
			Success:    false,
			Err:        fmt.Errorf("no extractable text in %d pages", totalPages),
		}
	}

	logger.Info("Extracted text from %d/%d pages of %q", extracted, totalPages, name)
	return extraction
}

// openReader opens the PDF, converting parser panics into errors.
// The underlying library panics on some malformed files.
func openReader(r io.ReaderAt, size int64) (reader *ledongthuc.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("opening pdf: %v", rec)
		}
	}()
	return ledongthuc.NewReader(r, size)
}

// extractPage reads one page's plain text, converting panics into
// errors.
func extractPage(reader *ledongthuc.Reader, pageNum int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("reading page %d: %v", pageNum, rec)
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d is missing", pageNum)
	}
	return page.GetPlainText(nil)
}
