package driven

import (
	"context"
	"io"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
)

// PDFExtractor extracts per-page text from a PDF file. Extraction
// problems are reported inside the result (Success=false, Err set)
// rather than as a returned error, so callers can store a descriptive
// fallback document instead of dropping the upload.
type PDFExtractor interface {
	// Extract reads the PDF from r (size bytes) and returns per-page
	// text. name is the original filename, used for diagnostics.
	Extract(ctx context.Context, r io.ReaderAt, size int64, name string) domain.PDFExtraction
}
