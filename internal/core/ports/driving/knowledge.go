package driving

import (
	"context"
	"io"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
)

// KnowledgeService manages the personal knowledge base: ingestion,
// retrieval and deletion. It is the only surface allowed to touch the
// document and vector stores together.
type KnowledgeService interface {
	// AddTextDocument ingests pasted text: chunk, embed, store.
	// Returns the new document id. onProgress may be nil.
	// Failure wraps domain.ErrIngestion; a document may remain stored
	// with incomplete embeddings.
	AddTextDocument(ctx context.Context, title, content string, onProgress domain.ProgressFunc) (string, error)

	// AddPDFDocument ingests a PDF file through text extraction and
	// the same pipeline. title may be empty, in which case the
	// filename without extension is used. Extraction failure stores a
	// descriptive fallback document and is reported via progress
	// status, not as an error.
	AddPDFDocument(ctx context.Context, file io.ReaderAt, size int64, filename, title string, onProgress domain.ProgressFunc) (string, error)

	// DeleteKnowledgeItem removes a document and its embeddings.
	// Embeddings are deleted first so no orphaned record can outlive
	// its document.
	DeleteKnowledgeItem(ctx context.Context, id string) error

	// SearchKnowledge returns up to limit sources ranked by similarity
	// to the query, titles populated. Records whose document was
	// deleted since embedding time are skipped, not errors.
	SearchKnowledge(ctx context.Context, query string, limit int) ([]domain.KnowledgeSource, error)

	// HasKnowledgeContent is a cheap existence probe used as a fast
	// exit before any retrieval work.
	HasKnowledgeContent(ctx context.Context) (bool, error)

	// GetAllKnowledge lists every stored document.
	GetAllKnowledge(ctx context.Context) ([]domain.Document, error)

	// GetKnowledgeItem retrieves one document by id.
	// Returns domain.ErrNotFound if absent.
	GetKnowledgeItem(ctx context.Context, id string) (*domain.Document, error)

	// ClearAll removes every document and every embedding.
	ClearAll(ctx context.Context) error
}
