package driven

import (
	"context"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
)

// DocumentStore persists knowledge documents, keyed by document id.
// All operations are durable across process restarts.
type DocumentStore interface {
	// Store inserts or replaces a document by id.
	Store(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by id.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// GetAll returns every stored document.
	GetAll(ctx context.Context) ([]domain.Document, error)

	// HasAny reports whether any document exists. O(1); must not scan.
	HasAny(ctx context.Context) (bool, error)

	// Delete removes a document by id. No-op if absent.
	Delete(ctx context.Context, id string) error

	// ClearAll removes every document.
	ClearAll(ctx context.Context) error
}
