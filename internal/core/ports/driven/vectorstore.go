package driven

import (
	"context"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
)

// SearchBatchSize is how many records a similarity scan processes
// between cooperative yield points. Yielding keeps a large knowledge
// base from starving concurrent work; results are identical either way.
const SearchBatchSize = 50

// VectorStore persists chunk embeddings and answers similarity
// queries over all of them. The corpus is personal-scale, so search
// is an exact full scan rather than an approximate index.
type VectorStore interface {
	// StoreEmbeddings writes one record per (chunk index, embedding,
	// text) tuple under the given knowledge id, keyed by
	// "<knowledgeID>_<chunkIndex>". Re-storing the same chunk index
	// overwrites. Returns domain.ErrInvalidInput when embeddings and
	// texts differ in length.
	StoreEmbeddings(ctx context.Context, knowledgeID string, embeddings [][]float32, texts []string) error

	// SearchSimilar ranks every stored record by cosine similarity to
	// the query vector, highest first, ties kept in insertion order,
	// and returns at most limit results. Titles are left empty; the
	// caller joins them from the DocumentStore. An empty store returns
	// an empty slice without scanning.
	SearchSimilar(ctx context.Context, query []float32, limit int) ([]domain.KnowledgeSource, error)

	// DeleteByKnowledgeID removes all records for a knowledge id.
	// No-op if none match.
	DeleteByKnowledgeID(ctx context.Context, knowledgeID string) error

	// HasAny reports whether any record exists. O(1); must not scan.
	HasAny(ctx context.Context) (bool, error)

	// ClearAll removes every record.
	ClearAll(ctx context.Context) error
}
