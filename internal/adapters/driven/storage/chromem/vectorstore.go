// Package chromem provides a VectorStore adapter backed by chromem-go,
// an embedded vector database. It is an alternative to the SQLite
// store for users who want a dedicated vector index with optional
// on-disk persistence.
package chromem

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
	"github.com/sidenote-labs/sidenote/internal/core/ports/driven"
	"github.com/sidenote-labs/sidenote/internal/logger"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// collectionName is the single collection holding all chunk embeddings.
const collectionName = "knowledge"

// errExternalEmbeddings guards against chromem trying to embed
// documents itself; every embedding is computed upstream.
var errExternalEmbeddings = errors.New("chromem: embeddings are computed externally")

// VectorStore is a chromem-go backed embedding store. Unlike the
// SQLite store, ranking ties are ordered by the underlying index, not
// by insertion order.
type VectorStore struct {
	db *chromemgo.DB

	mu         sync.Mutex
	collection *chromemgo.Collection
}

// New creates an in-memory chromem vector store.
func New() (*VectorStore, error) {
	return newStore(chromemgo.NewDB())
}

// NewPersistent creates a chromem vector store persisted under dir.
func NewPersistent(dir string) (*VectorStore, error) {
	db, err := chromemgo.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("opening chromem database: %w", err)
	}
	return newStore(db)
}

func newStore(db *chromemgo.DB) (*VectorStore, error) {
	s := &VectorStore{db: db}
	if err := s.openCollection(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *VectorStore) openCollection() error {
	collection, err := s.db.GetOrCreateCollection(collectionName, nil, noEmbedding)
	if err != nil {
		return fmt.Errorf("opening collection: %w", err)
	}
	s.collection = collection
	return nil
}

// noEmbedding satisfies chromem's embedding hook without ever running.
func noEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, errExternalEmbeddings
}

// StoreEmbeddings writes one document per chunk under the knowledge id.
func (s *VectorStore) StoreEmbeddings(ctx context.Context, knowledgeID string, embeddings [][]float32, texts []string) error {
	if len(embeddings) != len(texts) {
		return fmt.Errorf("storing embeddings: %w: %d embeddings for %d texts",
			domain.ErrInvalidInput, len(embeddings), len(texts))
	}
	if len(embeddings) == 0 {
		return nil
	}

	docs := make([]chromemgo.Document, 0, len(embeddings))
	for i := range embeddings {
		docs = append(docs, chromemgo.Document{
			ID: fmt.Sprintf("%s_%d", knowledgeID, i),
			Metadata: map[string]string{
				"knowledge_id": knowledgeID,
				"chunk_index":  strconv.Itoa(i),
			},
			Embedding: embeddings[i],
			Content:   texts[i],
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("storing embeddings: %w", err)
	}
	return nil
}

// SearchSimilar ranks all stored documents by similarity to the query.
func (s *VectorStore) SearchSimilar(ctx context.Context, query []float32, limit int) ([]domain.KnowledgeSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.collection.Count()
	if count == 0 || limit <= 0 {
		return []domain.KnowledgeSource{}, nil
	}
	if limit > count {
		limit = count
	}

	results, err := s.collection.QueryEmbedding(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}

	sources := make([]domain.KnowledgeSource, 0, len(results))
	for _, result := range results {
		chunkIndex, _ := strconv.Atoi(result.Metadata["chunk_index"])
		sources = append(sources, domain.KnowledgeSource{
			KnowledgeID: result.Metadata["knowledge_id"],
			ChunkIndex:  chunkIndex,
			Text:        result.Content,
			Similarity:  float64(result.Similarity),
		})
	}

	logger.Debug("Queried %d chromem documents, returning %d results", count, len(sources))
	return sources, nil
}

// DeleteByKnowledgeID removes all documents for a knowledge id.
func (s *VectorStore) DeleteByKnowledgeID(ctx context.Context, knowledgeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collection.Count() == 0 {
		return nil
	}
	if err := s.collection.Delete(ctx, map[string]string{"knowledge_id": knowledgeID}, nil); err != nil {
		return fmt.Errorf("deleting embeddings: %w", err)
	}
	return nil
}

// HasAny reports whether any document exists.
func (s *VectorStore) HasAny(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection.Count() > 0, nil
}

// ClearAll drops and recreates the collection.
func (s *VectorStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("clearing embeddings: %w", err)
	}
	return s.openCollection()
}
