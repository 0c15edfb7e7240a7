package memory

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
	"github.com/sidenote-labs/sidenote/internal/core/ports/driven"
	"github.com/sidenote-labs/sidenote/internal/logger"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// record pairs an embedding with its insertion sequence number, which
// keeps equal-similarity results in a stable order.
type record struct {
	domain.EmbeddingRecord
	seq int64
}

// VectorStore is an in-memory embedding store with exact full-scan
// cosine similarity search.
type VectorStore struct {
	mu      sync.RWMutex
	records map[string]record
	nextSeq int64
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		records: make(map[string]record),
	}
}

// StoreEmbeddings writes one record per chunk under the knowledge id.
func (s *VectorStore) StoreEmbeddings(ctx context.Context, knowledgeID string, embeddings [][]float32, texts []string) error {
	if len(embeddings) != len(texts) {
		return fmt.Errorf("store embeddings: %w: %d embeddings for %d texts",
			domain.ErrInvalidInput, len(embeddings), len(texts))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range embeddings {
		id := fmt.Sprintf("%s_%d", knowledgeID, i)
		s.records[id] = record{
			EmbeddingRecord: domain.EmbeddingRecord{
				ID:          id,
				KnowledgeID: knowledgeID,
				ChunkIndex:  i,
				Embedding:   embeddings[i],
				Text:        texts[i],
			},
			seq: s.nextSeq,
		}
		s.nextSeq++
	}

	return nil
}

// SearchSimilar scans every record, scoring by cosine similarity.
// The scan yields between batches so a large store doesn't starve
// concurrent work.
func (s *VectorStore) SearchSimilar(ctx context.Context, query []float32, limit int) ([]domain.KnowledgeSource, error) {
	s.mu.RLock()
	records := make([]record, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}
	s.mu.RUnlock()

	if len(records) == 0 || limit <= 0 {
		return []domain.KnowledgeSource{}, nil
	}

	sort.Slice(records, func(i, j int) bool { return records[i].seq < records[j].seq })

	type scored struct {
		rec   record
		score float64
	}
	results := make([]scored, 0, len(records))

	for start := 0; start < len(records); start += driven.SearchBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("search similar: %w", err)
		}

		end := min(start+driven.SearchBatchSize, len(records))
		for _, r := range records[start:end] {
			results = append(results, scored{rec: r, score: domain.CosineSimilarity(query, r.Embedding)})
		}

		runtime.Gosched()
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })

	if limit > len(results) {
		limit = len(results)
	}
	sources := make([]domain.KnowledgeSource, 0, limit)
	for _, r := range results[:limit] {
		sources = append(sources, domain.KnowledgeSource{
			KnowledgeID: r.rec.KnowledgeID,
			ChunkIndex:  r.rec.ChunkIndex,
			Text:        r.rec.Text,
			Similarity:  r.score,
		})
	}

	logger.Debug("Scanned %d embeddings, returning %d results", len(records), len(sources))
	return sources, nil
}

// DeleteByKnowledgeID removes all records for a knowledge id.
func (s *VectorStore) DeleteByKnowledgeID(ctx context.Context, knowledgeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, r := range s.records {
		if r.KnowledgeID == knowledgeID {
			delete(s.records, id)
		}
	}
	return nil
}

// HasAny reports whether any record exists.
func (s *VectorStore) HasAny(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records) > 0, nil
}

// ClearAll removes every record.
func (s *VectorStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]record)
	return nil
}
