package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
	"github.com/sidenote-labs/sidenote/internal/core/ports/driven"
	"github.com/sidenote-labs/sidenote/internal/core/ports/driving"
	"github.com/sidenote-labs/sidenote/internal/logger"
)

// Ensure KnowledgeService implements the interface.
var _ driving.KnowledgeService = (*KnowledgeService)(nil)

// embedBatchSize is how many chunks are embedded per batch during
// ingestion. Batching bounds memory and gives progress reporting a
// natural cadence.
const embedBatchSize = 5

// pageMarker matches the per-page markers inserted during PDF text
// assembly, used to recover page numbers for citations.
var pageMarker = regexp.MustCompile(`\[Page (\d+)\]`)

// TextChunker splits document content into embedding-sized chunks.
type TextChunker interface {
	// Chunk splits text into ordered chunks.
	Chunk(text string) []string

	// SetParameters re-applies chunk size and overlap.
	SetParameters(chunkSize, overlap int)
}

// KnowledgeService coordinates the ingestion pipeline (chunk, embed,
// store) and retrieval over the document and vector stores. It is the
// only component that touches both stores, which keeps the
// document/embedding lifecycle invariants in one place.
type KnowledgeService struct {
	docStore    driven.DocumentStore
	vectorStore driven.VectorStore
	embedder    driven.EmbeddingService
	chunker     TextChunker
	pdf         driven.PDFExtractor
	settings    *SettingsService

	// ingestMu serializes ingestions so concurrent uploads cannot
	// interleave their store writes.
	ingestMu sync.Mutex
}

// NewKnowledgeService creates a knowledge service.
func NewKnowledgeService(
	docStore driven.DocumentStore,
	vectorStore driven.VectorStore,
	embedder driven.EmbeddingService,
	chunker TextChunker,
) *KnowledgeService {
	return &KnowledgeService{
		docStore:    docStore,
		vectorStore: vectorStore,
		embedder:    embedder,
		chunker:     chunker,
	}
}

// SetPDFExtractor sets the optional PDF extractor. Without one, PDF
// uploads store the fixed extraction-failure document.
func (s *KnowledgeService) SetPDFExtractor(pdf driven.PDFExtractor) {
	s.pdf = pdf
}

// SetSettings sets the optional settings source for chunking
// parameters. Without one, chunker defaults are used.
func (s *KnowledgeService) SetSettings(settings *SettingsService) {
	s.settings = settings
}

// AddTextDocument ingests pasted text: chunk, embed, store.
func (s *KnowledgeService) AddTextDocument(
	ctx context.Context, title, content string, onProgress domain.ProgressFunc,
) (string, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return "", fmt.Errorf("add text document: %w: title and content are required", domain.ErrInvalidInput)
	}

	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	logger.Section("Text Ingestion")
	logger.Info("Adding text document %q (%d characters)", title, len(content))

	report(onProgress, 10, "Processing text content...", 0)
	id := newKnowledgeID()

	report(onProgress, 20, "Chunking text content...", 0)
	chunks := s.chunk(content)

	report(onProgress, 30, "Creating knowledge item...", 0)
	doc := &domain.Document{
		ID:         id,
		Title:      title,
		Content:    content,
		Type:       domain.DocumentTypeText,
		Chunks:     chunks,
		ChunkCount: len(chunks),
		CreatedAt:  time.Now(),
	}
	if err := s.docStore.Store(ctx, doc); err != nil {
		return "", fmt.Errorf("add text document: %w: %w", domain.ErrIngestion, err)
	}

	report(onProgress, 40, "Generating embeddings...", 0)
	if err := s.embedChunks(ctx, id, chunks, onProgress); err != nil {
		return "", fmt.Errorf("add text document: %w: %w", domain.ErrIngestion, err)
	}

	report(onProgress, 100, "Text processing complete!", len(chunks))
	logger.Info("Stored document %s with %d chunks", id, len(chunks))
	return id, nil
}

// AddPDFDocument ingests a PDF through text extraction and the same
// pipeline as text. Extraction failure stores a descriptive fallback
// document instead of dropping the upload.
func (s *KnowledgeService) AddPDFDocument(
	ctx context.Context, file io.ReaderAt, size int64, filename, title string, onProgress domain.ProgressFunc,
) (string, error) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	logger.Section("PDF Ingestion")
	logger.Info("Adding PDF document %q (%d bytes)", filename, size)

	report(onProgress, 10, "Extracting text from PDF...", 0)
	content := s.extractPDF(ctx, file, size, filename)

	report(onProgress, 20, "Text extraction complete, chunking content...", 0)
	title = strings.TrimSpace(title)
	if title == "" {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	id := newKnowledgeID()
	chunks := s.chunk(content)

	report(onProgress, 30, "Creating knowledge item...", 0)
	doc := &domain.Document{
		ID:         id,
		Title:      title,
		Content:    content,
		Type:       domain.DocumentTypePDF,
		Chunks:     chunks,
		ChunkCount: len(chunks),
		CreatedAt:  time.Now(),
	}
	if err := s.docStore.Store(ctx, doc); err != nil {
		return "", fmt.Errorf("add pdf document: %w: %w", domain.ErrIngestion, err)
	}

	report(onProgress, 40, "Generating embeddings...", 0)
	if err := s.embedChunks(ctx, id, chunks, onProgress); err != nil {
		return "", fmt.Errorf("add pdf document: %w: %w", domain.ErrIngestion, err)
	}

	report(onProgress, 100, "PDF processing complete!", len(chunks))
	logger.Info("Stored PDF document %s with %d chunks", id, len(chunks))
	return id, nil
}

// DeleteKnowledgeItem removes a document and its embeddings.
// Embeddings are deleted first: a failure in between leaves a document
// without embeddings, never embeddings without a document.
func (s *KnowledgeService) DeleteKnowledgeItem(ctx context.Context, id string) error {
	if err := s.vectorStore.DeleteByKnowledgeID(ctx, id); err != nil {
		return fmt.Errorf("delete embeddings for %q: %w", id, err)
	}
	if err := s.docStore.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document %q: %w", id, err)
	}
	logger.Debug("Deleted knowledge item %s", id)
	return nil
}

// SearchKnowledge embeds the query and returns up to limit sources
// ranked by similarity, with titles and page numbers populated.
func (s *KnowledgeService) SearchKnowledge(ctx context.Context, query string, limit int) ([]domain.KnowledgeSource, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.KnowledgeSource{}, nil
	}

	logger.Section("Knowledge Search")
	logger.Debug("Query: %q, limit: %d", query, limit)

	if err := s.ensureEmbedder(ctx); err != nil {
		return nil, fmt.Errorf("search knowledge: %w: %w", domain.ErrRetrieval, err)
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search knowledge: %w: %w", domain.ErrRetrieval, err)
	}

	matches, err := s.vectorStore.SearchSimilar(ctx, queryVec, limit)
	if err != nil {
		return nil, fmt.Errorf("search knowledge: %w: %w", domain.ErrRetrieval, err)
	}

	// Join titles from the document store. A record whose document was
	// deleted since embedding time is skipped, not an error.
	sources := make([]domain.KnowledgeSource, 0, len(matches))
	for _, match := range matches {
		doc, err := s.docStore.Get(ctx, match.KnowledgeID)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("Skipping orphaned embedding for deleted document %s", match.KnowledgeID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("search knowledge: %w: %w", domain.ErrRetrieval, err)
		}

		match.Title = doc.Title
		match.PageNumber = chunkPageNumber(match.Text)
		sources = append(sources, match)
	}

	logger.Info("Found %d sources for query", len(sources))
	return sources, nil
}

// HasKnowledgeContent is a cheap existence probe.
func (s *KnowledgeService) HasKnowledgeContent(ctx context.Context) (bool, error) {
	return s.docStore.HasAny(ctx)
}

// GetAllKnowledge lists every stored document.
func (s *KnowledgeService) GetAllKnowledge(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.GetAll(ctx)
}

// GetKnowledgeItem retrieves one document by id.
func (s *KnowledgeService) GetKnowledgeItem(ctx context.Context, id string) (*domain.Document, error) {
	return s.docStore.Get(ctx, id)
}

// ClearAll removes every document and every embedding.
func (s *KnowledgeService) ClearAll(ctx context.Context) error {
	if err := s.vectorStore.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear embeddings: %w", err)
	}
	if err := s.docStore.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	logger.Info("Cleared knowledge base")
	return nil
}

// chunk applies current chunking settings and splits the content.
func (s *KnowledgeService) chunk(content string) []string {
	if s.settings != nil {
		current := s.settings.Get()
		s.chunker.SetParameters(current.ChunkSize, current.ChunkOverlap)
	}
	return s.chunker.Chunk(content)
}

// embedChunks embeds chunks in batches, reporting progress in the
// 40-90% range, then stores all embeddings at once. The scan yields
// between batches so ingestion doesn't starve concurrent queries.
func (s *KnowledgeService) embedChunks(ctx context.Context, id string, chunks []string, onProgress domain.ProgressFunc) error {
	if len(chunks) == 0 {
		return nil
	}

	if err := s.ensureEmbedder(ctx); err != nil {
		return err
	}

	embeddings := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedBatchSize {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}

		end := min(start+embedBatchSize, len(chunks))
		batch, err := s.embedder.EmbedBatch(ctx, chunks[start:end])
		if err != nil {
			return fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		embeddings = append(embeddings, batch...)

		pct := 40 + end*50/len(chunks)
		report(onProgress, pct, fmt.Sprintf("Generating embeddings... (%d/%d)", end, len(chunks)), end)
		runtime.Gosched()
	}

	if err := s.vectorStore.StoreEmbeddings(ctx, id, embeddings, chunks); err != nil {
		return fmt.Errorf("store embeddings: %w", err)
	}
	return nil
}

// ensureEmbedder initializes the embedding service on first use.
func (s *KnowledgeService) ensureEmbedder(ctx context.Context) error {
	if s.embedder.Ready() {
		return nil
	}
	return s.embedder.Init(ctx)
}

// extractPDF runs text extraction and assembles per-page text with
// page markers. Any failure yields the fixed fallback message so the
// upload is preserved with an explanation.
func (s *KnowledgeService) extractPDF(ctx context.Context, file io.ReaderAt, size int64, filename string) string {
	if s.pdf == nil {
		logger.Warn("No PDF extractor configured, storing fallback for %q", filename)
		return pdfFailureMessage
	}

	extraction := s.pdf.Extract(ctx, file, size, filename)
	if !extraction.Success {
		logger.Warn("PDF text extraction failed for %q: %v", filename, extraction.Err)
		return pdfFailureMessage
	}

	pages := make([]string, 0, len(extraction.Pages))
	for _, page := range extraction.Pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		pages = append(pages, fmt.Sprintf("[Page %d]\n%s", page.PageNumber, page.Text))
	}
	if len(pages) == 0 {
		logger.Warn("PDF %q contains no extractable text", filename)
		return pdfFailureMessage
	}

	logger.Info("Extracted %d pages from %q", len(pages), filename)
	return strings.Join(pages, "\n\n")
}

// chunkPageNumber recovers the page number from the first page marker
// in a chunk, 0 when the chunk carries none.
func chunkPageNumber(text string) int {
	m := pageMarker.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// newKnowledgeID returns a fresh document id.
func newKnowledgeID() string {
	return "knowledge-" + uuid.NewString()
}

// report invokes the progress callback if one was provided.
func report(fn domain.ProgressFunc, percentage int, status string, processed int) {
	if fn == nil {
		return
	}
	fn(domain.IngestProgress{
		Percentage:      percentage,
		Status:          status,
		ChunksProcessed: processed,
	})
}
