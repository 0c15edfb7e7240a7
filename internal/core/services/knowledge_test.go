package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidenote-labs/sidenote/internal/adapters/driven/storage/memory"
	"github.com/sidenote-labs/sidenote/internal/core/domain"
)

func newTestKnowledgeService(embedder *mockEmbedder, chunker TextChunker) (*KnowledgeService, *memory.DocumentStore, *memory.VectorStore) {
	docStore := memory.NewDocumentStore()
	vectorStore := memory.NewVectorStore()
	if chunker == nil {
		chunker = &stubChunker{}
	}
	service := NewKnowledgeService(docStore, vectorStore, embedder, chunker)
	return service, docStore, vectorStore
}

func TestKnowledgeService_AddTextDocument(t *testing.T) {
	ctx := context.Background()
	embedder := &mockEmbedder{}
	service, docStore, vectorStore := newTestKnowledgeService(embedder, nil)

	id, err := service.AddTextDocument(ctx, "Notes", "Some text to remember.", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "knowledge-"))

	doc, err := docStore.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Notes", doc.Title)
	assert.Equal(t, domain.DocumentTypeText, doc.Type)
	assert.Equal(t, 1, doc.ChunkCount)

	has, err := vectorStore.HasAny(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	// Init was triggered lazily before embedding.
	assert.Equal(t, 1, embedder.initCalls)
	assert.True(t, embedder.ready)
}

func TestKnowledgeService_AddTextDocumentValidation(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestKnowledgeService(&mockEmbedder{}, nil)

	_, err := service.AddTextDocument(ctx, "", "content", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = service.AddTextDocument(ctx, "Title", "   ", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestKnowledgeService_AddTextDocumentProgress(t *testing.T) {
	ctx := context.Background()

	// 12 chunks crosses two batch boundaries (5, 10, 12).
	chunks := make([]string, 12)
	for i := range chunks {
		chunks[i] = "chunk"
	}
	service, _, _ := newTestKnowledgeService(&mockEmbedder{}, &stubChunker{chunks: chunks})

	var updates []domain.IngestProgress
	_, err := service.AddTextDocument(ctx, "Big", "lots of text", func(p domain.IngestProgress) {
		updates = append(updates, p)
	})
	require.NoError(t, err)
	require.NotEmpty(t, updates)

	// Milestones: start, chunking, item creation, embedding, done.
	assert.Equal(t, 10, updates[0].Percentage)
	assert.Equal(t, 100, updates[len(updates)-1].Percentage)

	for i := 1; i < len(updates); i++ {
		assert.GreaterOrEqual(t, updates[i].Percentage, updates[i-1].Percentage,
			"progress went backwards at update %d", i)
	}

	var processed []int
	for _, u := range updates {
		if strings.HasPrefix(u.Status, "Generating embeddings... (") {
			processed = append(processed, u.ChunksProcessed)
		}
	}
	assert.Equal(t, []int{5, 10, 12}, processed)
}

func TestKnowledgeService_ChunkingUsesSettings(t *testing.T) {
	ctx := context.Background()
	chunker := &stubChunker{}
	service, _, _ := newTestKnowledgeService(&mockEmbedder{}, chunker)

	settings := NewSettingsService(memory.NewKeyValueStore())
	require.NoError(t, settings.Update(ctx, domain.Settings{
		Temperature:            0.5,
		TopK:                   20,
		MaxRecentMessages:      10,
		MaxSources:             3,
		MinSimilarityThreshold: 0.3,
		ChunkSize:              500,
		ChunkOverlap:           50,
	}))
	service.SetSettings(settings)

	_, err := service.AddTextDocument(ctx, "Doc", "text", nil)
	require.NoError(t, err)

	assert.Equal(t, 500, chunker.size)
	assert.Equal(t, 50, chunker.overlap)
}

func TestKnowledgeService_SearchKnowledge(t *testing.T) {
	ctx := context.Background()
	embedder := &mockEmbedder{vectors: map[string][]float32{
		"go basics":      {1, 0, 0},
		"cooking pasta":  {0, 1, 0},
		"query about go": {0.95, 0.05, 0},
	}}
	service, _, _ := newTestKnowledgeService(embedder, nil)

	_, err := service.AddTextDocument(ctx, "Go Guide", "go basics", nil)
	require.NoError(t, err)
	_, err = service.AddTextDocument(ctx, "Recipes", "cooking pasta", nil)
	require.NoError(t, err)

	sources, err := service.SearchKnowledge(ctx, "query about go", 2)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "Go Guide", sources[0].Title)
	assert.Equal(t, "go basics", sources[0].Text)
	assert.Greater(t, sources[0].Similarity, sources[1].Similarity)
}

func TestKnowledgeService_SearchSkipsDeletedDocuments(t *testing.T) {
	ctx := context.Background()
	service, docStore, _ := newTestKnowledgeService(&mockEmbedder{}, nil)

	id, err := service.AddTextDocument(ctx, "Doomed", "some content", nil)
	require.NoError(t, err)

	// Delete only the document, leaving the embedding orphaned.
	require.NoError(t, docStore.Delete(ctx, id))

	sources, err := service.SearchKnowledge(ctx, "some content", 5)
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestKnowledgeService_SearchPopulatesPageNumbers(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestKnowledgeService(&mockEmbedder{}, nil)

	pdf := &mockPDFExtractor{extraction: domain.PDFExtraction{
		Pages: []domain.PDFPage{
			{PageNumber: 3, Text: "important findings", WordCount: 2},
		},
		TotalPages: 3,
		Success:    true,
	}}
	service.SetPDFExtractor(pdf)

	_, err := service.AddPDFDocument(ctx, bytes.NewReader(nil), 0, "paper.pdf", "", nil)
	require.NoError(t, err)

	sources, err := service.SearchKnowledge(ctx, "findings", 1)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, 3, sources[0].PageNumber)
	assert.Equal(t, "paper", sources[0].Title)
}

func TestKnowledgeService_SearchEmptyQuery(t *testing.T) {
	embedder := &mockEmbedder{}
	service, _, _ := newTestKnowledgeService(embedder, nil)

	sources, err := service.SearchKnowledge(context.Background(), "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, sources)
	assert.Zero(t, embedder.embedCalls)
}

func TestKnowledgeService_AddPDFDocumentFallback(t *testing.T) {
	ctx := context.Background()
	service, docStore, _ := newTestKnowledgeService(&mockEmbedder{}, nil)

	// No extractor configured at all.
	id, err := service.AddPDFDocument(ctx, bytes.NewReader(nil), 0, "scan.pdf", "", nil)
	require.NoError(t, err)

	doc, err := docStore.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentTypePDF, doc.Type)
	assert.Equal(t, "scan", doc.Title)
	assert.Contains(t, doc.Content, "PDF Text Extraction Failed")
}

func TestKnowledgeService_AddPDFDocumentExtractionError(t *testing.T) {
	ctx := context.Background()
	service, docStore, _ := newTestKnowledgeService(&mockEmbedder{}, nil)
	service.SetPDFExtractor(&mockPDFExtractor{extraction: domain.PDFExtraction{Success: false}})

	id, err := service.AddPDFDocument(ctx, bytes.NewReader(nil), 0, "broken.pdf", "My Paper", nil)
	require.NoError(t, err)

	doc, err := docStore.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "My Paper", doc.Title)
	assert.Contains(t, doc.Content, "PDF Text Extraction Failed")
}

func TestKnowledgeService_AddPDFDocumentPageMarkers(t *testing.T) {
	ctx := context.Background()
	service, docStore, _ := newTestKnowledgeService(&mockEmbedder{}, nil)
	service.SetPDFExtractor(&mockPDFExtractor{extraction: domain.PDFExtraction{
		Pages: []domain.PDFPage{
			{PageNumber: 1, Text: "first page", WordCount: 2},
			{PageNumber: 2, Text: "   ", WordCount: 0},
			{PageNumber: 3, Text: "third page", WordCount: 2},
		},
		TotalPages: 3,
		Success:    true,
	}})

	id, err := service.AddPDFDocument(ctx, bytes.NewReader(nil), 0, "doc.pdf", "", nil)
	require.NoError(t, err)

	doc, err := docStore.Get(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, doc.Content, "[Page 1]\nfirst page")
	assert.Contains(t, doc.Content, "[Page 3]\nthird page")
	assert.NotContains(t, doc.Content, "[Page 2]")
}

func TestKnowledgeService_DeleteKnowledgeItem(t *testing.T) {
	ctx := context.Background()
	service, docStore, vectorStore := newTestKnowledgeService(&mockEmbedder{}, nil)

	id, err := service.AddTextDocument(ctx, "Doc", "content", nil)
	require.NoError(t, err)

	require.NoError(t, service.DeleteKnowledgeItem(ctx, id))

	_, err = docStore.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	has, err := vectorStore.HasAny(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestKnowledgeService_HasKnowledgeContentAndClearAll(t *testing.T) {
	ctx := context.Background()
	service, _, vectorStore := newTestKnowledgeService(&mockEmbedder{}, nil)

	has, err := service.HasKnowledgeContent(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = service.AddTextDocument(ctx, "Doc", "content", nil)
	require.NoError(t, err)

	has, err = service.HasKnowledgeContent(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, service.ClearAll(ctx))

	has, err = service.HasKnowledgeContent(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	hasVectors, err := vectorStore.HasAny(ctx)
	require.NoError(t, err)
	assert.False(t, hasVectors)
}

func TestKnowledgeService_GetAllAndGetItem(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestKnowledgeService(&mockEmbedder{}, nil)

	id, err := service.AddTextDocument(ctx, "Only", "content", nil)
	require.NoError(t, err)

	docs, err := service.GetAllKnowledge(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Only", docs[0].Title)

	doc, err := service.GetKnowledgeItem(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Only", doc.Title)

	_, err = service.GetKnowledgeItem(ctx, "knowledge-missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
