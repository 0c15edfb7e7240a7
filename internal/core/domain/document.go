package domain

import "time"

// DocumentType identifies how a knowledge document was ingested.
type DocumentType string

// Supported document types.
const (
	// DocumentTypeText is pasted or typed text content.
	DocumentTypeText DocumentType = "text"

	// DocumentTypePDF is content extracted from an uploaded PDF.
	DocumentTypePDF DocumentType = "pdf"
)

// IsValid returns true if the document type is recognised.
func (t DocumentType) IsValid() bool {
	return t == DocumentTypeText || t == DocumentTypePDF
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// Document is a knowledge base entry. It is created on ingestion and
// immutable afterwards except for full deletion.
type Document struct {
	// ID is the unique identifier, assigned at creation
	// (prefixed random token, unique across the store).
	ID string

	// Title is the human-readable title.
	Title string

	// Content is the full text content before chunking.
	Content string

	// Type records how the document was ingested.
	Type DocumentType

	// Chunks is the ordered chunk sequence produced at ingestion time.
	Chunks []string

	// ChunkCount is len(Chunks), persisted for display without
	// deserialising the chunk list.
	ChunkCount int

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// EmbeddingRecord is one stored chunk embedding. One record exists per
// chunk; records are deleted en masse when their parent document is
// deleted and must never outlive it.
type EmbeddingRecord struct {
	// ID is "<knowledgeID>_<chunkIndex>".
	ID string

	// KnowledgeID is a weak reference to the parent Document.ID.
	KnowledgeID string

	// ChunkIndex is the chunk's ordinal position within the document.
	ChunkIndex int

	// Embedding is the fixed-length vector for the chunk.
	Embedding []float32

	// Text duplicates the chunk content so results can be displayed
	// without joining back to the document.
	Text string
}

// KnowledgeSource is a ranked retrieval result. It is produced fresh
// per query and never persisted.
type KnowledgeSource struct {
	// KnowledgeID is the parent document id.
	KnowledgeID string

	// Title is joined from the parent document at query time.
	Title string

	// ChunkIndex is the matched chunk's position.
	ChunkIndex int

	// Text is the matched chunk content.
	Text string

	// Similarity is the cosine similarity to the query, in [-1, 1].
	Similarity float64

	// PageNumber is the source page for PDF-derived chunks, 0 if unknown.
	PageNumber int
}

// PDFPage is the text extracted from a single PDF page.
type PDFPage struct {
	// PageNumber is 1-based.
	PageNumber int

	// Text is the extracted page text.
	Text string

	// WordCount is the number of whitespace-separated words on the page.
	WordCount int
}

// PDFExtraction is the outcome of extracting text from a PDF file.
// Extraction failure is reported through Success/Err rather than a
// hard error so callers can store a fallback document instead.
type PDFExtraction struct {
	// Pages holds per-page text in page order.
	Pages []PDFPage

	// TotalPages is the page count of the source file.
	TotalPages int

	// Success is false when the file could not be processed at all.
	Success bool

	// Err describes the failure when Success is false.
	Err error
}

// IngestProgress reports ingestion pipeline progress to the caller.
type IngestProgress struct {
	// Percentage is overall completion, 0-100.
	Percentage int

	// Status is a human-readable stage description.
	Status string

	// ChunksProcessed is the number of chunks embedded so far.
	ChunksProcessed int
}

// ProgressFunc receives ingestion progress updates. May be nil.
type ProgressFunc func(IngestProgress)
