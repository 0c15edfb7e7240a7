package services

import (
	"context"
	"io"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
	"github.com/sidenote-labs/sidenote/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing.
// Vectors are looked up by exact text; unknown texts get a default
// vector so every embed succeeds deterministically.
type mockEmbedder struct {
	vectors    map[string][]float32
	initErr    error
	embedErr   error
	ready      bool
	embedCalls int
	initCalls  int
}

func (m *mockEmbedder) Init(_ context.Context) error {
	m.initCalls++
	if m.initErr != nil {
		return m.initErr
	}
	m.ready = true
	return nil
}

func (m *mockEmbedder) Ready() bool {
	return m.ready
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if vec, ok := m.vectors[text]; ok {
		return vec, nil
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int   { return 3 }
func (m *mockEmbedder) ModelName() string { return "mock-embedder" }
func (m *mockEmbedder) Close() error      { return nil }

// mockSession implements driven.ModelSession for testing.
type mockSession struct {
	reply     string
	promptErr error
	prompts   [][]domain.ChatMessage
	closed    bool
}

func (m *mockSession) Prompt(_ context.Context, messages []domain.ChatMessage, _ driven.PromptOptions) (string, error) {
	m.prompts = append(m.prompts, messages)
	if m.promptErr != nil {
		return "", m.promptErr
	}
	return m.reply, nil
}

func (m *mockSession) Close() error {
	m.closed = true
	return nil
}

// lastPrompt returns the content of the final message sent to the
// session, empty if nothing was sent.
func (m *mockSession) lastPrompt() string {
	if len(m.prompts) == 0 {
		return ""
	}
	last := m.prompts[len(m.prompts)-1]
	if len(last) == 0 {
		return ""
	}
	return last[len(last)-1].Content
}

// mockModel implements driven.LanguageModel for testing.
type mockModel struct {
	availability domain.ModelAvailability
	availErr     error
	createErr    error
	session      *mockSession
	createCalls  int
	seedPrompts  []domain.ChatMessage
}

func (m *mockModel) Availability(_ context.Context) (domain.ModelAvailability, error) {
	if m.availErr != nil {
		return domain.ModelUnavailable, m.availErr
	}
	return m.availability, nil
}

func (m *mockModel) CreateSession(_ context.Context, opts driven.SessionOptions) (driven.ModelSession, error) {
	m.createCalls++
	m.seedPrompts = opts.InitialPrompts
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.session, nil
}

// mockPDFExtractor implements driven.PDFExtractor for testing.
type mockPDFExtractor struct {
	extraction domain.PDFExtraction
}

func (m *mockPDFExtractor) Extract(_ context.Context, _ io.ReaderAt, _ int64, _ string) domain.PDFExtraction {
	return m.extraction
}

// stubChunker implements TextChunker with a fixed chunk list, for
// tests that need an exact chunk count.
type stubChunker struct {
	chunks    []string
	size      int
	overlap   int
	paramSets int
}

func (s *stubChunker) Chunk(text string) []string {
	if len(s.chunks) > 0 {
		return s.chunks
	}
	return []string{text}
}

func (s *stubChunker) SetParameters(chunkSize, overlap int) {
	s.size = chunkSize
	s.overlap = overlap
	s.paramSets++
}
