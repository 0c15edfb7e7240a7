package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
)

// setupTestServices injects stub services and returns a cleanup func.
func setupTestServices() func() {
	knowledgeService = newStubKnowledge()
	chatService = &stubChat{}
	settingsService = &stubSettings{settings: domain.DefaultSettings()}

	return func() {
		knowledgeService = nil
		chatService = nil
		settingsService = nil
	}
}

type stubKnowledge struct {
	docs    []domain.Document
	deleted []string
	cleared bool
}

func newStubKnowledge() *stubKnowledge {
	return &stubKnowledge{
		docs: []domain.Document{
			{
				ID:         "knowledge-1",
				Title:      "Go Concurrency",
				Content:    "Goroutines are lightweight threads.",
				Type:       domain.DocumentTypeText,
				Chunks:     []string{"Goroutines are lightweight threads."},
				ChunkCount: 1,
				CreatedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			},
		},
	}
}

func (s *stubKnowledge) AddTextDocument(_ context.Context, title, content string, onProgress domain.ProgressFunc) (string, error) {
	if onProgress != nil {
		onProgress(domain.IngestProgress{Percentage: 100, Status: "Text processing complete!"})
	}
	id := fmt.Sprintf("knowledge-%d", len(s.docs)+1)
	s.docs = append(s.docs, domain.Document{ID: id, Title: title, Content: content, Type: domain.DocumentTypeText})
	return id, nil
}

func (s *stubKnowledge) AddPDFDocument(_ context.Context, _ io.ReaderAt, _ int64, filename, title string, onProgress domain.ProgressFunc) (string, error) {
	if onProgress != nil {
		onProgress(domain.IngestProgress{Percentage: 100, Status: "PDF processing complete!"})
	}
	if title == "" {
		title = filename
	}
	id := fmt.Sprintf("knowledge-%d", len(s.docs)+1)
	s.docs = append(s.docs, domain.Document{ID: id, Title: title, Type: domain.DocumentTypePDF})
	return id, nil
}

func (s *stubKnowledge) DeleteKnowledgeItem(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubKnowledge) SearchKnowledge(_ context.Context, query string, _ int) ([]domain.KnowledgeSource, error) {
	if query == "nothing" {
		return nil, nil
	}
	return []domain.KnowledgeSource{
		{KnowledgeID: "knowledge-1", Title: "Go Concurrency", ChunkIndex: 0, Text: "Goroutines are lightweight threads.", Similarity: 0.91},
	}, nil
}

func (s *stubKnowledge) HasKnowledgeContent(context.Context) (bool, error) {
	return len(s.docs) > 0, nil
}

func (s *stubKnowledge) GetAllKnowledge(context.Context) ([]domain.Document, error) {
	return s.docs, nil
}

func (s *stubKnowledge) GetKnowledgeItem(_ context.Context, id string) (*domain.Document, error) {
	for i := range s.docs {
		if s.docs[i].ID == id {
			return &s.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubKnowledge) ClearAll(context.Context) error {
	s.cleared = true
	s.docs = nil
	return nil
}

type stubChat struct {
	historyCleared bool
}

func (s *stubChat) InitSession(context.Context) error { return nil }

func (s *stubChat) SessionReady() bool { return true }

func (s *stubChat) ModelAvailability(context.Context) domain.ModelAvailability {
	return domain.ModelAvailable
}

func (s *stubChat) GenerateResponse(_ context.Context, query string) domain.RAGResponse {
	return domain.RAGResponse{
		Content: "Answer to: " + query,
		Sources: []domain.KnowledgeSource{
			{KnowledgeID: "knowledge-1", Title: "Go Concurrency", Similarity: 0.91},
		},
	}
}

func (s *stubChat) History(context.Context) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hello"},
		{Role: domain.RoleAssistant, Content: "hi there"},
	}
}

func (s *stubChat) ClearHistory(context.Context) error {
	s.historyCleared = true
	return nil
}

type stubSettings struct {
	settings domain.Settings
	updated  *domain.Settings
}

func (s *stubSettings) Load(context.Context) (domain.Settings, error) {
	return s.settings, nil
}

func (s *stubSettings) Get() domain.Settings { return s.settings }

func (s *stubSettings) Update(_ context.Context, settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.settings = settings
	s.updated = &settings
	return nil
}
