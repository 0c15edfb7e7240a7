package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
	"github.com/sidenote-labs/sidenote/internal/core/ports/driven"
	"github.com/sidenote-labs/sidenote/internal/core/ports/driving"
	"github.com/sidenote-labs/sidenote/internal/logger"
)

// Ensure RAGService implements the interface.
var _ driving.ChatService = (*RAGService)(nil)

// RAGService answers chat turns, grounding them in the knowledge base
// when relevant sources exist. A chat turn never fails: every model or
// retrieval problem is downgraded to a fixed response template.
type RAGService struct {
	model     driven.LanguageModel
	knowledge driving.KnowledgeService
	settings  *SettingsService
	history   *History

	mu      sync.Mutex
	session driven.ModelSession
}

// NewRAGService creates a RAG service. The model parameter is optional
// (can be nil); without it every chat turn gets the fixed
// unavailability message.
func NewRAGService(
	model driven.LanguageModel,
	knowledge driving.KnowledgeService,
	settings *SettingsService,
	history *History,
) *RAGService {
	return &RAGService{
		model:     model,
		knowledge: knowledge,
		settings:  settings,
		history:   history,
	}
}

// InitSession checks model availability and opens a session seeded
// with the system message and recent conversation history.
func (s *RAGService) InitSession(ctx context.Context) error {
	if s.model == nil {
		return fmt.Errorf("init session: %w", domain.ErrModelUnavailable)
	}

	availability, err := s.model.Availability(ctx)
	if err != nil {
		return fmt.Errorf("init session: %w: %w", domain.ErrModelUnavailable, err)
	}
	if availability != domain.ModelAvailable {
		return fmt.Errorf("init session: %w: model is %s", domain.ErrModelUnavailable, availability)
	}

	prompts := []domain.ChatMessage{{Role: domain.RoleSystem, Content: systemMessage}}
	prompts = append(prompts, s.history.Recent(s.currentSettings().MaxRecentMessages)...)

	session, err := s.model.CreateSession(ctx, driven.SessionOptions{InitialPrompts: prompts})
	if err != nil {
		return fmt.Errorf("init session: %w", err)
	}

	s.mu.Lock()
	if s.session != nil {
		_ = s.session.Close()
	}
	s.session = session
	s.mu.Unlock()

	logger.Info("Model session initialized with %d seed prompts", len(prompts))
	return nil
}

// SessionReady reports whether a model session is open.
func (s *RAGService) SessionReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil
}

// ModelAvailability reports the language model capability state.
func (s *RAGService) ModelAvailability(ctx context.Context) domain.ModelAvailability {
	if s.model == nil {
		return domain.ModelUnavailable
	}
	availability, err := s.model.Availability(ctx)
	if err != nil {
		logger.Warn("Model availability check failed: %v", err)
		return domain.ModelUnavailable
	}
	return availability
}

// GenerateResponse runs one chat turn. The returned content is always
// usable text; sources are set only for grounded answers.
func (s *RAGService) GenerateResponse(ctx context.Context, query string) domain.RAGResponse {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.RAGResponse{}
	}

	logger.Section("Chat Turn")
	logger.Debug("Query: %q", query)

	s.record(domain.RoleUser, query)

	session := s.ensureSession(ctx)
	if session == nil {
		response := domain.RAGResponse{Content: modelUnavailableResponse(query)}
		s.record(domain.RoleAssistant, response.Content)
		return response
	}

	settings := s.currentSettings()
	sources := s.relevantSources(ctx, query, settings)

	var response domain.RAGResponse
	if len(sources) == 0 {
		logger.Info("No relevant knowledge, generating generic response")
		response.Content = s.promptOrFallback(ctx, session, genericPrompt(query), settings)
	} else {
		logger.Info("Generating grounded response with %d sources", len(sources))
		content, err := s.prompt(ctx, session, ragPrompt(query, sources), settings)
		if err != nil {
			// Grounded generation failed; retry without context before
			// giving up on the turn.
			logger.Warn("Grounded generation failed, falling back to generic: %v", err)
			response.Content = s.promptOrFallback(ctx, session, genericPrompt(query), settings)
		} else {
			response.Content = content
			response.Sources = sources
		}
	}

	s.record(domain.RoleAssistant, response.Content)
	return response
}

// History returns the recorded conversation turns, oldest first.
func (s *RAGService) History(ctx context.Context) []domain.ChatMessage {
	return s.history.Messages()
}

// ClearHistory discards the recorded conversation.
func (s *RAGService) ClearHistory(ctx context.Context) error {
	return s.history.Clear()
}

// ensureSession returns the open session, initializing one on demand.
// Returns nil when no session can be opened.
func (s *RAGService) ensureSession(ctx context.Context) driven.ModelSession {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()
	if session != nil {
		return session
	}

	if err := s.InitSession(ctx); err != nil {
		logger.Warn("Session not available: %v", err)
		return nil
	}

	s.mu.Lock()
	session = s.session
	s.mu.Unlock()
	return session
}

// relevantSources retrieves sources above the similarity threshold.
// The empty-knowledge-base fast path skips retrieval entirely, so no
// embedding work happens before the first document is added. Every
// retrieval failure degrades to a generic answer.
func (s *RAGService) relevantSources(ctx context.Context, query string, settings domain.Settings) []domain.KnowledgeSource {
	hasKnowledge, err := s.knowledge.HasKnowledgeContent(ctx)
	if err != nil {
		logger.Warn("Knowledge base probe failed: %v", err)
		return nil
	}
	if !hasKnowledge {
		logger.Debug("Knowledge base is empty, skipping retrieval")
		return nil
	}

	sources, err := s.knowledge.SearchKnowledge(ctx, query, settings.MaxSources)
	if err != nil {
		logger.Warn("Knowledge search failed: %v", err)
		return nil
	}

	filtered := sources[:0]
	for _, source := range sources {
		if source.Similarity >= settings.MinSimilarityThreshold {
			filtered = append(filtered, source)
		}
	}
	logger.Debug("%d of %d sources above threshold %.2f", len(filtered), len(sources), settings.MinSimilarityThreshold)
	return filtered
}

// prompt sends one user message through the session.
func (s *RAGService) prompt(ctx context.Context, session driven.ModelSession, text string, settings domain.Settings) (string, error) {
	return session.Prompt(ctx,
		[]domain.ChatMessage{{Role: domain.RoleUser, Content: text}},
		driven.PromptOptions{Temperature: settings.Temperature, TopK: settings.TopK},
	)
}

// promptOrFallback sends a prompt and substitutes the fixed error
// template on failure.
func (s *RAGService) promptOrFallback(ctx context.Context, session driven.ModelSession, text string, settings domain.Settings) string {
	content, err := s.prompt(ctx, session, text, settings)
	if err != nil {
		logger.Error("Model invocation failed: %v", err)
		return errorResponse
	}
	return content
}

// currentSettings returns live settings, or defaults without a
// settings service.
func (s *RAGService) currentSettings() domain.Settings {
	if s.settings == nil {
		return domain.DefaultSettings()
	}
	return s.settings.Get()
}

// record appends a turn to history. History failures are logged, not
// surfaced; losing a history write must not fail the chat turn.
func (s *RAGService) record(role, content string) {
	if err := s.history.Add(domain.ChatMessage{Role: role, Content: content, Timestamp: time.Now()}); err != nil {
		logger.Warn("Could not record %s turn: %v", role, err)
	}
}
