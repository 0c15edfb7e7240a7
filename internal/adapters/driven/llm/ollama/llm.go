// Package ollama provides a language model adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
	"github.com/sidenote-labs/sidenote/internal/core/ports/driven"
	"github.com/sidenote-labs/sidenote/internal/logger"
)

// Ensure LanguageModel implements the interface.
var _ driven.LanguageModel = (*LanguageModel)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Ollama language model.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the chat model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LanguageModel provides chat generation using Ollama.
type LanguageModel struct {
	client  *http.Client
	baseURL string
	model   string
}

// chatRequest is the Ollama /api/chat request format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *options      `json:"options,omitempty"`
}

// chatMessage is the Ollama chat message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// options holds generation parameters.
type options struct {
	Temperature float64 `json:"temperature,omitempty"`
	TopK        int     `json:"top_k,omitempty"`
}

// chatResponse is the Ollama /api/chat response format.
type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// tagsResponse is the Ollama /api/tags response format.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewLanguageModel creates a new Ollama language model.
func NewLanguageModel(cfg Config) *LanguageModel {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LanguageModel{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Availability probes the Ollama instance. An unreachable backend is
// reported as unavailable, a reachable backend without the configured
// model as downloadable.
func (m *LanguageModel) Availability(ctx context.Context) (domain.ModelAvailability, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return domain.ModelUnavailable, fmt.Errorf("create request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		logger.Debug("Ollama unreachable at %s: %v", m.baseURL, err)
		return domain.ModelUnavailable, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ModelUnavailable, nil
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return domain.ModelUnavailable, fmt.Errorf("decode tags response: %w", err)
	}

	for _, model := range tags.Models {
		if model.Name == m.model || strings.HasPrefix(model.Name, m.model+":") {
			return domain.ModelAvailable, nil
		}
	}
	return domain.ModelDownloadable, nil
}

// CreateSession opens a conversation session seeded with the given
// initial prompts.
func (m *LanguageModel) CreateSession(ctx context.Context, opts driven.SessionOptions) (driven.ModelSession, error) {
	availability, err := m.Availability(ctx)
	if err != nil {
		return nil, fmt.Errorf("create session: %w: %w", domain.ErrModelUnavailable, err)
	}
	if availability != domain.ModelAvailable {
		return nil, fmt.Errorf("create session: %w: model is %s", domain.ErrModelUnavailable, availability)
	}

	seed := make([]chatMessage, 0, len(opts.InitialPrompts))
	for _, msg := range opts.InitialPrompts {
		seed = append(seed, chatMessage{Role: msg.Role, Content: msg.Content})
	}

	logger.Debug("Opened Ollama session (model=%s, %d seed prompts)", m.model, len(seed))
	return &session{model: m, seed: seed}, nil
}

// session is one open conversation. Ollama keeps no server-side
// session state, so the seed prompts are replayed on every request.
type session struct {
	model *LanguageModel
	seed  []chatMessage
}

var _ driven.ModelSession = (*session)(nil)

// Prompt sends messages and returns the model's reply text.
func (s *session) Prompt(ctx context.Context, messages []domain.ChatMessage, opts driven.PromptOptions) (string, error) {
	all := make([]chatMessage, 0, len(s.seed)+len(messages))
	all = append(all, s.seed...)
	for _, msg := range messages {
		all = append(all, chatMessage{Role: msg.Role, Content: msg.Content})
	}

	reqBody := chatRequest{
		Model:    s.model.model,
		Messages: all,
		Stream:   false,
	}
	if opts.Temperature > 0 || opts.TopK > 0 {
		reqBody.Options = &options{
			Temperature: opts.Temperature,
			TopK:        opts.TopK,
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %w", domain.ErrModelInvocation, err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.model.baseURL+"/api/chat",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", domain.ErrModelInvocation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.model.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: send request: %w", domain.ErrModelInvocation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", fmt.Errorf("%w: ollama error (status %d)", domain.ErrModelInvocation, resp.StatusCode)
		}
		return "", fmt.Errorf("%w: ollama error (status %d): %s", domain.ErrModelInvocation, resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", domain.ErrModelInvocation, err)
	}

	return chatResp.Message.Content, nil
}

// Close releases the session. Nothing is held server-side.
func (s *session) Close() error {
	return nil
}
