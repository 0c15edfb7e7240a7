package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
	"github.com/sidenote-labs/sidenote/internal/core/ports/driven"
	"github.com/sidenote-labs/sidenote/internal/logger"
)

// historyKey is the key-value storage key for conversation history.
const historyKey = "chat.history"

// History records conversation turns and persists them to key-value
// storage as a JSON array. The full conversation is kept; callers
// bound the model context with Recent.
type History struct {
	store driven.KeyValueStore

	mu       sync.RWMutex
	messages []domain.ChatMessage
	loaded   bool
}

// NewHistory creates a history backed by the given store.
func NewHistory(store driven.KeyValueStore) *History {
	return &History{store: store}
}

// Load reads persisted history into memory. Corrupt or missing data
// starts an empty conversation rather than failing.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	values, err := h.store.Get(historyKey)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	h.messages = nil
	h.loaded = true

	raw, ok := values[historyKey]
	if !ok || raw == "" {
		return nil
	}

	if err := json.Unmarshal([]byte(raw), &h.messages); err != nil {
		logger.Warn("Discarding corrupt conversation history: %v", err)
		h.messages = nil
	}
	return nil
}

// Add appends a turn and persists the conversation.
func (h *History) Add(msg domain.ChatMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ensureLoaded()
	h.messages = append(h.messages, msg)
	return h.persist()
}

// Messages returns a copy of all recorded turns, oldest first.
func (h *History) Messages() []domain.ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ensureLoaded()
	out := make([]domain.ChatMessage, len(h.messages))
	copy(out, h.messages)
	return out
}

// Recent returns a copy of the last n turns, oldest first.
func (h *History) Recent(n int) []domain.ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ensureLoaded()
	if n <= 0 || n > len(h.messages) {
		n = len(h.messages)
	}
	out := make([]domain.ChatMessage, n)
	copy(out, h.messages[len(h.messages)-n:])
	return out
}

// Clear discards the conversation, in memory and in storage.
func (h *History) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = nil
	h.loaded = true
	return h.persist()
}

// ensureLoaded lazily loads persisted history on first use.
// Caller must hold the write lock.
func (h *History) ensureLoaded() {
	if h.loaded {
		return
	}
	h.loaded = true

	values, err := h.store.Get(historyKey)
	if err != nil {
		logger.Warn("Could not load conversation history: %v", err)
		return
	}
	if raw, ok := values[historyKey]; ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &h.messages); err != nil {
			logger.Warn("Discarding corrupt conversation history: %v", err)
			h.messages = nil
		}
	}
}

// persist writes the conversation to storage.
// Caller must hold the write lock.
func (h *History) persist() error {
	data, err := json.Marshal(h.messages)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := h.store.Set(map[string]string{historyKey: string(data)}); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}
