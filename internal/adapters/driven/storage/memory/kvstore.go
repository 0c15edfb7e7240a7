package memory

import (
	"sync"

	"github.com/sidenote-labs/sidenote/internal/core/ports/driven"
)

// Ensure KeyValueStore implements the interface.
var _ driven.KeyValueStore = (*KeyValueStore)(nil)

// KeyValueStore is an in-memory key-value store.
type KeyValueStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewKeyValueStore creates an empty in-memory key-value store.
func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{
		values: make(map[string]string),
	}
}

// Get returns the values for the requested keys. Missing keys are
// absent from the result.
func (s *KeyValueStore) Get(keys ...string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]string, len(keys))
	for _, key := range keys {
		if value, ok := s.values[key]; ok {
			result[key] = value
		}
	}
	return result, nil
}

// Set stores every entry in the map.
func (s *KeyValueStore) Set(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range values {
		s.values[key] = value
	}
	return nil
}

// Delete removes keys from the store. Used by tests to simulate an
// outside collaborator clearing state.
func (s *KeyValueStore) Delete(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.values, key)
	}
}
