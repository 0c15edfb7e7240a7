package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/sidenote-labs/sidenote/internal/core/ports/driven"
	"github.com/sidenote-labs/sidenote/internal/logger"
)

// Ensure KeyValueStore implements the interfaces.
var (
	_ driven.KeyValueStore   = (*KeyValueStore)(nil)
	_ driven.KeyValueWatcher = (*KeyValueStore)(nil)
)

// KeyValueStore is a file-based key-value store using TOML. Values
// are opaque strings (JSON documents in practice).
type KeyValueStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]string
}

// NewKeyValueStore creates a new TOML-based key-value store.
// If configDir is empty, defaults to ~/.sidenote/config.toml.
func NewKeyValueStore(configDir string) (*KeyValueStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".sidenote")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &KeyValueStore{
		filePath: filepath.Join(configDir, "config.toml"),
		data:     make(map[string]string),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Get returns the values for the requested keys. Missing keys are
// absent from the result.
func (s *KeyValueStore) Get(keys ...string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]string, len(keys))
	for _, key := range keys {
		if value, ok := s.data[key]; ok {
			result[key] = value
		}
	}
	return result, nil
}

// Set stores every entry and persists immediately.
func (s *KeyValueStore) Set(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range values {
		s.data[key] = value
	}
	return s.save()
}

// Load reads the TOML file into memory. A missing file starts empty.
func (s *KeyValueStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]string)
			return nil
		}
		return fmt.Errorf("reading %s: %w", s.filePath, err)
	}

	loaded := make(map[string]string)
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing %s: %w", s.filePath, err)
	}

	s.data = loaded
	return nil
}

// Watch invokes onChange after the backing file is modified by an
// outside collaborator. The store reloads itself before notifying.
// Returns a stop function.
func (s *KeyValueStore) Watch(onChange func()) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	// Watch the directory, not the file: editors often replace the
	// file via rename, which would orphan a file-level watch.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching config directory: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.filePath {
					continue
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
					continue
				}
				if err := s.Load(); err != nil {
					logger.Warn("Could not reload %s: %v", s.filePath, err)
					continue
				}
				logger.Debug("Config file changed, reloaded")
				onChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Config watcher error: %v", err)
			}
		}
	}()

	stop := func() {
		watcher.Close()
		<-done
	}
	return stop, nil
}

// Path returns the configuration file path.
func (s *KeyValueStore) Path() string {
	return s.filePath
}

// save writes the store to the TOML file (caller must hold lock).
func (s *KeyValueStore) save() error {
	data, err := toml.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	// Write with restricted permissions
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", s.filePath, err)
	}
	return nil
}
