package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
	"github.com/sidenote-labs/sidenote/internal/core/ports/driven"
	"github.com/sidenote-labs/sidenote/internal/core/ports/driving"
	"github.com/sidenote-labs/sidenote/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// settingsKey is the key-value storage key for user settings.
const settingsKey = "settings"

// SettingsService manages user settings: model generation parameters
// and retrieval/chunking parameters. Settings are cached in memory and
// persisted as a JSON document in key-value storage, which an outside
// collaborator (the settings UI) may also write.
type SettingsService struct {
	store driven.KeyValueStore

	mu       sync.RWMutex
	current  domain.Settings
	onChange []func(domain.Settings)
}

// NewSettingsService creates a settings service with defaults applied
// until Load is called.
func NewSettingsService(store driven.KeyValueStore) *SettingsService {
	return &SettingsService{
		store:   store,
		current: domain.DefaultSettings(),
	}
}

// OnChange registers a callback invoked with the new settings after
// every successful Load or Update. Not safe to call concurrently with
// Load or Update.
func (s *SettingsService) OnChange(fn func(domain.Settings)) {
	s.onChange = append(s.onChange, fn)
}

// Load reads settings from storage. Missing or invalid fields are
// normalized to defaults; a corrupt document starts from defaults.
func (s *SettingsService) Load(ctx context.Context) (domain.Settings, error) {
	values, err := s.store.Get(settingsKey)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	loaded := domain.Settings{}
	if raw, ok := values[settingsKey]; ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
			logger.Warn("Stored settings are corrupt, using defaults: %v", err)
			loaded = domain.Settings{}
		}
	}

	normalized := loaded.Normalize()

	s.mu.Lock()
	s.current = normalized
	s.mu.Unlock()

	s.notify(normalized)
	logger.Debug("Settings loaded: temperature=%.2f topK=%d maxSources=%d threshold=%.2f",
		normalized.Temperature, normalized.TopK, normalized.MaxSources, normalized.MinSimilarityThreshold)
	return normalized, nil
}

// Get returns the current in-memory settings.
func (s *SettingsService) Get() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update validates, persists and applies new settings.
func (s *SettingsService) Update(ctx context.Context, settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.store.Set(map[string]string{settingsKey: string(data)}); err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}

	s.mu.Lock()
	s.current = settings
	s.mu.Unlock()

	s.notify(settings)
	return nil
}

func (s *SettingsService) notify(settings domain.Settings) {
	for _, fn := range s.onChange {
		fn(settings)
	}
}
