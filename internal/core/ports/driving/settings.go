package driving

import (
	"context"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
)

// SettingsService loads, validates and persists user settings.
type SettingsService interface {
	// Load reads settings from storage, normalizing missing or invalid
	// fields to defaults. Called once at startup and again when the
	// backing storage changes externally.
	Load(ctx context.Context) (domain.Settings, error)

	// Get returns the current in-memory settings.
	Get() domain.Settings

	// Update validates, applies and persists new settings.
	// Returns domain.ErrInvalidInput when an invariant is violated.
	Update(ctx context.Context, settings domain.Settings) error
}
