package domain

import "fmt"

// Default settings values. These double as the fallback table used by
// Normalize when a stored value is missing or out of range.
const (
	// DefaultTemperature is the default sampling temperature.
	DefaultTemperature = 0.7

	// DefaultTopK is the default top-K sampling parameter.
	DefaultTopK = 40

	// MaxTemperature caps user-configured temperature.
	MaxTemperature = 2.0

	// MaxTopK caps user-configured top-K.
	MaxTopK = 100

	// DefaultMaxRecentMessages bounds the conversation context sent to
	// the model, to respect its context window.
	DefaultMaxRecentMessages = 10

	// DefaultMaxSources is the default retrieval result budget.
	DefaultMaxSources = 3

	// DefaultMinSimilarityThreshold filters weak retrieval matches.
	DefaultMinSimilarityThreshold = 0.3

	// DefaultChunkSize is the default chunk size in characters.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the default overlap between chunks.
	DefaultChunkOverlap = 200

	// MaxChunkSize bounds chunk size for embedding performance.
	MaxChunkSize = 10000
)

// Settings holds all user-configurable parameters: language model
// generation options and RAG retrieval/chunking options. Loaded at
// startup, mutated by user action, persisted to key-value storage.
type Settings struct {
	// Temperature is the model sampling temperature, (0, MaxTemperature].
	Temperature float64 `json:"temperature"`

	// TopK is the model top-K sampling parameter, (0, MaxTopK].
	TopK int `json:"topK"`

	// MaxRecentMessages is how many conversation turns are kept when
	// building model context.
	MaxRecentMessages int `json:"maxRecentMessages"`

	// MaxSources is the maximum number of knowledge sources retrieved
	// per query.
	MaxSources int `json:"maxSources"`

	// MinSimilarityThreshold is the minimum cosine similarity, in
	// [0, 1], for a source to be used in a grounded answer.
	MinSimilarityThreshold float64 `json:"minSimilarityThreshold"`

	// ChunkSize is the chunker's target chunk size in characters.
	ChunkSize int `json:"chunkSize"`

	// ChunkOverlap is the chunker's overlap budget in characters.
	ChunkOverlap int `json:"chunkOverlap"`
}

// DefaultSettings returns settings with all defaults applied.
func DefaultSettings() Settings {
	return Settings{
		Temperature:            DefaultTemperature,
		TopK:                   DefaultTopK,
		MaxRecentMessages:      DefaultMaxRecentMessages,
		MaxSources:             DefaultMaxSources,
		MinSimilarityThreshold: DefaultMinSimilarityThreshold,
		ChunkSize:              DefaultChunkSize,
		ChunkOverlap:           DefaultChunkOverlap,
	}
}

// Normalize replaces missing or out-of-range fields with their
// defaults and returns the result. This is the single fallback chain
// for values loaded from storage or supplied by the UI collaborator;
// callers never apply per-field fallbacks themselves.
func (s Settings) Normalize() Settings {
	def := DefaultSettings()

	if s.Temperature <= 0 || s.Temperature > MaxTemperature {
		s.Temperature = def.Temperature
	}
	if s.TopK <= 0 || s.TopK > MaxTopK {
		s.TopK = def.TopK
	}
	if s.MaxRecentMessages <= 0 {
		s.MaxRecentMessages = def.MaxRecentMessages
	}
	if s.MaxSources < 0 {
		s.MaxSources = def.MaxSources
	}
	if s.MinSimilarityThreshold < 0 || s.MinSimilarityThreshold > 1 {
		s.MinSimilarityThreshold = def.MinSimilarityThreshold
	}
	if s.ChunkSize <= 0 || s.ChunkSize > MaxChunkSize {
		s.ChunkSize = def.ChunkSize
	}
	if s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		s.ChunkOverlap = def.ChunkOverlap
		if s.ChunkOverlap >= s.ChunkSize {
			s.ChunkOverlap = s.ChunkSize / 4
		}
	}

	return s
}

// Validate reports the first violated settings invariant, or nil.
func (s Settings) Validate() error {
	if s.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be greater than 0", ErrInvalidInput)
	}
	if s.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: chunk size must not exceed %d characters", ErrInvalidInput, MaxChunkSize)
	}
	if s.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk overlap cannot be negative", ErrInvalidInput)
	}
	if s.ChunkOverlap >= s.ChunkSize {
		return fmt.Errorf("%w: chunk overlap must be less than chunk size", ErrInvalidInput)
	}
	if s.MinSimilarityThreshold < 0 || s.MinSimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity threshold must be in [0, 1]", ErrInvalidInput)
	}
	if s.MaxSources < 0 {
		return fmt.Errorf("%w: max sources cannot be negative", ErrInvalidInput)
	}
	if s.Temperature <= 0 || s.Temperature > MaxTemperature {
		return fmt.Errorf("%w: temperature must be in (0, %v]", ErrInvalidInput, MaxTemperature)
	}
	if s.TopK <= 0 || s.TopK > MaxTopK {
		return fmt.Errorf("%w: topK must be in (0, %d]", ErrInvalidInput, MaxTopK)
	}
	return nil
}
