// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"fmt"
	"time"

	ollamaembed "github.com/sidenote-labs/sidenote/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/sidenote-labs/sidenote/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/sidenote-labs/sidenote/internal/adapters/driven/llm/ollama"
	"github.com/sidenote-labs/sidenote/internal/core/ports/driven"
)

// Provider identifies an embedding backend.
type Provider string

// Supported providers.
const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
)

// EmbeddingConfig selects and configures the embedding backend.
type EmbeddingConfig struct {
	// Provider is the backend to use (default: ollama).
	Provider Provider

	// BaseURL overrides the provider's default endpoint.
	BaseURL string

	// Model overrides the provider's default embedding model.
	Model string

	// APIKey authenticates hosted providers. Required for openai.
	APIKey string

	// Timeout is the per-request timeout (0 = provider default).
	Timeout time.Duration
}

// ModelConfig configures the language model backend. Generation runs
// against a local Ollama instance.
type ModelConfig struct {
	// BaseURL overrides the default Ollama endpoint.
	BaseURL string

	// Model overrides the default chat model.
	Model string

	// Timeout is the per-request timeout (0 = default).
	Timeout time.Duration
}

// NewEmbeddingService creates the embedding service for the configured
// provider. An empty provider defaults to ollama.
func NewEmbeddingService(cfg EmbeddingConfig) (driven.EmbeddingService, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOllama
	}

	switch provider {
	case ProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}), nil

	case ProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}

// NewLanguageModel creates the Ollama-backed language model.
func NewLanguageModel(cfg ModelConfig) driven.LanguageModel {
	return ollamallm.NewLanguageModel(ollamallm.Config{
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})
}
