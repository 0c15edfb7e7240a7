package driven

import (
	"context"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
)

// LanguageModel is the opaque, possibly-unavailable chat generation
// capability. The core handles every availability state and never
// assumes synchronous readiness.
type LanguageModel interface {
	// Availability reports the current state of the model capability.
	Availability(ctx context.Context) (domain.ModelAvailability, error)

	// CreateSession opens a conversation session seeded with the given
	// initial prompts. Fails wrapping domain.ErrModelUnavailable when
	// the model is not ready.
	CreateSession(ctx context.Context, opts SessionOptions) (ModelSession, error)
}

// SessionOptions configures a new model session.
type SessionOptions struct {
	// InitialPrompts seed the session's conversation context,
	// typically the system message plus recent history.
	InitialPrompts []domain.ChatMessage
}

// ModelSession is one open conversation with the language model.
type ModelSession interface {
	// Prompt sends messages and returns the model's reply text.
	// Failure wraps domain.ErrModelInvocation.
	Prompt(ctx context.Context, messages []domain.ChatMessage, opts PromptOptions) (string, error)

	// Close releases the session.
	Close() error
}

// PromptOptions configures generation for one prompt.
type PromptOptions struct {
	// Temperature controls randomness (0 = use model default).
	Temperature float64

	// TopK limits sampling to the K most likely tokens (0 = default).
	TopK int
}
