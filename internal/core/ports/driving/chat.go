package driving

import (
	"context"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
)

// ChatService answers user queries, grounding them in the knowledge
// base when relevant sources exist. A chat turn never fails: model and
// retrieval errors are downgraded to fixed response templates.
type ChatService interface {
	// InitSession checks model availability and opens a session seeded
	// with the system message and recent history. Safe to call again
	// after failure.
	InitSession(ctx context.Context) error

	// SessionReady reports whether a model session is open.
	SessionReady() bool

	// ModelAvailability reports the language model capability state.
	ModelAvailability(ctx context.Context) domain.ModelAvailability

	// GenerateResponse runs one chat turn: decide generic vs grounded,
	// prompt the model, record both turns in history. The returned
	// response content is always usable text.
	GenerateResponse(ctx context.Context, query string) domain.RAGResponse

	// History returns the recorded conversation turns, oldest first.
	History(ctx context.Context) []domain.ChatMessage

	// ClearHistory discards the recorded conversation.
	ClearHistory(ctx context.Context) error
}
