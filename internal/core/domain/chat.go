package domain

import "time"

// Chat message roles, matching the language model API contract.
const (
	// RoleSystem is the initial instruction message.
	RoleSystem = "system"

	// RoleUser is a message authored by the user.
	RoleUser = "user"

	// RoleAssistant is a message authored by the model.
	RoleAssistant = "assistant"
)

// ChatMessage is a single turn in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`

	// Timestamp is when the message was recorded. Zero for the
	// synthetic system message.
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// ModelAvailability describes the state of the language model
// capability. The core must handle every state and never assume
// synchronous readiness.
type ModelAvailability string

// Language model availability states.
const (
	// ModelAvailable means the model is downloaded and ready.
	ModelAvailable ModelAvailability = "available"

	// ModelDownloadable means the backend is reachable but the model
	// must be downloaded before use.
	ModelDownloadable ModelAvailability = "downloadable"

	// ModelDownloading means a download is in progress.
	ModelDownloading ModelAvailability = "downloading"

	// ModelUnavailable means the capability is absent entirely.
	ModelUnavailable ModelAvailability = "unavailable"
)

// IsValid returns true if the availability state is recognised.
func (a ModelAvailability) IsValid() bool {
	switch a {
	case ModelAvailable, ModelDownloadable, ModelDownloading, ModelUnavailable:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (a ModelAvailability) String() string {
	return string(a)
}

// Description returns a human-readable description of the state.
func (a ModelAvailability) Description() string {
	switch a {
	case ModelAvailable:
		return "Model ready"
	case ModelDownloadable:
		return "Model not downloaded yet"
	case ModelDownloading:
		return "Model download in progress"
	case ModelUnavailable:
		return "Model unavailable"
	default:
		return "Unknown"
	}
}

// RAGResponse is the outcome of one chat turn.
type RAGResponse struct {
	// Content is the model's answer, or a fixed template when the
	// model failed or is unavailable.
	Content string

	// Sources are the knowledge base sources used for a grounded
	// answer, similarity-descending. Empty for generic answers.
	Sources []KnowledgeSource
}

// Grounded returns true if the response used knowledge base context.
func (r RAGResponse) Grounded() bool {
	return len(r.Sources) > 0
}
