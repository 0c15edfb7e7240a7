package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed input or a violated invariant,
	// such as mismatched embedding/text lengths or bad settings values.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInitialization indicates a component backend failed to load.
	// The component stays unusable until Init is retried successfully.
	ErrInitialization = errors.New("initialization failed")

	// ErrNotInitialized indicates a call before Init completed.
	// This is an ordering bug in the caller, not a runtime condition.
	ErrNotInitialized = errors.New("not initialized")

	// ErrIngestion indicates a failure mid-way through the ingestion
	// pipeline. Partially written state may remain (document stored,
	// embeddings incomplete) until the next successful pass or deletion.
	ErrIngestion = errors.New("ingestion failed")

	// ErrRetrieval indicates query embedding or similarity search failed.
	// The chat path recovers by falling back to a generic response.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrModelInvocation indicates the language model call failed or
	// timed out. The chat path recovers with a fixed apology template.
	ErrModelInvocation = errors.New("model invocation failed")

	// ErrModelUnavailable indicates the language model capability is not
	// ready (not downloaded, still downloading, or absent entirely).
	ErrModelUnavailable = errors.New("language model unavailable")
)
