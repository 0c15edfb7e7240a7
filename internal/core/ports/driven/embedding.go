package driven

import "context"

// EmbeddingService converts text into fixed-length vectors using a
// pretrained sentence-embedding model. Model load is expensive, so the
// service is stateful: Init must succeed exactly once before any embed
// call, and one instance is shared per process.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingService interface {
	// Init loads the model backend. Failure wraps
	// domain.ErrInitialization; the service is unusable until a retry
	// succeeds.
	Init(ctx context.Context) error

	// Ready reports whether Init has completed successfully.
	Ready() bool

	// Embed generates the vector for one text. Deterministic for a
	// given model version. Calling before Init wraps
	// domain.ErrNotInitialized.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates vectors for multiple texts. The result has
	// the same length and order as the input; implementations may
	// batch internally for throughput but must not reorder.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 384, 768).
	Dimensions() int

	// ModelName returns the name of the embedding model in use.
	ModelName() string

	// Close releases resources.
	Close() error
}
