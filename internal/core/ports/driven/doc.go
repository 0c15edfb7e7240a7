// Package driven defines the interfaces that core calls OUT to
// infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal
// architecture. Core services depend on these interfaces, and
// infrastructure adapters implement them.
//
// # Required Interfaces
//
//   - DocumentStore: document persistence
//   - VectorStore: chunk embedding persistence and similarity search
//   - EmbeddingService: text to vector conversion
//   - KeyValueStore: settings and conversation history persistence
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LanguageModel: chat generation. Without it, every chat turn gets
//     a fixed unavailability message.
//   - PDFExtractor: PDF ingestion. Without it, PDF uploads store the
//     fixed extraction-failure document.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: any adapter package
package driven
