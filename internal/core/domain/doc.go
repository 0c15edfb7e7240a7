// Package domain contains the core entities and business rules of the
// knowledge base: documents, chunk embeddings, retrieval results, chat
// turns, and user settings.
//
// # Import Rules
//
//   - Can Import: standard library only
//   - Cannot Import: ports, services, adapters
package domain
