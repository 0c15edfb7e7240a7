// Package sqlite provides a SQLite-based implementation of the
// document and vector store ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. It implements
// both store interfaces through a single database connection:
//
//   - DocumentStore: knowledge document persistence
//   - VectorStore: chunk embedding persistence and similarity search
//
// # Schema
//
// The database schema is managed through versioned migrations stored in
// the migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.sidenote/data/knowledge.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
