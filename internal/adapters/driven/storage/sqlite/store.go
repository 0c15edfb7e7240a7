package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/sidenote-labs/sidenote/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/sidenote-labs/sidenote/internal/core/domain"
	"github.com/sidenote-labs/sidenote/internal/core/ports/driven"
	"github.com/sidenote-labs/sidenote/internal/logger"
)

// Store is a unified SQLite-based storage that provides the document
// and vector store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.sidenote/data/knowledge.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sidenote", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "knowledge.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// VectorStore returns a VectorStore interface backed by this store.
func (s *Store) VectorStore() driven.VectorStore {
	return &vectorStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// Store inserts or replaces a document by id.
func (s *documentStore) Store(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("storing document: %w: missing id", domain.ErrInvalidInput)
	}

	chunksJSON, err := json.Marshal(doc.Chunks)
	if err != nil {
		return fmt.Errorf("marshalling chunks: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, content, type, chunks, chunk_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			type = excluded.type,
			chunks = excluded.chunks,
			chunk_count = excluded.chunk_count,
			created_at = excluded.created_at
	`, doc.ID, doc.Title, doc.Content, doc.Type.String(), string(chunksJSON), doc.ChunkCount, doc.CreatedAt.UTC())

	if err != nil {
		return fmt.Errorf("storing document: %w", err)
	}
	return nil
}

// Get retrieves a document by id.
func (s *documentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, content, type, chunks, chunk_count, created_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("getting document %q: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return doc, nil
}

// GetAll returns every stored document, newest first.
func (s *documentStore) GetAll(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, content, type, chunks, chunk_count, created_at
		FROM documents ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// HasAny reports whether any document exists.
func (s *documentStore) HasAny(ctx context.Context) (bool, error) {
	var exists bool
	err := s.store.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM documents)").Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking documents: %w", err)
	}
	return exists, nil
}

// Delete removes a document by id. No-op if absent.
func (s *documentStore) Delete(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ClearAll removes every document.
func (s *documentStore) ClearAll(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	return nil
}

// ==================== Vector Store ====================

// vectorStore implements driven.VectorStore.
type vectorStore struct {
	store *Store
}

var _ driven.VectorStore = (*vectorStore)(nil)

// StoreEmbeddings writes one record per chunk under the knowledge id.
// All records of one call are written in a single transaction.
func (s *vectorStore) StoreEmbeddings(ctx context.Context, knowledgeID string, embeddings [][]float32, texts []string) error {
	if len(embeddings) != len(texts) {
		return fmt.Errorf("storing embeddings: %w: %d embeddings for %d texts",
			domain.ErrInvalidInput, len(embeddings), len(texts))
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var nextSeq int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) + 1 FROM embeddings").Scan(&nextSeq); err != nil {
		return fmt.Errorf("getting next sequence: %w", err)
	}

	for i := range embeddings {
		id := fmt.Sprintf("%s_%d", knowledgeID, i)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO embeddings (id, knowledge_id, chunk_index, embedding, text, seq)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				embedding = excluded.embedding,
				text = excluded.text,
				seq = excluded.seq
		`, id, knowledgeID, i, float32SliceToBytes(embeddings[i]), texts[i], nextSeq)
		if err != nil {
			return fmt.Errorf("storing embedding %s: %w", id, err)
		}
		nextSeq++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing embeddings: %w", err)
	}
	return nil
}

// SearchSimilar scans every record, scoring by cosine similarity
// against the query. Scoring yields between batches so a large
// knowledge base doesn't starve concurrent work.
func (s *vectorStore) SearchSimilar(ctx context.Context, query []float32, limit int) ([]domain.KnowledgeSource, error) {
	if limit <= 0 {
		return []domain.KnowledgeSource{}, nil
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT knowledge_id, chunk_index, embedding, text
		FROM embeddings ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	type record struct {
		knowledgeID string
		chunkIndex  int
		embedding   []float32
		text        string
	}

	var records []record //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r record
		var blob []byte
		if err := rows.Scan(&r.knowledgeID, &r.chunkIndex, &blob, &r.text); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		r.embedding = bytesToFloat32Slice(blob)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	if len(records) == 0 {
		return []domain.KnowledgeSource{}, nil
	}

	type scored struct {
		rec   record
		score float64
	}
	results := make([]scored, 0, len(records))

	for start := 0; start < len(records); start += driven.SearchBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("searching embeddings: %w", err)
		}

		end := min(start+driven.SearchBatchSize, len(records))
		for _, r := range records[start:end] {
			results = append(results, scored{rec: r, score: domain.CosineSimilarity(query, r.embedding)})
		}

		runtime.Gosched()
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })

	if limit > len(results) {
		limit = len(results)
	}
	sources := make([]domain.KnowledgeSource, 0, limit)
	for _, r := range results[:limit] {
		sources = append(sources, domain.KnowledgeSource{
			KnowledgeID: r.rec.knowledgeID,
			ChunkIndex:  r.rec.chunkIndex,
			Text:        r.rec.text,
			Similarity:  r.score,
		})
	}

	logger.Debug("Scanned %d embeddings, returning %d results", len(records), len(sources))
	return sources, nil
}

// DeleteByKnowledgeID removes all records for a knowledge id.
func (s *vectorStore) DeleteByKnowledgeID(ctx context.Context, knowledgeID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM embeddings WHERE knowledge_id = ?", knowledgeID); err != nil {
		return fmt.Errorf("deleting embeddings: %w", err)
	}
	return nil
}

// HasAny reports whether any record exists.
func (s *vectorStore) HasAny(ctx context.Context) (bool, error) {
	var exists bool
	err := s.store.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM embeddings)").Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking embeddings: %w", err)
	}
	return exists, nil
}

// ClearAll removes every record.
func (s *vectorStore) ClearAll(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM embeddings"); err != nil {
		return fmt.Errorf("clearing embeddings: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var docType, chunksJSON string

	if err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &docType,
		&chunksJSON, &doc.ChunkCount, &doc.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Type = domain.DocumentType(docType)
	if err := json.Unmarshal([]byte(chunksJSON), &doc.Chunks); err != nil {
		return nil, fmt.Errorf("unmarshaling chunks: %w", err)
	}
	return &doc, nil
}

// scanDocumentRows scans a document from *sql.Rows.
func scanDocumentRows(rows *sql.Rows) (*domain.Document, error) {
	var doc domain.Document
	var docType, chunksJSON string

	if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &docType,
		&chunksJSON, &doc.ChunkCount, &doc.CreatedAt); err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Type = domain.DocumentType(docType)
	if err := json.Unmarshal([]byte(chunksJSON), &doc.Chunks); err != nil {
		return nil, fmt.Errorf("unmarshaling chunks: %w", err)
	}
	return &doc, nil
}
