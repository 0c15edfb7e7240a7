// Package chunker splits raw document text into overlapping,
// sentence-aligned segments sized for embedding and context windows.
package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
	"github.com/sidenote-labs/sidenote/internal/logger"
)

var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// Chunker accumulates whole sentences into chunks of roughly chunkSize
// characters, seeding each new chunk with an overlap prefix of whole
// trailing sentences from the previous one. Sentences are never split:
// a single sentence longer than chunkSize becomes a chunk on its own
// and may exceed the nominal limit.
type Chunker struct {
	chunkSize int
	overlap   int
	tokenizer *sentences.DefaultSentenceTokenizer
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap budget between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options. The sentence tokenizer
// is trained for English and handles abbreviations and titles; if it
// cannot be constructed, chunking falls back to paragraph splitting.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: domain.DefaultChunkSize,
		overlap:   domain.DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		logger.Warn("sentence tokenizer unavailable, falling back to paragraph splitting: %v", err)
	} else {
		c.tokenizer = tokenizer
	}

	return c
}

// SetParameters re-applies chunk size and overlap without
// re-instantiation. Invalid values keep the current configuration.
func (c *Chunker) SetParameters(chunkSize, overlap int) {
	if chunkSize > 0 {
		c.chunkSize = chunkSize
	}
	if overlap >= 0 {
		c.overlap = overlap
	}
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}
}

// Validate reports the first violated chunking parameter invariant.
func (c *Chunker) Validate() error {
	if c.chunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be greater than 0", domain.ErrInvalidInput)
	}
	if c.chunkSize > domain.MaxChunkSize {
		return fmt.Errorf("%w: chunk size must not exceed %d characters", domain.ErrInvalidInput, domain.MaxChunkSize)
	}
	if c.overlap < 0 {
		return fmt.Errorf("%w: chunk overlap cannot be negative", domain.ErrInvalidInput)
	}
	if c.overlap >= c.chunkSize {
		return fmt.Errorf("%w: chunk overlap must be less than chunk size", domain.ErrInvalidInput)
	}
	return nil
}

// Chunk splits text into ordered chunks. Empty input produces no
// chunks; input no longer than the chunk size is returned whole.
func (c *Chunker) Chunk(text string) []string {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return nil
	}

	if len(cleaned) <= c.chunkSize {
		return []string{cleaned}
	}

	sents := c.splitSentences(cleaned)
	if len(sents) == 0 {
		return []string{cleaned}
	}

	var (
		chunks     []string
		current    []string
		currentLen int
	)

	for _, sentence := range sents {
		// Close the chunk when the next sentence would overflow it.
		if currentLen+len(sentence) > c.chunkSize && len(current) > 0 {
			chunks = appendChunk(chunks, current)

			overlap := c.overlapSentences(current)
			current = append(overlap, sentence)
			currentLen = len(sentence)
			for _, s := range overlap {
				currentLen += len(s)
			}
			continue
		}

		current = append(current, sentence)
		currentLen += len(sentence)
	}

	chunks = appendChunk(chunks, current)

	logger.Debug("Chunked %d characters into %d chunks (size=%d, overlap=%d)",
		len(cleaned), len(chunks), c.chunkSize, c.overlap)
	return chunks
}

// splitSentences runs linguistic sentence boundary detection, falling
// back to blank-line-delimited paragraphs when it yields nothing.
func (c *Chunker) splitSentences(text string) []string {
	var sents []string

	if c.tokenizer != nil {
		for _, s := range c.tokenizer.Tokenize(text) {
			if trimmed := strings.TrimSpace(s.Text); trimmed != "" {
				sents = append(sents, trimmed)
			}
		}
	}

	if len(sents) == 0 {
		for _, p := range paragraphSplit.Split(text, -1) {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				sents = append(sents, trimmed)
			}
		}
	}

	return sents
}

// overlapSentences walks backward through the sentences of the chunk
// just closed, collecting whole sentences until their combined length
// would exceed the overlap budget. Order is preserved.
func (c *Chunker) overlapSentences(chunk []string) []string {
	var (
		overlap []string
		total   int
	)

	for i := len(chunk) - 1; i >= 0; i-- {
		if total+len(chunk[i]) > c.overlap {
			break
		}
		overlap = append([]string{chunk[i]}, overlap...)
		total += len(chunk[i])
	}

	return overlap
}

// appendChunk joins accumulated sentences and appends the result,
// skipping empty chunks.
func appendChunk(chunks []string, sentences []string) []string {
	if len(sentences) == 0 {
		return chunks
	}
	joined := strings.TrimSpace(strings.Join(sentences, " "))
	if joined == "" {
		return chunks
	}
	return append(chunks, joined)
}

// Stats summarises the chunks a text would produce.
type Stats struct {
	// TotalChunks is the number of chunks produced.
	TotalChunks int

	// AvgChunkSize is the mean chunk length in characters.
	AvgChunkSize int

	// MinChunkSize is the shortest chunk length.
	MinChunkSize int

	// MaxChunkSize is the longest chunk length.
	MaxChunkSize int
}

// ChunkStats chunks the text and reports size statistics.
func (c *Chunker) ChunkStats(text string) Stats {
	chunks := c.Chunk(text)
	if len(chunks) == 0 {
		return Stats{}
	}

	stats := Stats{
		TotalChunks:  len(chunks),
		MinChunkSize: len(chunks[0]),
	}
	total := 0
	for _, chunk := range chunks {
		n := len(chunk)
		total += n
		if n < stats.MinChunkSize {
			stats.MinChunkSize = n
		}
		if n > stats.MaxChunkSize {
			stats.MaxChunkSize = n
		}
	}
	stats.AvgChunkSize = total / len(chunks)
	return stats
}
