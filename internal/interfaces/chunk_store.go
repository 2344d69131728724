package interfaces

import (
	"context"

	"github.com/Morningstar-08/second-brain/internal/models"
)

// SearchOptions configures filtered retrieval over the chunk store. Zero-value
// fields attach no predicate; with no predicates at all the search is pure
// similarity ranking.
type SearchOptions struct {
	// Limit caps the number of results (default 5)
	Limit int

	// DocumentID restricts results to chunks of one document
	DocumentID string

	// Filename restricts results to chunks with an exact filename
	Filename string

	// DateFrom / DateTo bound uploadDate (inclusive, RFC3339 strings)
	DateFrom string
	DateTo   string

	// IncludeMetadata returns score, filename and file type alongside content
	IncludeMetadata bool
}

// ChunkStore owns the point-level representation of document chunks: one
// point per chunk, vector plus payload, in a single collection.
type ChunkStore interface {
	// UpsertChunks embeds every chunk text and writes the points in one
	// batch. All embeddings must succeed before anything is written; a write
	// failure is reported in the result, not raised.
	UpsertChunks(ctx context.Context, chunks []string, meta models.ChunkMeta) *models.IngestResult

	// Search runs filtered nearest-neighbour retrieval with a pre-computed
	// query vector. A missing collection yields an empty result, not an
	// error: "no data yet" is a valid steady state.
	Search(ctx context.Context, vector []float32, opts SearchOptions) ([]models.SearchResult, error)

	// DeleteByDocumentID removes every chunk point belonging to the document.
	DeleteByDocumentID(ctx context.Context, documentID string) error

	// CollectionName returns the chunk collection's name.
	CollectionName() string
}
