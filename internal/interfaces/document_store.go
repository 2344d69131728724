package interfaces

import (
	"context"

	"github.com/Morningstar-08/second-brain/internal/models"
)

// FullDocumentStore keeps one whole-document record per ingested document in
// a dedicated collection, emulated on the vector backend with 1-dimensional
// placeholder vectors. It is never searched by similarity.
type FullDocumentStore interface {
	// Put upserts the record. Re-ingesting the same DocumentID overwrites the
	// prior record.
	Put(ctx context.Context, doc *models.FullDocument) error

	// Get looks the record up by its payload documentId field and returns
	// ErrNotFound when absent.
	Get(ctx context.Context, documentID string) (*models.FullDocument, error)

	// List returns summaries (FullContent excluded) sorted by upload date
	// descending, bounded by the scan safety cap.
	List(ctx context.Context) ([]*models.FullDocument, error)

	// Delete removes the record for the document, if present.
	Delete(ctx context.Context, documentID string) error
}

// AggregationService derives per-document summaries from chunk-level points.
// This is the legacy listing path kept behaviorally consistent with
// FullDocumentStore.List by the ingestion and deletion routines.
type AggregationService interface {
	// ListDocumentsFromChunks scans the chunk collection and groups points by
	// document id.
	ListDocumentsFromChunks(ctx context.Context) ([]*models.DocumentSummary, error)

	// FilterByDateRange post-filters the derived list by uploadDate. Empty
	// bounds are open.
	FilterByDateRange(ctx context.Context, from, to string) ([]*models.DocumentSummary, error)
}
