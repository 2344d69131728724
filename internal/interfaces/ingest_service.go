package interfaces

import (
	"context"

	"github.com/Morningstar-08/second-brain/internal/models"
)

// IngestRequest is one document to ingest. Content is the already-extracted
// text; format adapters (PDF, DOCX, transcription) live outside this system.
type IngestRequest struct {
	DocumentID string `json:"document_id,omitempty"` // generated when empty
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
	Content    string `json:"content"`
	FileSize   int64  `json:"file_size"`
}

// IngestService orchestrates the two-phase document write: full-document
// record first (source of truth for existence), then the chunk batch.
type IngestService interface {
	// Ingest chunks, embeds and stores one document. Partial failures are
	// reported in the result with NeedsReconcile set, never half-raised.
	Ingest(ctx context.Context, req IngestRequest) *models.IngestResult

	// IngestURL fetches a web page, converts it to markdown and ingests it.
	IngestURL(ctx context.Context, url string) *models.IngestResult

	// DeleteDocument removes the document's chunks and its full-document
	// record, best effort across both collections.
	DeleteDocument(ctx context.Context, documentID string) error
}
