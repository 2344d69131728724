package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/Morningstar-08/second-brain/internal/common"
	"github.com/Morningstar-08/second-brain/internal/interfaces"
	"github.com/Morningstar-08/second-brain/internal/models"
)

// Service orchestrates the two-phase document write: the full-document
// record is stored first so the document's existence survives a chunk
// indexing failure, then the chunk batch is embedded and written.
type Service struct {
	chunker  *Chunker
	fetcher  *WebpageFetcher
	chunks   interfaces.ChunkStore
	fullDocs interfaces.FullDocumentStore
	embedder interfaces.EmbeddingService
	logger   arbor.ILogger
}

// NewService creates a new ingestion service
func NewService(chunks interfaces.ChunkStore, fullDocs interfaces.FullDocumentStore, embedder interfaces.EmbeddingService, config *common.Config, logger arbor.ILogger) interfaces.IngestService {
	return &Service{
		chunker:  NewChunker(&config.Chunking),
		fetcher:  NewWebpageFetcher(logger),
		chunks:   chunks,
		fullDocs: fullDocs,
		embedder: embedder,
		logger:   logger,
	}
}

// Ingest chunks, records and indexes one document. The upload date is
// stamped once here so every chunk and the record carry the identical
// RFC3339 UTC timestamp.
func (s *Service) Ingest(ctx context.Context, req interfaces.IngestRequest) *models.IngestResult {
	if req.Content == "" {
		return &models.IngestResult{Success: false, Message: "document content is empty"}
	}
	if req.Filename == "" {
		return &models.IngestResult{Success: false, Message: "filename is required"}
	}

	documentID := req.DocumentID
	if documentID == "" {
		documentID = common.NewDocumentID()
	}
	fileType := req.FileType
	if fileType == "" {
		fileType = models.FileTypeText
	}
	uploadDate := time.Now().UTC().Format(time.RFC3339)

	chunks := s.chunker.Chunk(req.Content)
	if len(chunks) == 0 {
		return &models.IngestResult{Success: false, Message: "document produced no chunks"}
	}

	record := &models.FullDocument{
		DocumentID:     documentID,
		Filename:       req.Filename,
		FileType:       fileType,
		FileSize:       req.FileSize,
		UploadDate:     uploadDate,
		ChunkCount:     len(chunks),
		FullContent:    req.Content,
		EmbeddingModel: s.embedder.ModelName(),
	}
	if err := s.fullDocs.Put(ctx, record); err != nil {
		return &models.IngestResult{
			Success: false,
			Message: fmt.Sprintf("failed to store document record: %v", err),
		}
	}

	result := s.chunks.UpsertChunks(ctx, chunks, models.ChunkMeta{
		DocumentID:     documentID,
		Filename:       req.Filename,
		UploadDate:     uploadDate,
		FileType:       fileType,
		EmbeddingModel: s.embedder.ModelName(),
	})
	if !result.Success {
		// The record exists but the chunks do not: flag the divergence
		// instead of rolling back, so the reconciler can surface it.
		result.NeedsReconcile = true
		s.logger.Warn().
			Str("document_id", documentID).
			Str("filename", req.Filename).
			Str("reason", result.Message).
			Msg("Document record stored but chunk indexing failed")
		return result
	}

	s.logger.Info().
		Str("document_id", documentID).
		Str("filename", req.Filename).
		Int("chunks", result.Count).
		Msg("Document ingested")
	return result
}

// IngestURL fetches a web page, converts it to markdown and ingests it as a
// web document named after the page title.
func (s *Service) IngestURL(ctx context.Context, url string) *models.IngestResult {
	page, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return &models.IngestResult{
			Success: false,
			Message: fmt.Sprintf("failed to fetch page: %v", err),
		}
	}

	return s.Ingest(ctx, interfaces.IngestRequest{
		Filename: page.Title,
		FileType: models.FileTypeWeb,
		Content:  page.Markdown,
		FileSize: page.Size,
	})
}

// DeleteDocument removes the document's chunks and its record. Both deletes
// are attempted even when the first fails.
func (s *Service) DeleteDocument(ctx context.Context, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("document id is required")
	}

	chunkErr := s.chunks.DeleteByDocumentID(ctx, documentID)
	recordErr := s.fullDocs.Delete(ctx, documentID)

	if chunkErr != nil {
		return fmt.Errorf("failed to delete chunks for %s: %w", documentID, chunkErr)
	}
	if recordErr != nil {
		return fmt.Errorf("failed to delete record for %s: %w", documentID, recordErr)
	}

	s.logger.Info().Str("document_id", documentID).Msg("Document deleted")
	return nil
}
