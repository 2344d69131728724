package documents

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/Morningstar-08/second-brain/internal/common"
	"github.com/Morningstar-08/second-brain/internal/interfaces"
	"github.com/Morningstar-08/second-brain/internal/models"
	"github.com/Morningstar-08/second-brain/internal/vectordb"
)

const (
	// DefaultSearchLimit applies when the caller does not specify a limit
	DefaultSearchLimit = 5

	// deleteScanLimit caps a single scroll page while collecting ids for the
	// scan-based delete fallback
	deleteScanLimit = 1000

	// deleteBatchSize bounds each id-list delete request
	deleteBatchSize = 100
)

// ChunkService stores document chunks as points in the vector backend
type ChunkService struct {
	backend     interfaces.VectorBackend
	embedder    interfaces.EmbeddingService
	collections *vectordb.CollectionManager
	collection  string
	logger      arbor.ILogger
}

// NewChunkService creates a new chunk store over the given backend
func NewChunkService(backend interfaces.VectorBackend, embedder interfaces.EmbeddingService, config *common.Config, logger arbor.ILogger) interfaces.ChunkStore {
	return &ChunkService{
		backend:     backend,
		embedder:    embedder,
		collections: vectordb.NewCollectionManager(backend, logger),
		collection:  config.Storage.ChunkCollection,
		logger:      logger,
	}
}

func (s *ChunkService) CollectionName() string {
	return s.collection
}

// UpsertChunks embeds every chunk concurrently, then writes all points in one
// batch. Any embedding failure aborts the whole operation before a single
// point is written, so a document is never partially indexed.
func (s *ChunkService) UpsertChunks(ctx context.Context, chunks []string, meta models.ChunkMeta) *models.IngestResult {
	if len(chunks) == 0 {
		return &models.IngestResult{
			Success: false,
			Message: "no chunks to ingest",
		}
	}

	if err := s.collections.EnsureCollection(ctx, s.collection, s.embedder.Dimension(), vectordb.DistanceCosine); err != nil {
		return &models.IngestResult{
			Success: false,
			Message: fmt.Sprintf("collection setup failed: %v", err),
		}
	}

	vectors, err := s.embedAll(ctx, chunks)
	if err != nil {
		return &models.IngestResult{
			Success: false,
			Message: fmt.Sprintf("embedding failed: %v", err),
		}
	}

	model := meta.EmbeddingModel
	if model == "" {
		model = s.embedder.ModelName()
	}

	points := make([]models.Point, len(chunks))
	for i, chunk := range chunks {
		points[i] = models.Point{
			ID:     common.NewChunkPointID(),
			Vector: vectors[i],
			Payload: map[string]any{
				models.FieldDocumentID:     meta.DocumentID,
				models.FieldFilename:       meta.Filename,
				models.FieldChunkIndex:     i,
				models.FieldContent:        chunk,
				models.FieldUploadDate:     meta.UploadDate,
				models.FieldEmbeddingModel: model,
				models.FieldFileType:       meta.FileType,
			},
		}
	}

	if err := s.backend.UpsertPoints(ctx, s.collection, points); err != nil {
		s.logger.Error().Err(err).
			Str("document_id", meta.DocumentID).
			Int("chunks", len(chunks)).
			Msg("Chunk upsert failed after successful embedding")
		return &models.IngestResult{
			Success:    false,
			Model:      model,
			Dimensions: s.embedder.Dimension(),
			Message:    fmt.Sprintf("vector store write failed: %v", err),
		}
	}

	s.logger.Info().
		Str("document_id", meta.DocumentID).
		Str("filename", meta.Filename).
		Int("chunks", len(chunks)).
		Msg("Document chunks indexed")

	return &models.IngestResult{
		Success:    true,
		Count:      len(chunks),
		Model:      model,
		Dimensions: s.embedder.Dimension(),
	}
}

// embedAll generates one embedding per chunk concurrently. The first error
// wins; remaining workers still drain but their results are discarded.
func (s *ChunkService) embedAll(ctx context.Context, chunks []string) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, chunk := range chunks {
		wg.Add(1)
		go func(idx int, text string) {
			defer wg.Done()

			vector, err := s.embedder.GenerateEmbedding(ctx, text)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("chunk %d: %w", idx, err)
				}
				mu.Unlock()
				return
			}
			vectors[idx] = vector
		}(i, chunk)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}

// Search runs filtered nearest-neighbour retrieval. A missing collection is a
// valid empty state, not an error.
func (s *ChunkService) Search(ctx context.Context, vector []float32, opts interfaces.SearchOptions) ([]models.SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	filter := vectordb.AllOf(
		optional(vectordb.DocumentIDEquals(opts.DocumentID)),
		optional(vectordb.FilenameEquals(opts.Filename)),
		vectordb.DateRange{From: opts.DateFrom, To: opts.DateTo},
	)

	scored, err := s.backend.Search(ctx, s.collection, models.SearchRequest{
		Vector:      vector,
		Limit:       limit,
		Filter:      filter,
		WithPayload: true,
	})
	if err != nil {
		if errors.Is(err, vectordb.ErrCollectionNotFound) {
			return []models.SearchResult{}, nil
		}
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]models.SearchResult, 0, len(scored))
	for _, point := range scored {
		result := models.SearchResult{
			Content: payloadString(point.Payload, models.FieldContent),
		}
		if opts.IncludeMetadata {
			result.Score = point.Score
			result.Filename = payloadString(point.Payload, models.FieldFilename)
			result.FileType = payloadString(point.Payload, models.FieldFileType)
		}
		results = append(results, result)
	}
	return results, nil
}

// DeleteByDocumentID removes every chunk of the document. Backends with
// filtered-delete support take the fast path; others are scanned and deleted
// by id in bounded batches.
func (s *ChunkService) DeleteByDocumentID(ctx context.Context, documentID string) error {
	filter := vectordb.AllOf(vectordb.DocumentIDEquals(documentID))

	if s.backend.SupportsFilteredDelete() {
		err := s.backend.DeletePoints(ctx, s.collection, models.PointSelector{Filter: filter})
		if err != nil && !errors.Is(err, vectordb.ErrCollectionNotFound) {
			return fmt.Errorf("filtered delete failed: %w", err)
		}
		return nil
	}

	ids, err := s.collectPointIDs(ctx, filter)
	if err != nil {
		if errors.Is(err, vectordb.ErrCollectionNotFound) {
			return nil
		}
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	for start := 0; start < len(ids); start += deleteBatchSize {
		end := start + deleteBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		if err := s.backend.DeletePoints(ctx, s.collection, models.PointSelector{IDs: ids[start:end]}); err != nil {
			return fmt.Errorf("batch delete failed at offset %d: %w", start, err)
		}
	}

	s.logger.Info().
		Str("document_id", documentID).
		Int("points", len(ids)).
		Msg("Document chunks deleted via scan fallback")
	return nil
}

// collectPointIDs scrolls the collection and gathers ids of points matching
// the filter. Filtering happens client-side so the fallback also works on
// deployments that reject filter parameters entirely.
func (s *ChunkService) collectPointIDs(ctx context.Context, filter *models.Filter) ([]uint64, error) {
	var ids []uint64
	var offset any

	for {
		page, err := s.backend.Scroll(ctx, s.collection, models.ScrollRequest{
			Limit:       deleteScanLimit,
			Offset:      offset,
			WithPayload: true,
		})
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}

		for _, point := range page.Points {
			if vectordb.MatchesPayload(filter, point.Payload) {
				ids = append(ids, point.ID)
			}
		}

		if page.NextOffset == nil {
			return ids, nil
		}
		offset = page.NextOffset
	}
}

// optional drops zero-valued equality predicates from a filter conjunction.
func optional(p vectordb.Predicate) vectordb.Predicate {
	switch v := p.(type) {
	case vectordb.DocumentIDEquals:
		if v == "" {
			return nil
		}
	case vectordb.FilenameEquals:
		if v == "" {
			return nil
		}
	}
	return p
}

func payloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	if s, ok := payload[key].(string); ok {
		return s
	}
	return ""
}
