package documents

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"

	"github.com/Morningstar-08/second-brain/internal/common"
	"github.com/Morningstar-08/second-brain/internal/interfaces"
	"github.com/Morningstar-08/second-brain/internal/models"
	"github.com/Morningstar-08/second-brain/internal/vectordb"
)

// ErrNotFound indicates the requested document record does not exist.
var ErrNotFound = errors.New("document not found")

const (
	// fullDocVectorDim is the placeholder dimension for the record
	// collection. The collection is never similarity-searched; the vector
	// exists only to satisfy the backend's point shape.
	fullDocVectorDim = 1

	// listScanCap bounds how many records a listing scan will visit
	listScanCap = 1000
)

// FullDocService persists one whole-document record per ingested document in
// a dedicated collection on the vector backend.
type FullDocService struct {
	backend     interfaces.VectorBackend
	collections *vectordb.CollectionManager
	collection  string
	logger      arbor.ILogger
}

// NewFullDocService creates a new full-document store
func NewFullDocService(backend interfaces.VectorBackend, config *common.Config, logger arbor.ILogger) interfaces.FullDocumentStore {
	return &FullDocService{
		backend:     backend,
		collections: vectordb.NewCollectionManager(backend, logger),
		collection:  config.Storage.DocumentCollection,
		logger:      logger,
	}
}

// Put upserts the record. The point id is derived deterministically from the
// string document id, so re-ingesting the same document overwrites in place.
// A key collision with a different document is logged at warn before the
// overwrite.
func (s *FullDocService) Put(ctx context.Context, doc *models.FullDocument) error {
	if doc.DocumentID == "" {
		return fmt.Errorf("document id is required")
	}

	if err := s.collections.EnsureCollection(ctx, s.collection, fullDocVectorDim, vectordb.DistanceCosine); err != nil {
		return fmt.Errorf("failed to ensure document collection: %w", err)
	}

	key := common.DocumentKey(doc.DocumentID)
	if existing := s.collidingRecord(ctx, key, doc.DocumentID); existing != "" {
		s.logger.Warn().
			Str("document_id", doc.DocumentID).
			Str("existing_document_id", existing).
			Int64("key", int64(key)).
			Msg("Document key collision - overwriting the record of a different document")
	}

	point := models.Point{
		ID:     key,
		Vector: []float32{0},
		Payload: map[string]any{
			models.FieldFullDocumentID: doc.DocumentID,
			models.FieldFilename:       doc.Filename,
			models.FieldFileType:       doc.FileType,
			models.FieldFileSize:       doc.FileSize,
			models.FieldUploadDate:     doc.UploadDate,
			models.FieldChunkCount:     doc.ChunkCount,
			models.FieldFullContent:    doc.FullContent,
			models.FieldEmbeddingModel: doc.EmbeddingModel,
			models.FieldIsFullDocument: true,
		},
	}

	if err := s.backend.UpsertPoints(ctx, s.collection, []models.Point{point}); err != nil {
		return fmt.Errorf("failed to store document record: %w", err)
	}

	s.logger.Debug().
		Str("document_id", doc.DocumentID).
		Str("filename", doc.Filename).
		Int("chunk_count", doc.ChunkCount).
		Msg("Full document record stored")
	return nil
}

// Get looks the record up by its payload documentId field. The derived
// numeric key is not trusted for lookups because distinct ids can collide on
// the same hash.
func (s *FullDocService) Get(ctx context.Context, documentID string) (*models.FullDocument, error) {
	point, err := s.findByDocumentID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return decodeFullDocument(point.Payload), nil
}

// List returns summaries sorted by upload date descending. FullContent is
// excluded so listings stay small.
func (s *FullDocService) List(ctx context.Context) ([]*models.FullDocument, error) {
	points, err := s.scan(ctx, listScanCap)
	if err != nil {
		if errors.Is(err, vectordb.ErrCollectionNotFound) {
			return []*models.FullDocument{}, nil
		}
		return nil, err
	}

	docs := make([]*models.FullDocument, 0, len(points))
	for _, point := range points {
		doc := decodeFullDocument(point.Payload)
		doc.FullContent = ""
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadDate > docs[j].UploadDate
	})
	return docs, nil
}

// Delete removes the record for the document. Deleting an absent record is
// not an error.
func (s *FullDocService) Delete(ctx context.Context, documentID string) error {
	point, err := s.findByDocumentID(ctx, documentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.backend.DeletePoints(ctx, s.collection, models.PointSelector{IDs: []uint64{point.ID}}); err != nil {
		return fmt.Errorf("failed to delete document record: %w", err)
	}

	s.logger.Debug().Str("document_id", documentID).Msg("Full document record deleted")
	return nil
}

// collidingRecord reports the documentId of an existing record stored under
// the same numeric key, or "" when the key is free or already owned by this
// document. Distinct ids can hash to the same key; the upsert proceeds
// regardless, but never silently.
func (s *FullDocService) collidingRecord(ctx context.Context, key uint64, documentID string) string {
	points, err := s.scan(ctx, listScanCap)
	if err != nil {
		return ""
	}
	for i := range points {
		if points[i].ID != key {
			continue
		}
		if existing := payloadString(points[i].Payload, models.FieldFullDocumentID); existing != documentID {
			return existing
		}
	}
	return ""
}

func (s *FullDocService) findByDocumentID(ctx context.Context, documentID string) (*models.Point, error) {
	points, err := s.scan(ctx, listScanCap)
	if err != nil {
		if errors.Is(err, vectordb.ErrCollectionNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	for i := range points {
		if payloadString(points[i].Payload, models.FieldFullDocumentID) == documentID {
			return &points[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *FullDocService) scan(ctx context.Context, limit int) ([]models.Point, error) {
	var points []models.Point
	var offset any

	for len(points) < limit {
		page, err := s.backend.Scroll(ctx, s.collection, models.ScrollRequest{
			Limit:       limit - len(points),
			Offset:      offset,
			WithPayload: true,
		})
		if err != nil {
			return nil, err
		}
		points = append(points, page.Points...)
		if page.NextOffset == nil {
			break
		}
		offset = page.NextOffset
	}
	return points, nil
}

func decodeFullDocument(payload map[string]any) *models.FullDocument {
	return &models.FullDocument{
		DocumentID:     payloadString(payload, models.FieldFullDocumentID),
		Filename:       payloadString(payload, models.FieldFilename),
		FileType:       payloadString(payload, models.FieldFileType),
		FileSize:       payloadInt64(payload, models.FieldFileSize),
		UploadDate:     payloadString(payload, models.FieldUploadDate),
		ChunkCount:     int(payloadInt64(payload, models.FieldChunkCount)),
		FullContent:    payloadString(payload, models.FieldFullContent),
		EmbeddingModel: payloadString(payload, models.FieldEmbeddingModel),
	}
}

// payloadInt64 tolerates the numeric representations that survive a JSON
// round trip through the backend.
func payloadInt64(payload map[string]any, key string) int64 {
	switch v := payload[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
