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

// aggregateScanCap bounds how many chunk points a listing scan will visit.
// Ten times the record-store cap because documents fan out into many chunks.
const aggregateScanCap = 10000

// AggregateService derives per-document summaries by grouping chunk points.
// It is the listing path for data ingested before the dedicated record store
// existed.
type AggregateService struct {
	backend    interfaces.VectorBackend
	collection string
	logger     arbor.ILogger
}

// NewAggregateService creates a new chunk aggregation service
func NewAggregateService(backend interfaces.VectorBackend, config *common.Config, logger arbor.ILogger) interfaces.AggregationService {
	return &AggregateService{
		backend:    backend,
		collection: config.Storage.ChunkCollection,
		logger:     logger,
	}
}

// ListDocumentsFromChunks scans the chunk collection and groups points by
// document id. A document's upload date is the earliest seen among its
// chunks, which for current data is the date on every chunk.
func (s *AggregateService) ListDocumentsFromChunks(ctx context.Context) ([]*models.DocumentSummary, error) {
	groups := make(map[string]*models.DocumentSummary)

	var offset any
	scanned := 0
	for scanned < aggregateScanCap {
		page, err := s.backend.Scroll(ctx, s.collection, models.ScrollRequest{
			Limit:       aggregateScanCap - scanned,
			Offset:      offset,
			WithPayload: true,
		})
		if err != nil {
			if errors.Is(err, vectordb.ErrCollectionNotFound) {
				return []*models.DocumentSummary{}, nil
			}
			return nil, fmt.Errorf("chunk scan failed: %w", err)
		}

		for _, point := range page.Points {
			docID := payloadString(point.Payload, models.FieldDocumentID)
			if docID == "" {
				continue
			}
			uploadDate := payloadString(point.Payload, models.FieldUploadDate)

			summary, ok := groups[docID]
			if !ok {
				groups[docID] = &models.DocumentSummary{
					DocumentID:     docID,
					Filename:       payloadString(point.Payload, models.FieldFilename),
					UploadDate:     uploadDate,
					EmbeddingModel: payloadString(point.Payload, models.FieldEmbeddingModel),
					ChunkCount:     1,
				}
				continue
			}

			summary.ChunkCount++
			if uploadDate != "" && (summary.UploadDate == "" || uploadDate < summary.UploadDate) {
				summary.UploadDate = uploadDate
			}
		}

		scanned += len(page.Points)
		if page.NextOffset == nil {
			break
		}
		offset = page.NextOffset
	}

	summaries := make([]*models.DocumentSummary, 0, len(groups))
	for _, summary := range groups {
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UploadDate > summaries[j].UploadDate
	})
	return summaries, nil
}

// FilterByDateRange post-filters the derived listing by upload date. Empty
// bounds are open ends.
func (s *AggregateService) FilterByDateRange(ctx context.Context, from, to string) ([]*models.DocumentSummary, error) {
	summaries, err := s.ListDocumentsFromChunks(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.DocumentSummary, 0, len(summaries))
	for _, summary := range summaries {
		if from != "" && summary.UploadDate < from {
			continue
		}
		if to != "" && summary.UploadDate > to {
			continue
		}
		filtered = append(filtered, summary)
	}
	return filtered, nil
}
