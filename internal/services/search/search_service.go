package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/Morningstar-08/second-brain/internal/interfaces"
	"github.com/Morningstar-08/second-brain/internal/models"
)

// Service embeds the query and delegates filtered retrieval to the chunk
// store.
type Service struct {
	embedder interfaces.EmbeddingService
	chunks   interfaces.ChunkStore
	logger   arbor.ILogger
}

// NewService creates a new search service
func NewService(embedder interfaces.EmbeddingService, chunks interfaces.ChunkStore, logger arbor.ILogger) interfaces.SearchService {
	return &Service{
		embedder: embedder,
		chunks:   chunks,
		logger:   logger,
	}
}

func (s *Service) Search(ctx context.Context, query string, opts interfaces.SearchOptions) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	vector, err := s.embedder.GenerateQueryEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.chunks.Search(ctx, vector, opts)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("query", query).
		Int("results", len(results)).
		Str("document_id", opts.DocumentID).
		Msg("Search completed")
	return results, nil
}
