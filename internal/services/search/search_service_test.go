package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"

	"github.com/Morningstar-08/second-brain/internal/interfaces"
	"github.com/Morningstar-08/second-brain/internal/models"
)

type stubEmbedder struct {
	fail bool
}

func (s *stubEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	if s.fail {
		return nil, fmt.Errorf("provider down")
	}
	return []float32{1, 0}, nil
}

func (s *stubEmbedder) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return s.GenerateEmbedding(ctx, query)
}

func (s *stubEmbedder) ModelName() string { return "stub-embedding" }

func (s *stubEmbedder) Dimension() int { return 2 }

func (s *stubEmbedder) IsAvailable(_ context.Context) bool { return !s.fail }

type stubChunkStore struct {
	lastVector []float32
	lastOpts   interfaces.SearchOptions
	results    []models.SearchResult
}

func (s *stubChunkStore) UpsertChunks(_ context.Context, _ []string, _ models.ChunkMeta) *models.IngestResult {
	return &models.IngestResult{Success: true}
}

func (s *stubChunkStore) Search(_ context.Context, vector []float32, opts interfaces.SearchOptions) ([]models.SearchResult, error) {
	s.lastVector = vector
	s.lastOpts = opts
	return s.results, nil
}

func (s *stubChunkStore) DeleteByDocumentID(_ context.Context, _ string) error { return nil }

func (s *stubChunkStore) CollectionName() string { return "documents" }

func TestSearchService(t *testing.T) {
	ctx := context.Background()

	t.Run("empty query rejected", func(t *testing.T) {
		service := NewService(&stubEmbedder{}, &stubChunkStore{}, arbor.NewLogger())

		_, err := service.Search(ctx, "   ", interfaces.SearchOptions{})
		assert.Error(t, err)
	})

	t.Run("embedding failure surfaces", func(t *testing.T) {
		service := NewService(&stubEmbedder{fail: true}, &stubChunkStore{}, arbor.NewLogger())

		_, err := service.Search(ctx, "what did I write in june", interfaces.SearchOptions{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "embed")
	})

	t.Run("options pass through to the chunk store", func(t *testing.T) {
		store := &stubChunkStore{
			results: []models.SearchResult{{Content: "a match"}},
		}
		service := NewService(&stubEmbedder{}, store, arbor.NewLogger())

		opts := interfaces.SearchOptions{
			Limit:      3,
			DocumentID: "doc_1",
			DateFrom:   "2024-06-01T00:00:00Z",
			DateTo:     "2024-06-30T23:59:59Z",
		}
		results, err := service.Search(ctx, "june notes", opts)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}

		assert.Len(t, results, 1)
		assert.Equal(t, []float32{1, 0}, store.lastVector)
		assert.Equal(t, opts, store.lastOpts)
	})
}
