package documents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"

	"github.com/Morningstar-08/second-brain/internal/common"
	"github.com/Morningstar-08/second-brain/internal/models"
	"github.com/Morningstar-08/second-brain/internal/vectordb"
)

func seedChunks(t *testing.T, backend *vectordb.MemoryBackend) {
	t.Helper()
	ctx := context.Background()
	if err := backend.CreateCollection(ctx, "documents", 2, vectordb.DistanceCosine); err != nil {
		t.Fatal(err)
	}

	chunk := func(id uint64, docID, filename, date string, index int) models.Point {
		return models.Point{
			ID:     id,
			Vector: []float32{1, 0},
			Payload: map[string]any{
				models.FieldDocumentID:     docID,
				models.FieldFilename:       filename,
				models.FieldChunkIndex:     index,
				models.FieldContent:        "chunk text",
				models.FieldUploadDate:     date,
				models.FieldEmbeddingModel: "mock-embedding-001",
			},
		}
	}

	points := []models.Point{
		chunk(1, "doc_recipes", "recipes.md", "2024-03-10T08:00:00Z", 0),
		chunk(2, "doc_recipes", "recipes.md", "2024-03-10T08:00:00Z", 1),
		chunk(3, "doc_recipes", "recipes.md", "2024-03-10T08:00:00Z", 2),
		chunk(4, "doc_journal", "journal.md", "2024-07-22T19:45:00Z", 0),
		chunk(5, "doc_journal", "journal.md", "2024-07-22T19:45:00Z", 1),
		chunk(6, "doc_travel", "travel.md", "2024-11-05T12:00:00Z", 0),
	}
	if err := backend.UpsertPoints(ctx, "documents", points); err != nil {
		t.Fatal(err)
	}
}

func TestAggregateService_ListDocumentsFromChunks(t *testing.T) {
	ctx := context.Background()

	t.Run("missing collection lists nothing", func(t *testing.T) {
		service := NewAggregateService(vectordb.NewMemoryBackend(), common.NewDefaultConfig(), arbor.NewLogger())
		summaries, err := service.ListDocumentsFromChunks(ctx)
		assert.NoError(t, err)
		assert.Empty(t, summaries)
	})

	t.Run("groups chunks by document", func(t *testing.T) {
		backend := vectordb.NewMemoryBackend()
		seedChunks(t, backend)
		service := NewAggregateService(backend, common.NewDefaultConfig(), arbor.NewLogger())

		summaries, err := service.ListDocumentsFromChunks(ctx)
		if err != nil {
			t.Fatalf("ListDocumentsFromChunks failed: %v", err)
		}

		assert.Len(t, summaries, 3)

		// Newest first
		assert.Equal(t, "doc_travel", summaries[0].DocumentID)
		assert.Equal(t, "doc_journal", summaries[1].DocumentID)
		assert.Equal(t, "doc_recipes", summaries[2].DocumentID)

		byID := make(map[string]int)
		for _, s := range summaries {
			byID[s.DocumentID] = s.ChunkCount
		}
		assert.Equal(t, 3, byID["doc_recipes"])
		assert.Equal(t, 2, byID["doc_journal"])
		assert.Equal(t, 1, byID["doc_travel"])

		assert.Equal(t, "recipes.md", summaries[2].Filename)
		assert.Equal(t, "mock-embedding-001", summaries[2].EmbeddingModel)
	})

	t.Run("earliest chunk date wins for a document", func(t *testing.T) {
		backend := vectordb.NewMemoryBackend()
		if err := backend.CreateCollection(ctx, "documents", 2, vectordb.DistanceCosine); err != nil {
			t.Fatal(err)
		}
		points := []models.Point{
			{ID: 1, Vector: []float32{1, 0}, Payload: map[string]any{
				models.FieldDocumentID: "doc_x",
				models.FieldUploadDate: "2024-05-02T00:00:00Z",
			}},
			{ID: 2, Vector: []float32{1, 0}, Payload: map[string]any{
				models.FieldDocumentID: "doc_x",
				models.FieldUploadDate: "2024-05-01T00:00:00Z",
			}},
		}
		if err := backend.UpsertPoints(ctx, "documents", points); err != nil {
			t.Fatal(err)
		}
		service := NewAggregateService(backend, common.NewDefaultConfig(), arbor.NewLogger())

		summaries, err := service.ListDocumentsFromChunks(ctx)
		if err != nil {
			t.Fatal(err)
		}
		assert.Len(t, summaries, 1)
		assert.Equal(t, "2024-05-01T00:00:00Z", summaries[0].UploadDate)
	})
}

func TestAggregateService_FilterByDateRange(t *testing.T) {
	ctx := context.Background()
	backend := vectordb.NewMemoryBackend()
	seedChunks(t, backend)
	service := NewAggregateService(backend, common.NewDefaultConfig(), arbor.NewLogger())

	t.Run("bounded range", func(t *testing.T) {
		summaries, err := service.FilterByDateRange(ctx, "2024-06-01T00:00:00Z", "2024-09-30T23:59:59Z")
		if err != nil {
			t.Fatal(err)
		}
		assert.Len(t, summaries, 1)
		assert.Equal(t, "doc_journal", summaries[0].DocumentID)
	})

	t.Run("open lower bound", func(t *testing.T) {
		summaries, err := service.FilterByDateRange(ctx, "", "2024-06-01T00:00:00Z")
		if err != nil {
			t.Fatal(err)
		}
		assert.Len(t, summaries, 1)
		assert.Equal(t, "doc_recipes", summaries[0].DocumentID)
	})

	t.Run("open both bounds returns everything", func(t *testing.T) {
		summaries, err := service.FilterByDateRange(ctx, "", "")
		if err != nil {
			t.Fatal(err)
		}
		assert.Len(t, summaries, 3)
	})
}
