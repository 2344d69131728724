package documents

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"

	"github.com/Morningstar-08/second-brain/internal/common"
	"github.com/Morningstar-08/second-brain/internal/interfaces"
	"github.com/Morningstar-08/second-brain/internal/models"
	"github.com/Morningstar-08/second-brain/internal/vectordb"
)

// mockEmbedder returns deterministic vectors and can be told to fail on
// specific inputs.
type mockEmbedder struct {
	dim    int
	failOn map[string]bool
	calls  int
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{dim: 2, failOn: make(map[string]bool)}
}

func (m *mockEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.failOn[text] {
		return nil, fmt.Errorf("provider rejected input")
	}
	vector := make([]float32, m.dim)
	vector[0] = float32(len(text))
	vector[1] = 1
	return vector, nil
}

func (m *mockEmbedder) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return m.GenerateEmbedding(ctx, query)
}

func (m *mockEmbedder) ModelName() string { return "mock-embedding-001" }

func (m *mockEmbedder) Dimension() int { return m.dim }

func (m *mockEmbedder) IsAvailable(_ context.Context) bool { return true }

func newChunkFixture(t *testing.T) (interfaces.ChunkStore, *vectordb.MemoryBackend, *mockEmbedder) {
	t.Helper()
	backend := vectordb.NewMemoryBackend()
	embedder := newMockEmbedder()
	config := common.NewDefaultConfig()
	store := NewChunkService(backend, embedder, config, arbor.NewLogger())
	return store, backend, embedder
}

func testMeta() models.ChunkMeta {
	return models.ChunkMeta{
		DocumentID: "doc_test",
		Filename:   "notes.md",
		UploadDate: "2024-06-15T10:30:00Z",
		FileType:   models.FileTypeText,
	}
}

func TestChunkService_UpsertChunks(t *testing.T) {
	ctx := context.Background()

	t.Run("stores one point per chunk", func(t *testing.T) {
		store, backend, _ := newChunkFixture(t)

		chunks := []string{"first chunk", "second chunk", "third chunk"}
		result := store.UpsertChunks(ctx, chunks, testMeta())

		assert.True(t, result.Success)
		assert.Equal(t, 3, result.Count)
		assert.Equal(t, "mock-embedding-001", result.Model)
		assert.Equal(t, 2, result.Dimensions)

		info, err := backend.GetCollectionInfo(ctx, "documents")
		if err != nil {
			t.Fatalf("GetCollectionInfo failed: %v", err)
		}
		assert.Equal(t, 3, info.PointCount)

		// Verify payload shape: distinct chunk_index, shared metadata
		page, err := backend.Scroll(ctx, "documents", models.ScrollRequest{Limit: 10, WithPayload: true})
		if err != nil {
			t.Fatal(err)
		}
		seenIndex := make(map[int]bool)
		for _, point := range page.Points {
			idx := point.Payload[models.FieldChunkIndex].(int)
			assert.False(t, seenIndex[idx], "chunk_index %d duplicated", idx)
			seenIndex[idx] = true
			assert.Equal(t, "doc_test", point.Payload[models.FieldDocumentID])
			assert.Equal(t, "2024-06-15T10:30:00Z", point.Payload[models.FieldUploadDate])
			assert.Equal(t, "notes.md", point.Payload[models.FieldFilename])
			assert.NotEmpty(t, point.Payload[models.FieldContent])
		}
		assert.Len(t, seenIndex, 3)
	})

	t.Run("no chunks is reported not raised", func(t *testing.T) {
		store, _, _ := newChunkFixture(t)
		result := store.UpsertChunks(ctx, nil, testMeta())
		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "no chunks")
	})

	t.Run("embedding failure writes nothing", func(t *testing.T) {
		store, backend, embedder := newChunkFixture(t)
		embedder.failOn["poison chunk"] = true

		chunks := []string{"good chunk", "poison chunk", "another good chunk"}
		result := store.UpsertChunks(ctx, chunks, testMeta())

		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "embedding failed")

		// The collection exists but must stay empty
		info, err := backend.GetCollectionInfo(ctx, "documents")
		if err != nil {
			t.Fatalf("GetCollectionInfo failed: %v", err)
		}
		assert.Equal(t, 0, info.PointCount, "partial batches must never be written")
	})

	t.Run("write failure reported in result", func(t *testing.T) {
		backend := &failingBackend{MemoryBackend: vectordb.NewMemoryBackend(), failUpsert: true}
		store := NewChunkService(backend, newMockEmbedder(), common.NewDefaultConfig(), arbor.NewLogger())

		result := store.UpsertChunks(ctx, []string{"chunk"}, testMeta())
		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "vector store write failed")
		assert.Equal(t, "mock-embedding-001", result.Model)
	})
}

func TestChunkService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("missing collection yields empty result", func(t *testing.T) {
		store, _, _ := newChunkFixture(t)

		results, err := store.Search(ctx, []float32{1, 0}, interfaces.SearchOptions{})
		assert.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("metadata shaping", func(t *testing.T) {
		store, _, _ := newChunkFixture(t)
		store.UpsertChunks(ctx, []string{"alpha content"}, testMeta())

		plain, err := store.Search(ctx, []float32{1, 1}, interfaces.SearchOptions{})
		if err != nil {
			t.Fatal(err)
		}
		assert.Len(t, plain, 1)
		assert.Equal(t, "alpha content", plain[0].Content)
		assert.Empty(t, plain[0].Filename, "metadata excluded unless requested")
		assert.Zero(t, plain[0].Score)

		rich, err := store.Search(ctx, []float32{1, 1}, interfaces.SearchOptions{IncludeMetadata: true})
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, "notes.md", rich[0].Filename)
		assert.Equal(t, models.FileTypeText, rich[0].FileType)
		assert.Greater(t, rich[0].Score, 0.0)
	})

	t.Run("document filter restricts results", func(t *testing.T) {
		store, _, _ := newChunkFixture(t)
		store.UpsertChunks(ctx, []string{"doc a text"}, testMeta())

		metaB := testMeta()
		metaB.DocumentID = "doc_other"
		store.UpsertChunks(ctx, []string{"doc b text"}, metaB)

		results, err := store.Search(ctx, []float32{1, 1}, interfaces.SearchOptions{DocumentID: "doc_other"})
		if err != nil {
			t.Fatal(err)
		}
		assert.Len(t, results, 1)
		assert.Equal(t, "doc b text", results[0].Content)
	})

	t.Run("date range filter", func(t *testing.T) {
		store, _, _ := newChunkFixture(t)

		early := testMeta()
		early.DocumentID = "doc_early"
		early.UploadDate = "2024-01-10T00:00:00Z"
		store.UpsertChunks(ctx, []string{"january entry"}, early)

		late := testMeta()
		late.DocumentID = "doc_late"
		late.UploadDate = "2024-09-20T00:00:00Z"
		store.UpsertChunks(ctx, []string{"september entry"}, late)

		results, err := store.Search(ctx, []float32{1, 1}, interfaces.SearchOptions{
			DateFrom: "2024-06-01T00:00:00Z",
			DateTo:   "2024-12-31T23:59:59Z",
		})
		if err != nil {
			t.Fatal(err)
		}
		assert.Len(t, results, 1)
		assert.Equal(t, "september entry", results[0].Content)
	})
}

func TestChunkService_DeleteByDocumentID(t *testing.T) {
	ctx := context.Background()

	t.Run("scan fallback removes only the target document", func(t *testing.T) {
		store, backend, _ := newChunkFixture(t)

		store.UpsertChunks(ctx, []string{"keep one", "keep two"}, testMeta())
		metaB := testMeta()
		metaB.DocumentID = "doc_gone"
		store.UpsertChunks(ctx, []string{"remove one", "remove two", "remove three"}, metaB)

		if err := store.DeleteByDocumentID(ctx, "doc_gone"); err != nil {
			t.Fatalf("DeleteByDocumentID failed: %v", err)
		}

		info, _ := backend.GetCollectionInfo(ctx, "documents")
		assert.Equal(t, 2, info.PointCount)

		page, _ := backend.Scroll(ctx, "documents", models.ScrollRequest{Limit: 10, WithPayload: true})
		for _, point := range page.Points {
			assert.Equal(t, "doc_test", point.Payload[models.FieldDocumentID])
		}
	})

	t.Run("missing collection is a no-op", func(t *testing.T) {
		store, _, _ := newChunkFixture(t)
		assert.NoError(t, store.DeleteByDocumentID(ctx, "doc_missing"))
	})

	t.Run("filtered delete path used when supported", func(t *testing.T) {
		backend := &filteredDeleteBackend{MemoryBackend: vectordb.NewMemoryBackend()}
		store := NewChunkService(backend, newMockEmbedder(), common.NewDefaultConfig(), arbor.NewLogger())

		store.UpsertChunks(ctx, []string{"chunk"}, testMeta())
		if err := store.DeleteByDocumentID(ctx, "doc_test"); err != nil {
			t.Fatal(err)
		}
		assert.True(t, backend.filterDeleteCalled, "must take the server-side path")
	})
}

// failingBackend injects upsert failures over an otherwise working memory
// backend.
type failingBackend struct {
	*vectordb.MemoryBackend
	failUpsert bool
}

func (f *failingBackend) UpsertPoints(ctx context.Context, collection string, points []models.Point) error {
	if f.failUpsert {
		return fmt.Errorf("simulated write failure")
	}
	return f.MemoryBackend.UpsertPoints(ctx, collection, points)
}

// filteredDeleteBackend claims filtered-delete support and records its use.
type filteredDeleteBackend struct {
	*vectordb.MemoryBackend
	filterDeleteCalled bool
}

func (f *filteredDeleteBackend) SupportsFilteredDelete() bool { return true }

func (f *filteredDeleteBackend) DeletePoints(ctx context.Context, collection string, selector models.PointSelector) error {
	if selector.Filter != nil {
		f.filterDeleteCalled = true
		return nil
	}
	return f.MemoryBackend.DeletePoints(ctx, collection, selector)
}
