package documents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"

	"github.com/Morningstar-08/second-brain/internal/common"
	"github.com/Morningstar-08/second-brain/internal/interfaces"
	"github.com/Morningstar-08/second-brain/internal/models"
	"github.com/Morningstar-08/second-brain/internal/vectordb"
)

func newFullDocFixture(t *testing.T) (interfaces.FullDocumentStore, *vectordb.MemoryBackend) {
	t.Helper()
	backend := vectordb.NewMemoryBackend()
	store := NewFullDocService(backend, common.NewDefaultConfig(), arbor.NewLogger())
	return store, backend
}

func sampleDoc(id string) *models.FullDocument {
	return &models.FullDocument{
		DocumentID:     id,
		Filename:       id + ".md",
		FileType:       models.FileTypeText,
		FileSize:       2048,
		UploadDate:     "2024-06-15T10:30:00Z",
		ChunkCount:     4,
		FullContent:    "the complete text of " + id,
		EmbeddingModel: "mock-embedding-001",
	}
}

func TestFullDocService_PutGet(t *testing.T) {
	ctx := context.Background()
	store, _ := newFullDocFixture(t)

	doc := sampleDoc("doc_alpha")
	if err := store.Put(ctx, doc); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, "doc_alpha")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	assert.Equal(t, doc.DocumentID, got.DocumentID)
	assert.Equal(t, doc.Filename, got.Filename)
	assert.Equal(t, doc.FileSize, got.FileSize)
	assert.Equal(t, doc.ChunkCount, got.ChunkCount)
	assert.Equal(t, doc.FullContent, got.FullContent)
}

func TestFullDocService_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	store, backend := newFullDocFixture(t)

	if err := store.Put(ctx, sampleDoc("doc_alpha")); err != nil {
		t.Fatal(err)
	}

	updated := sampleDoc("doc_alpha")
	updated.ChunkCount = 9
	updated.FullContent = "re-ingested content"
	if err := store.Put(ctx, updated); err != nil {
		t.Fatal(err)
	}

	info, err := backend.GetCollectionInfo(ctx, "full_documents")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, info.PointCount, "same document id must upsert in place")

	got, err := store.Get(ctx, "doc_alpha")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 9, got.ChunkCount)
	assert.Equal(t, "re-ingested content", got.FullContent)
}

func TestFullDocService_PutKeyCollision(t *testing.T) {
	ctx := context.Background()
	store, _ := newFullDocFixture(t)

	// "Aa" and "BB" both fold to key 2112 under the rolling hash.
	if common.DocumentKey("Aa") != common.DocumentKey("BB") {
		t.Fatal("expected Aa and BB to share a document key")
	}

	if err := store.Put(ctx, sampleDoc("Aa")); err != nil {
		t.Fatal(err)
	}

	svc := store.(*FullDocService)
	assert.Equal(t, "Aa", svc.collidingRecord(ctx, common.DocumentKey("BB"), "BB"),
		"a colliding key held by a different document must be reported")
	assert.Equal(t, "", svc.collidingRecord(ctx, common.DocumentKey("Aa"), "Aa"),
		"a key already owned by the same document is not a collision")

	if err := store.Put(ctx, sampleDoc("BB")); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "BB")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "BB", got.DocumentID)
}

func TestFullDocService_PutRequiresID(t *testing.T) {
	store, _ := newFullDocFixture(t)
	doc := sampleDoc("")
	assert.Error(t, store.Put(context.Background(), doc))
}

func TestFullDocService_GetMissing(t *testing.T) {
	ctx := context.Background()
	store, _ := newFullDocFixture(t)

	// Before any Put the collection itself is absent
	_, err := store.Get(ctx, "doc_ghost")
	assert.True(t, errors.Is(err, ErrNotFound))

	// After a Put the collection exists but the id still is not there
	if err := store.Put(ctx, sampleDoc("doc_alpha")); err != nil {
		t.Fatal(err)
	}
	_, err = store.Get(ctx, "doc_ghost")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFullDocService_List(t *testing.T) {
	ctx := context.Background()
	store, _ := newFullDocFixture(t)

	t.Run("empty store lists nothing", func(t *testing.T) {
		docs, err := store.List(ctx)
		assert.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("sorted by upload date descending without content", func(t *testing.T) {
		older := sampleDoc("doc_old")
		older.UploadDate = "2024-01-01T00:00:00Z"
		newer := sampleDoc("doc_new")
		newer.UploadDate = "2024-09-01T00:00:00Z"
		middle := sampleDoc("doc_mid")
		middle.UploadDate = "2024-05-01T00:00:00Z"

		for _, doc := range []*models.FullDocument{older, newer, middle} {
			if err := store.Put(ctx, doc); err != nil {
				t.Fatal(err)
			}
		}

		docs, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		assert.Len(t, docs, 3)
		assert.Equal(t, "doc_new", docs[0].DocumentID)
		assert.Equal(t, "doc_mid", docs[1].DocumentID)
		assert.Equal(t, "doc_old", docs[2].DocumentID)
		for _, doc := range docs {
			assert.Empty(t, doc.FullContent, "listings must not carry full content")
			assert.NotZero(t, doc.ChunkCount)
		}
	})
}

func TestFullDocService_Delete(t *testing.T) {
	ctx := context.Background()
	store, backend := newFullDocFixture(t)

	if err := store.Put(ctx, sampleDoc("doc_alpha")); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, sampleDoc("doc_beta")); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(ctx, "doc_alpha"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	info, _ := backend.GetCollectionInfo(ctx, "full_documents")
	assert.Equal(t, 1, info.PointCount)

	_, err := store.Get(ctx, "doc_alpha")
	assert.True(t, errors.Is(err, ErrNotFound))

	// Deleting again, or deleting a never-stored id, is not an error
	assert.NoError(t, store.Delete(ctx, "doc_alpha"))
	assert.NoError(t, store.Delete(ctx, "doc_never"))
}
