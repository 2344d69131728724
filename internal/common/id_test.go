package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDocumentID(t *testing.T) {
	id := NewDocumentID()
	assert.True(t, strings.HasPrefix(id, "doc_"))

	other := NewDocumentID()
	assert.NotEqual(t, id, other)
}

func TestNewChunkPointID(t *testing.T) {
	seen := make(map[uint64]bool)
	for i := 0; i < 1000; i++ {
		id := NewChunkPointID()
		if seen[id] {
			t.Fatalf("duplicate chunk point id after %d draws: %d", i, id)
		}
		seen[id] = true
	}
}

func TestDocumentKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, DocumentKey("doc_abc"), DocumentKey("doc_abc"))
	})

	t.Run("distinct ids usually map to distinct keys", func(t *testing.T) {
		assert.NotEqual(t, DocumentKey("doc_abc"), DocumentKey("doc_abd"))
	})

	t.Run("fits a non-negative int32", func(t *testing.T) {
		ids := []string{"", "a", "doc_123", strings.Repeat("x", 500), "doc_9f8e7d6c"}
		for _, id := range ids {
			key := DocumentKey(id)
			assert.LessOrEqual(t, key, uint64(1<<31), "key for %q overflows int32 range", id)
		}
	})

	t.Run("empty id hashes to zero", func(t *testing.T) {
		assert.Equal(t, uint64(0), DocumentKey(""))
	})

	t.Run("minimum int32 hash stays in range", func(t *testing.T) {
		// "sA9lahA9" folds to exactly math.MinInt32, which negation
		// cannot flip positive.
		key := DocumentKey("sA9lahA9")
		assert.Equal(t, uint64(0), key)
		assert.Less(t, key, uint64(1<<31))
	})
}
