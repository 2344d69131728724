package common

import (
	"encoding/binary"
	"math"

	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID with the "doc_" prefix
// Format: doc_<uuid>
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewChunkPointID returns a fresh numeric point id for a chunk, derived from a
// random UUID so ids do not collide the way unchecked random ints would.
func NewChunkPointID() uint64 {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[:8])
}

// DocumentKey maps a string document id to the numeric key used for its
// full-document record. It is a polynomial rolling hash folded into a 32-bit
// signed int with the absolute value taken: pure and total, so the same id
// always produces the same key and re-ingestion upserts instead of
// duplicating. Distinct ids can collide; readers resolve by the payload
// documentId field, never by this key.
func DocumentKey(documentID string) uint64 {
	var h int32
	for _, c := range documentID {
		h = h*31 + int32(c)
	}
	// MinInt32 negates to itself, so it maps to 0 instead of a
	// sign-extended uint64.
	if h == math.MinInt32 {
		h = 0
	} else if h < 0 {
		h = -h
	}
	return uint64(h)
}
