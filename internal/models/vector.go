package models

// Point is the backend's atomic storage unit: a numeric id, a vector, and an
// arbitrary payload map.
type Point struct {
	ID      uint64         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload,omitempty"`
}

// ScoredPoint is a point returned by a similarity search, ordered by
// descending score.
type ScoredPoint struct {
	ID      uint64         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload,omitempty"`
}

// CollectionInfo describes a named collection as reported by the backend.
type CollectionInfo struct {
	VectorSize int    `json:"vector_size"`
	Distance   string `json:"distance"`
	PointCount int    `json:"point_count"`
}

// Filter is the backend's native filter shape: a conjunction of conditions.
// Build it through the vectordb predicate combinators rather than by hand so
// field names stay consistent with the persisted payload schema.
type Filter struct {
	Must []Condition `json:"must,omitempty"`
}

// Condition matches a payload field either exactly or against a range.
// Range bounds are RFC3339 strings; lexicographic comparison is chronological
// as long as ingestion writes fixed-width UTC timestamps.
type Condition struct {
	Key   string      `json:"key"`
	Match *MatchValue `json:"match,omitempty"`
	Range *RangeValue `json:"range,omitempty"`
}

type MatchValue struct {
	Value any `json:"value"`
}

type RangeValue struct {
	GTE string `json:"gte,omitempty"`
	LTE string `json:"lte,omitempty"`
}

// SearchRequest asks for the nearest points to Vector, optionally constrained
// by a filter.
type SearchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	Filter      *Filter   `json:"filter,omitempty"`
	WithPayload bool      `json:"with_payload"`
}

// ScrollRequest pages through a collection. Offset is the cursor returned by
// the previous page; nil starts from the beginning.
type ScrollRequest struct {
	Limit       int     `json:"limit"`
	Offset      any     `json:"offset,omitempty"`
	Filter      *Filter `json:"filter,omitempty"`
	WithPayload bool    `json:"with_payload"`
}

// ScrollResult is one page of points. NextOffset is nil at the end of the
// collection.
type ScrollResult struct {
	Points     []Point `json:"points"`
	NextOffset any     `json:"next_page_offset"`
}

// PointSelector addresses points for deletion, either by explicit ids or by a
// server-side filter. Exactly one of the two should be set.
type PointSelector struct {
	IDs    []uint64 `json:"points,omitempty"`
	Filter *Filter  `json:"filter,omitempty"`
}
