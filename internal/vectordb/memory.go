package vectordb

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/Morningstar-08/second-brain/internal/interfaces"
	"github.com/Morningstar-08/second-brain/internal/models"
)

// MemoryBackend is a map-backed VectorBackend for development and tests. It
// deliberately reports no filtered-delete support so callers exercise the
// same scan-collect-delete fallback a constrained Qdrant deployment needs.
type MemoryBackend struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	vectorSize int
	distance   string
	points     map[uint64]models.Point
	order      []uint64 // insertion order, for stable scroll pagination
}

// NewMemoryBackend creates an empty in-memory vector store
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		collections: make(map[string]*memoryCollection),
	}
}

func (m *MemoryBackend) GetCollectionInfo(_ context.Context, name string) (*models.CollectionInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	col, ok := m.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return &models.CollectionInfo{
		VectorSize: col.vectorSize,
		Distance:   col.distance,
		PointCount: len(col.points),
	}, nil
}

func (m *MemoryBackend) CreateCollection(_ context.Context, name string, vectorSize int, distance string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.collections[name] = &memoryCollection{
		vectorSize: vectorSize,
		distance:   distance,
		points:     make(map[uint64]models.Point),
	}
	return nil
}

func (m *MemoryBackend) DeleteCollection(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.collections, name)
	return nil
}

func (m *MemoryBackend) UpsertPoints(_ context.Context, collection string, points []models.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	col, ok := m.collections[collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	for _, p := range points {
		if _, exists := col.points[p.ID]; !exists {
			col.order = append(col.order, p.ID)
		}
		col.points[p.ID] = p
	}
	return nil
}

func (m *MemoryBackend) Search(_ context.Context, collection string, req models.SearchRequest) ([]models.ScoredPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	col, ok := m.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var scored []models.ScoredPoint
	for _, id := range col.order {
		p := col.points[id]
		if !MatchesPayload(req.Filter, p.Payload) {
			continue
		}
		sp := models.ScoredPoint{ID: p.ID, Score: cosineSimilarity(req.Vector, p.Vector)}
		if req.WithPayload {
			sp.Payload = p.Payload
		}
		scored = append(scored, sp)
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (m *MemoryBackend) Scroll(_ context.Context, collection string, req models.ScrollRequest) (*models.ScrollResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	col, ok := m.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	start := 0
	if req.Offset != nil {
		switch v := req.Offset.(type) {
		case int:
			start = v
		case float64:
			start = int(v)
		default:
			return nil, fmt.Errorf("unsupported scroll offset type %T", req.Offset)
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	result := &models.ScrollResult{}
	idx := start
	for ; idx < len(col.order) && len(result.Points) < limit; idx++ {
		p := col.points[col.order[idx]]
		if !MatchesPayload(req.Filter, p.Payload) {
			continue
		}
		point := models.Point{ID: p.ID}
		if req.WithPayload {
			point.Payload = p.Payload
		}
		result.Points = append(result.Points, point)
	}
	if idx < len(col.order) {
		result.NextOffset = idx
	}
	return result, nil
}

func (m *MemoryBackend) DeletePoints(_ context.Context, collection string, selector models.PointSelector) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	col, ok := m.collections[collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	if selector.Filter != nil {
		return fmt.Errorf("filtered delete is not supported by the memory backend")
	}
	for _, id := range selector.IDs {
		if _, exists := col.points[id]; !exists {
			continue
		}
		delete(col.points, id)
		for i, ordered := range col.order {
			if ordered == id {
				col.order = append(col.order[:i], col.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (m *MemoryBackend) SupportsFilteredDelete() bool {
	return false
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ interfaces.VectorBackend = (*MemoryBackend)(nil)
