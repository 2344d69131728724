package interfaces

import (
	"context"

	"github.com/Morningstar-08/second-brain/internal/models"
)

// VectorBackend is the point-level contract this application needs from a
// similarity-search store. It deliberately mirrors the primitives of the
// Qdrant HTTP API so the production implementation is a thin client; the
// in-memory implementation exists for development and tests.
type VectorBackend interface {
	// GetCollectionInfo returns the collection descriptor, or ErrNotFound
	// when the collection does not exist.
	GetCollectionInfo(ctx context.Context, name string) (*models.CollectionInfo, error)

	// CreateCollection creates a collection with the given vector size and
	// distance metric ("Cosine", "Euclid", "Dot").
	CreateCollection(ctx context.Context, name string, vectorSize int, distance string) error

	// DeleteCollection destroys the collection and every point in it.
	DeleteCollection(ctx context.Context, name string) error

	// UpsertPoints writes the points in a single batch, overwriting points
	// whose ids already exist.
	UpsertPoints(ctx context.Context, collection string, points []models.Point) error

	// Search returns the nearest points ordered by descending score.
	Search(ctx context.Context, collection string, req models.SearchRequest) ([]models.ScoredPoint, error)

	// Scroll pages through the collection; the returned NextOffset is nil at
	// the end.
	Scroll(ctx context.Context, collection string, req models.ScrollRequest) (*models.ScrollResult, error)

	// DeletePoints removes points by id list or by server-side filter.
	DeletePoints(ctx context.Context, collection string, selector models.PointSelector) error

	// SupportsFilteredDelete reports whether DeletePoints accepts a filter
	// selector. Deployments without payload indexes do not, and callers must
	// fall back to scan-collect-delete.
	SupportsFilteredDelete() bool
}
