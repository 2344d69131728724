package vectordb

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/Morningstar-08/second-brain/internal/interfaces"
)

// DistanceCosine is the metric used for every chunk collection.
const DistanceCosine = "Cosine"

// CollectionManager ensures named collections exist with the expected vector
// dimensionality before any write touches them.
type CollectionManager struct {
	backend interfaces.VectorBackend
	logger  arbor.ILogger
}

// NewCollectionManager creates a new collection lifecycle manager
func NewCollectionManager(backend interfaces.VectorBackend, logger arbor.ILogger) *CollectionManager {
	return &CollectionManager{
		backend: backend,
		logger:  logger,
	}
}

// EnsureCollection guarantees that the named collection exists with exactly
// the expected vector size. A collection whose dimensionality has drifted
// (embedding model changed) is deleted and recreated. The previous points
// are unrecoverable and must be re-ingested, which is why the recreation is
// logged loudly.
func (m *CollectionManager) EnsureCollection(ctx context.Context, name string, expectedDim int, distance string) error {
	needsCreate := false

	info, err := m.backend.GetCollectionInfo(ctx, name)
	switch {
	case errors.Is(err, ErrCollectionNotFound):
		needsCreate = true
	case err != nil:
		return fmt.Errorf("failed to inspect collection %s: %w", name, err)
	case info.VectorSize != expectedDim:
		m.logger.Warn().
			Str("collection", name).
			Int("current_dim", info.VectorSize).
			Int("expected_dim", expectedDim).
			Int("points_lost", info.PointCount).
			Msg("Vector dimension drift detected - recreating collection, existing points require re-ingestion")

		if err := m.backend.DeleteCollection(ctx, name); err != nil {
			return fmt.Errorf("failed to delete drifted collection %s: %w", name, err)
		}
		needsCreate = true
	}

	if needsCreate {
		if err := m.backend.CreateCollection(ctx, name, expectedDim, distance); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
		m.logger.Info().
			Str("collection", name).
			Int("dimension", expectedDim).
			Str("distance", distance).
			Msg("Collection created")
	}

	return nil
}
