package vectordb

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/Morningstar-08/second-brain/internal/common"
	"github.com/Morningstar-08/second-brain/internal/interfaces"
)

// NewBackend creates a vector backend based on config
func NewBackend(config *common.Config, logger arbor.ILogger) (interfaces.VectorBackend, error) {
	switch config.Qdrant.Backend {
	case "qdrant", "":
		return NewQdrantClient(&config.Qdrant, config.QdrantTimeout(), logger)
	case "memory":
		logger.Warn().Msg("Using in-memory vector backend - data will not survive restarts")
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported vector backend: %s", config.Qdrant.Backend)
	}
}
