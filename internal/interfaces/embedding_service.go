package interfaces

import "context"

// EmbeddingService generates vector embeddings
type EmbeddingService interface {
	// Generate embedding for raw document text
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// Generate query embedding (may use a different task hint than document embedding)
	GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error)

	// Get model information
	ModelName() string
	Dimension() int

	// Check if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}
