package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/Morningstar-08/second-brain/internal/common"
	"github.com/Morningstar-08/second-brain/internal/interfaces"
)

// Service adapts an LLM provider into the EmbeddingService interface and
// gates outbound calls with a rate limiter so batch ingestion stays inside
// provider quotas.
type Service struct {
	provider interfaces.LLMService
	limiter  *rate.Limiter
	model    string
	dim      int
	logger   arbor.ILogger
}

// NewService creates a new embedding service backed by the given provider
func NewService(provider interfaces.LLMService, config *common.Config, logger arbor.ILogger) (interfaces.EmbeddingService, error) {
	interval, err := time.ParseDuration(config.Embedding.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid embedding rate limit %q: %w", config.Embedding.RateLimit, err)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}

	return &Service{
		provider: provider,
		limiter:  limiter,
		model:    config.Embedding.Model,
		dim:      config.Embedding.Dimension,
		logger:   logger,
	}, nil
}

func (s *Service) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limiter: %w", err)
	}

	vector, err := s.provider.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if len(vector) != s.dim {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(vector), s.dim)
	}
	return vector, nil
}

// GenerateQueryEmbedding embeds search queries. The provider applies the same
// model as document embedding, which keeps query and document vectors in the
// same space.
func (s *Service) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return s.GenerateEmbedding(ctx, query)
}

func (s *Service) ModelName() string {
	return s.model
}

func (s *Service) Dimension() int {
	return s.dim
}

func (s *Service) IsAvailable(ctx context.Context) bool {
	if err := s.provider.HealthCheck(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Embedding provider health check failed")
		return false
	}
	return true
}
