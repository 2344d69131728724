package interfaces

import (
	"context"

	"github.com/Morningstar-08/second-brain/internal/models"
)

// SearchService is the retrieval query engine: it embeds the question, builds
// the compound filter from the options, and executes the constrained search.
type SearchService interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]models.SearchResult, error)
}
