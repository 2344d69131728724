package interfaces

import (
	"context"

	"github.com/Morningstar-08/second-brain/internal/models"
)

// ChatOptions scopes a retrieval-augmented chat turn.
type ChatOptions struct {
	// DocumentID restricts retrieval to one document
	DocumentID string

	// DateFrom / DateTo bound retrieval by upload date
	DateFrom string
	DateTo   string

	// Model overrides the default model ("claude-..." routes to Claude,
	// "gemini-..." to Gemini)
	Model string

	// Limit caps the retrieved context chunks (default 5)
	Limit int
}

// ChatService answers user questions grounded in retrieved chunks.
type ChatService interface {
	// Ask retrieves context and generates a complete answer.
	Ask(ctx context.Context, question string, opts ChatOptions) (*models.ChatAnswer, error)

	// AskStream is Ask with incremental answer delivery.
	AskStream(ctx context.Context, question string, opts ChatOptions, handler StreamHandler) (*models.ChatAnswer, error)
}
