package interfaces

import "context"

// LLMMode identifies which hosted provider served a request
type LLMMode string

const (
	LLMModeGemini LLMMode = "gemini"
	LLMModeClaude LLMMode = "claude"
)

// Message represents a single turn in a conversation
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// StreamHandler receives answer text incrementally as the provider produces
// it. Returning an error aborts the stream.
type StreamHandler func(delta string) error

// ModelRouter resolves a model override string to the provider serving it
type ModelRouter interface {
	ForModel(model string) (LLMService, error)
}

// LLMService provides chat completions and embeddings from a hosted provider
type LLMService interface {
	// Chat generates a completion for the conversation history
	Chat(ctx context.Context, messages []Message) (string, error)

	// ChatStream generates a completion, delivering text deltas to the
	// handler as they arrive, and returns the full accumulated answer
	ChatStream(ctx context.Context, messages []Message, handler StreamHandler) (string, error)

	// Embed generates a vector embedding for text
	Embed(ctx context.Context, text string) ([]float32, error)

	// GetMode returns the provider mode
	GetMode() LLMMode

	// HealthCheck verifies the provider is reachable
	HealthCheck(ctx context.Context) error

	// Close releases provider resources
	Close() error
}
