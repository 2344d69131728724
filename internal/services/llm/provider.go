package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/Morningstar-08/second-brain/internal/common"
	"github.com/Morningstar-08/second-brain/internal/interfaces"
)

// ProviderFactory creates and routes between the configured chat providers.
// Gemini is always constructed (it also serves embeddings); Claude is
// constructed lazily only when a claude model is requested and a key exists.
type ProviderFactory struct {
	config      *common.Config
	auditLogger interfaces.AuditLogger
	logger      arbor.ILogger
	gemini      *GeminiService
	claude      *ClaudeService
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(ctx context.Context, config *common.Config, auditLogger interfaces.AuditLogger, logger arbor.ILogger) (*ProviderFactory, error) {
	gemini, err := NewGeminiService(ctx, config, auditLogger, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini provider: %w", err)
	}

	f := &ProviderFactory{
		config:      config,
		auditLogger: auditLogger,
		logger:      logger,
		gemini:      gemini,
	}

	if config.Claude.APIKey != "" {
		claude, err := NewClaudeService(config, auditLogger, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize claude provider: %w", err)
		}
		f.claude = claude
	}

	return f, nil
}

// Default returns the provider selected by llm.default_provider.
func (f *ProviderFactory) Default() interfaces.LLMService {
	if f.config.LLM.DefaultProvider == "claude" && f.claude != nil {
		return f.claude
	}
	return f.gemini
}

// Embedder returns the provider used for embedding generation. Only Gemini
// exposes an embedding endpoint.
func (f *ProviderFactory) Embedder() interfaces.LLMService {
	return f.gemini
}

// ForModel routes a model override string to the owning provider.
// "claude-..." or "claude/..." selects Claude; anything else falls back to
// the default provider.
func (f *ProviderFactory) ForModel(model string) (interfaces.LLMService, error) {
	switch providerKind(model) {
	case interfaces.LLMModeClaude:
		if f.claude == nil {
			return nil, fmt.Errorf("claude model %q requested but no Anthropic API key is configured", model)
		}
		return f.claude, nil
	case interfaces.LLMModeGemini:
		return f.gemini, nil
	default:
		if model != "" {
			f.logger.Debug().Str("model", model).Msg("Unrecognized model prefix - using default provider")
		}
		return f.Default(), nil
	}
}

// providerKind classifies a model override by its leading marker. The "/"
// forms are checked as-is so "claude/..." routes to Claude regardless of
// what follows the slash. An empty result means no provider was named.
func providerKind(model string) interfaces.LLMMode {
	switch {
	case strings.HasPrefix(model, "claude"):
		return interfaces.LLMModeClaude
	case strings.HasPrefix(model, "gemini"):
		return interfaces.LLMModeGemini
	default:
		return ""
	}
}

// Close releases all provider resources.
func (f *ProviderFactory) Close() error {
	if err := f.gemini.Close(); err != nil {
		return err
	}
	if f.claude != nil {
		return f.claude.Close()
	}
	return nil
}
