package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/Morningstar-08/second-brain/internal/common"
	"github.com/Morningstar-08/second-brain/internal/interfaces"
	"github.com/Morningstar-08/second-brain/internal/models"
)

const systemPrompt = `You are a personal knowledge assistant. Answer the question using only the provided context from the user's documents. If the context does not contain the answer, say so plainly instead of guessing. Cite the source filename when it helps.`

// Service answers questions grounded in retrieved document chunks
type Service struct {
	search    interfaces.SearchService
	providers interfaces.ModelRouter
	config    *common.Config
	logger    arbor.ILogger
}

// NewService creates a new chat service
func NewService(search interfaces.SearchService, providers interfaces.ModelRouter, config *common.Config, logger arbor.ILogger) interfaces.ChatService {
	return &Service{
		search:    search,
		providers: providers,
		config:    config,
		logger:    logger,
	}
}

// Ask retrieves context and generates a complete answer
func (s *Service) Ask(ctx context.Context, question string, opts interfaces.ChatOptions) (*models.ChatAnswer, error) {
	provider, sources, messages, err := s.prepare(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	answer, err := provider.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	return s.buildAnswer(provider, opts, answer, sources), nil
}

// AskStream is Ask with incremental delivery of the answer text
func (s *Service) AskStream(ctx context.Context, question string, opts interfaces.ChatOptions, handler interfaces.StreamHandler) (*models.ChatAnswer, error) {
	provider, sources, messages, err := s.prepare(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	answer, err := provider.ChatStream(ctx, messages, handler)
	if err != nil {
		return nil, fmt.Errorf("chat stream failed: %w", err)
	}

	return s.buildAnswer(provider, opts, answer, sources), nil
}

func (s *Service) prepare(ctx context.Context, question string, opts interfaces.ChatOptions) (interfaces.LLMService, []models.SearchResult, []interfaces.Message, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, nil, nil, fmt.Errorf("question cannot be empty")
	}

	provider, err := s.providers.ForModel(opts.Model)
	if err != nil {
		return nil, nil, nil, err
	}

	sources, err := s.search.Search(ctx, question, interfaces.SearchOptions{
		Limit:           opts.Limit,
		DocumentID:      opts.DocumentID,
		DateFrom:        opts.DateFrom,
		DateTo:          opts.DateTo,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("retrieval failed: %w", err)
	}

	messages := []interfaces.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildPrompt(question, sources)},
	}
	return provider, sources, messages, nil
}

func (s *Service) buildAnswer(provider interfaces.LLMService, opts interfaces.ChatOptions, answer string, sources []models.SearchResult) *models.ChatAnswer {
	return &models.ChatAnswer{
		Answer:     answer,
		Model:      s.modelName(provider, opts.Model),
		Sources:    sources,
		ChunksUsed: len(sources),
	}
}

func (s *Service) modelName(provider interfaces.LLMService, override string) string {
	if override != "" {
		return override
	}
	if provider.GetMode() == interfaces.LLMModeClaude {
		return s.config.Claude.Model
	}
	return s.config.Gemini.Model
}

// buildPrompt assembles the grounded question. Each retrieved chunk is
// labeled with its source filename so the model can cite it.
func buildPrompt(question string, sources []models.SearchResult) string {
	var sb strings.Builder

	if len(sources) == 0 {
		sb.WriteString("No relevant context was found in the user's documents.\n\n")
	} else {
		sb.WriteString("Context from the user's documents:\n\n")
		for i, source := range sources {
			name := source.Filename
			if name == "" {
				name = "unknown"
			}
			sb.WriteString(fmt.Sprintf("[%d] (%s)\n%s\n\n", i+1, name, source.Content))
		}
	}

	sb.WriteString("Question: ")
	sb.WriteString(question)
	return sb.String()
}
