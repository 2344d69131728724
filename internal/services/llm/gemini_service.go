package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/Morningstar-08/second-brain/internal/common"
	"github.com/Morningstar-08/second-brain/internal/interfaces"
)

// GeminiService implements the LLMService interface using the Google genai
// SDK. It provides both chat completions and embeddings.
type GeminiService struct {
	config      *common.GeminiConfig
	embedding   *common.EmbeddingConfig
	logger      arbor.ILogger
	client      *genai.Client
	auditLogger interfaces.AuditLogger
	timeout     time.Duration
}

// convertMessagesToGemini converts []interfaces.Message to Gemini Content
// format. System messages are extracted separately for SystemInstruction.
func convertMessagesToGemini(messages []interfaces.Message) ([]*genai.Content, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	hasUserMessage := false
	for _, msg := range messages {
		if msg.Role == "user" {
			hasUserMessage = true
			break
		}
	}
	if !hasUserMessage {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	contents := make([]*genai.Content, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == "system" {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		geminiRole := genai.RoleUser
		if msg.Role == "assistant" {
			geminiRole = genai.RoleModel
		}

		contents = append(contents, &genai.Content{
			Role:  geminiRole,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}

	return contents, systemText, nil
}

// NewGeminiService creates a new Gemini LLM service instance. Fails fast when
// no API key is configured so callers never issue doomed network calls.
func NewGeminiService(ctx context.Context, config *common.Config, auditLogger interfaces.AuditLogger, logger arbor.ILogger) (*GeminiService, error) {
	if config.Gemini.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or gemini.api_key in config)")
	}

	timeout, err := time.ParseDuration(config.Gemini.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Gemini.Timeout, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &GeminiService{
		config:      &config.Gemini,
		embedding:   &config.Embedding,
		logger:      logger,
		client:      client,
		auditLogger: auditLogger,
		timeout:     timeout,
	}

	logger.Debug().
		Str("model", config.Gemini.Model).
		Str("embed_model", config.Embedding.Model).
		Int("embed_dim", config.Embedding.Dimension).
		Dur("timeout", timeout).
		Msg("Gemini LLM service initialized successfully")

	return service, nil
}

// Chat generates a completion response based on the conversation history.
func (s *GeminiService) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	answer, err := s.generateCompletion(timeoutCtx, messages)
	s.audit("chat", err == nil, time.Since(start), err)
	if err != nil {
		return "", err
	}
	return answer, nil
}

// ChatStream generates a completion, forwarding text deltas to the handler
// as the model produces them.
func (s *GeminiService) ChatStream(ctx context.Context, messages []interfaces.Message, handler interfaces.StreamHandler) (string, error) {
	geminiContents, systemText, err := convertMessagesToGemini(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to Gemini format: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.config.Temperature),
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	start := time.Now()
	var answer strings.Builder
	for chunk, streamErr := range s.client.Models.GenerateContentStream(timeoutCtx, s.config.Model, geminiContents, config) {
		if streamErr != nil {
			s.audit("chat", false, time.Since(start), streamErr)
			return "", fmt.Errorf("chat stream failed: %w", streamErr)
		}
		delta := chunk.Text()
		if delta == "" {
			continue
		}
		answer.WriteString(delta)
		if handler != nil {
			if err := handler(delta); err != nil {
				s.audit("chat", false, time.Since(start), err)
				return "", fmt.Errorf("stream handler aborted: %w", err)
			}
		}
	}

	if answer.Len() == 0 {
		err := fmt.Errorf("no response generated from chat model")
		s.audit("chat", false, time.Since(start), err)
		return "", err
	}

	s.audit("chat", true, time.Since(start), nil)
	return answer.String(), nil
}

// Embed generates a vector embedding for text using the configured embedding
// model. The returned vector is validated to be non-empty before success.
func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty for embedding generation")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	embedding, err := s.generateEmbedding(timeoutCtx, text)
	s.audit("embed", err == nil, time.Since(start), err)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("text_length", len(text)).
			Msg("Embedding generation failed")
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	s.logger.Debug().
		Int("text_length", len(text)).
		Int("embedding_dim", len(embedding)).
		Dur("duration", time.Since(start)).
		Msg("Generated embedding")

	return embedding, nil
}

// HealthCheck verifies the provider responds to a minimal embedding request.
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.generateEmbedding(timeoutCtx, "health check"); err != nil {
		return fmt.Errorf("gemini health check failed: %w", err)
	}
	return nil
}

// GetMode returns the provider mode
func (s *GeminiService) GetMode() interfaces.LLMMode {
	return interfaces.LLMModeGemini
}

// Close releases provider resources
func (s *GeminiService) Close() error {
	return nil
}

func (s *GeminiService) generateEmbedding(ctx context.Context, text string) ([]float32, error) {
	outputDim := int32(s.embedding.Dimension)
	embeddingConfig := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	result, err := s.client.Models.EmbedContent(ctx, s.embedding.Model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, embeddingConfig)
	if err != nil {
		return nil, err
	}

	var embedding []float32
	if result != nil && len(result.Embeddings) > 0 {
		embedding = result.Embeddings[0].Values
	}

	if len(embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned from API")
	}

	return embedding, nil
}

func (s *GeminiService) generateCompletion(ctx context.Context, messages []interfaces.Message) (string, error) {
	geminiContents, systemText, err := convertMessagesToGemini(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to Gemini format: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.config.Temperature),
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.config.Model, geminiContents, config)
	if err != nil {
		return "", fmt.Errorf("chat generation failed: %w", err)
	}

	var response strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from chat model")
	}

	return response.String(), nil
}

func (s *GeminiService) audit(operation string, success bool, duration time.Duration, opErr error) {
	if s.auditLogger == nil {
		return
	}
	var logErr error
	if operation == "embed" {
		logErr = s.auditLogger.LogEmbed(interfaces.LLMModeGemini, success, duration, opErr)
	} else {
		logErr = s.auditLogger.LogChat(interfaces.LLMModeGemini, success, duration, opErr)
	}
	if logErr != nil {
		s.logger.Warn().Err(logErr).Str("operation", operation).Msg("Failed to write audit log entry")
	}
}
