package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/Morningstar-08/second-brain/internal/common"
	"github.com/Morningstar-08/second-brain/internal/interfaces"
)

// ClaudeService implements the LLMService interface using the Anthropic SDK.
// Claude does not offer an embedding endpoint, so Embed always fails;
// embedding traffic stays on the Gemini provider.
type ClaudeService struct {
	config      *common.ClaudeConfig
	logger      arbor.ILogger
	client      anthropic.Client
	auditLogger interfaces.AuditLogger
	timeout     time.Duration
	maxTokens   int
}

// convertMessagesToClaude converts []interfaces.Message to Claude message
// params, extracting the first system message for the System field.
func convertMessagesToClaude(messages []interfaces.Message) ([]anthropic.MessageParam, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	claudeMessages := make([]anthropic.MessageParam, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			if systemText == "" {
				systemText = msg.Content
			}
		case "assistant":
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			claudeMessages = append(claudeMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	if len(claudeMessages) == 0 {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	return claudeMessages, systemText, nil
}

// NewClaudeService creates a new Claude LLM service instance
func NewClaudeService(config *common.Config, auditLogger interfaces.AuditLogger, logger arbor.ILogger) (*ClaudeService, error) {
	if config.Claude.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set ANTHROPIC_API_KEY or claude.api_key in config)")
	}

	timeout, err := time.ParseDuration(config.Claude.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Claude.Timeout, err)
	}

	maxTokens := config.Claude.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	client := anthropic.NewClient(
		option.WithAPIKey(config.Claude.APIKey),
	)

	service := &ClaudeService{
		config:      &config.Claude,
		logger:      logger,
		client:      client,
		auditLogger: auditLogger,
		timeout:     timeout,
		maxTokens:   maxTokens,
	}

	logger.Debug().
		Str("model", config.Claude.Model).
		Dur("timeout", timeout).
		Int("max_tokens", maxTokens).
		Msg("Claude LLM service initialized successfully")

	return service, nil
}

// Chat generates a completion response based on the conversation history.
func (s *ClaudeService) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
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

// ChatStream generates a completion, forwarding text deltas to the handler.
func (s *ClaudeService) ChatStream(ctx context.Context, messages []interfaces.Message, handler interfaces.StreamHandler) (string, error) {
	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to Claude format: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := s.buildParams(claudeMessages, systemText)

	start := time.Now()
	stream := s.client.Messages.NewStreaming(timeoutCtx, params)

	var answer strings.Builder
	for stream.Next() {
		event := stream.Current()
		switch eventVariant := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch deltaVariant := eventVariant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if deltaVariant.Text == "" {
					continue
				}
				answer.WriteString(deltaVariant.Text)
				if handler != nil {
					if err := handler(deltaVariant.Text); err != nil {
						s.audit("chat", false, time.Since(start), err)
						return "", fmt.Errorf("stream handler aborted: %w", err)
					}
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		s.audit("chat", false, time.Since(start), err)
		return "", fmt.Errorf("Claude stream failed: %w", err)
	}

	if answer.Len() == 0 {
		err := fmt.Errorf("no response generated from Claude API")
		s.audit("chat", false, time.Since(start), err)
		return "", err
	}

	s.audit("chat", true, time.Since(start), nil)
	return answer.String(), nil
}

// Embed is unsupported: Anthropic does not expose an embedding endpoint.
func (s *ClaudeService) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("claude provider does not support embeddings")
}

// HealthCheck verifies the provider responds to a minimal completion.
func (s *ClaudeService) HealthCheck(ctx context.Context) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.generateCompletion(timeoutCtx, []interfaces.Message{
		{Role: "user", Content: "ping"},
	})
	if err != nil {
		return fmt.Errorf("claude health check failed: %w", err)
	}
	return nil
}

// GetMode returns the provider mode
func (s *ClaudeService) GetMode() interfaces.LLMMode {
	return interfaces.LLMModeClaude
}

// Close releases provider resources
func (s *ClaudeService) Close() error {
	return nil
}

func (s *ClaudeService) buildParams(claudeMessages []anthropic.MessageParam, systemText string) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(s.maxTokens),
		Messages:  claudeMessages,
	}
	if s.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.config.Temperature))
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemText},
		}
	}
	return params
}

func (s *ClaudeService) generateCompletion(ctx context.Context, messages []interfaces.Message) (string, error) {
	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to Claude format: %w", err)
	}

	resp, err := s.client.Messages.New(ctx, s.buildParams(claudeMessages, systemText))
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Claude API")
	}

	return response.String(), nil
}

func (s *ClaudeService) audit(operation string, success bool, duration time.Duration, opErr error) {
	if s.auditLogger == nil {
		return
	}
	var logErr error
	if operation == "embed" {
		logErr = s.auditLogger.LogEmbed(interfaces.LLMModeClaude, success, duration, opErr)
	} else {
		logErr = s.auditLogger.LogChat(interfaces.LLMModeClaude, success, duration, opErr)
	}
	if logErr != nil {
		s.logger.Warn().Err(logErr).Str("operation", operation).Msg("Failed to write audit log entry")
	}
}
