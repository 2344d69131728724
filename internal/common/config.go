package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Qdrant      QdrantConfig    `toml:"qdrant"`
	Storage     StorageConfig   `toml:"storage"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
	Embedding   EmbeddingConfig `toml:"embedding"`
	Chunking    ChunkingConfig  `toml:"chunking"`
	Reconcile   ReconcileConfig `toml:"reconcile"`
	Logging     LoggingConfig   `toml:"logging"`
}

// QdrantConfig contains connection settings for the vector backend
type QdrantConfig struct {
	URL     string `toml:"url" validate:"required_if=Backend qdrant"`
	APIKey  string `toml:"api_key"`
	Timeout string `toml:"timeout"` // e.g. "10s"

	// SupportsFilteredDelete declares whether the deployment accepts
	// filter-based point deletes. Without a payload index some deployments
	// reject them, forcing the scan-collect-delete fallback.
	SupportsFilteredDelete bool `toml:"supports_filtered_delete"`

	// Backend selects the vector store implementation: "qdrant" or "memory"
	Backend string `toml:"backend" validate:"oneof=qdrant memory"`
}

// StorageConfig contains local storage settings
type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`

	// Collection names for the two logical tables kept on the vector backend
	ChunkCollection    string `toml:"chunk_collection" validate:"required"`
	DocumentCollection string `toml:"document_collection" validate:"required"`
}

// BadgerConfig represents BadgerDB-specific configuration (audit trail storage)
type BadgerConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// LLMConfig selects the default chat provider
type LLMConfig struct {
	DefaultProvider string `toml:"default_provider" validate:"oneof=gemini claude"`
}

// EmbeddingConfig configures the embedding provider adapter
type EmbeddingConfig struct {
	Model     string `toml:"model"`
	Dimension int    `toml:"dimension" validate:"gt=0"`
	RateLimit string `toml:"rate_limit"` // min interval between provider calls, e.g. "250ms"
}

// ChunkingConfig configures the text chunker
type ChunkingConfig struct {
	Size    int `toml:"size" validate:"gt=0"`     // words per chunk
	Overlap int `toml:"overlap" validate:"gte=0"` // words shared between neighbours
}

// ReconcileConfig schedules the chunk-store vs document-store consistency sweep
type ReconcileConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // cron format
}

// LoggingConfig configures arbor output
type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig returns the configuration used when no file or overrides
// are present.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Qdrant: QdrantConfig{
			URL:                    "http://localhost:6333",
			Timeout:                "10s",
			SupportsFilteredDelete: true,
			Backend:                "qdrant",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/audit",
			},
			ChunkCollection:    "documents",
			DocumentCollection: "full_documents",
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.0-flash",
			Timeout:     "5m",
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   8192,
			Timeout:     "5m",
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			DefaultProvider: "gemini",
		},
		Embedding: EmbeddingConfig{
			Model:     "text-embedding-004",
			Dimension: 768,
			RateLimit: "250ms",
		},
		Chunking: ChunkingConfig{
			Size:    200,
			Overlap: 40,
		},
		Reconcile: ReconcileConfig{
			Enabled:  false,
			Schedule: "0 */6 * * *",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadConfig loads configuration with priority: defaults -> file -> env.
// An empty path skips the file stage.
func LoadConfig(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks structural constraints on the loaded configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for _, d := range []string{c.Qdrant.Timeout, c.Gemini.Timeout, c.Claude.Timeout} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid timeout duration '%s': %w", d, err)
		}
	}
	if c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking overlap (%d) must be smaller than chunk size (%d)", c.Chunking.Overlap, c.Chunking.Size)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SECONDBRAIN_ENV"); env != "" {
		config.Environment = env
	}

	if url := os.Getenv("QDRANT_URL"); url != "" {
		config.Qdrant.URL = url
	}
	if apiKey := os.Getenv("QDRANT_API_KEY"); apiKey != "" {
		config.Qdrant.APIKey = apiKey
	}
	if backend := os.Getenv("SECONDBRAIN_VECTOR_BACKEND"); backend != "" {
		config.Qdrant.Backend = backend
	}

	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if provider := os.Getenv("SECONDBRAIN_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = provider
	}

	if model := os.Getenv("SECONDBRAIN_EMBEDDING_MODEL"); model != "" {
		config.Embedding.Model = model
	}
	if dim := os.Getenv("SECONDBRAIN_EMBEDDING_DIMENSION"); dim != "" {
		if d, err := strconv.Atoi(dim); err == nil && d > 0 {
			config.Embedding.Dimension = d
		}
	}

	if path := os.Getenv("SECONDBRAIN_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}

	if level := os.Getenv("SECONDBRAIN_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// QdrantTimeout returns the parsed backend request timeout.
func (c *Config) QdrantTimeout() time.Duration {
	d, err := time.ParseDuration(c.Qdrant.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}
