package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/Morningstar-08/second-brain/internal/common"
	"github.com/Morningstar-08/second-brain/internal/interfaces"
	"github.com/Morningstar-08/second-brain/internal/services/chat"
	"github.com/Morningstar-08/second-brain/internal/services/documents"
	"github.com/Morningstar-08/second-brain/internal/services/embeddings"
	"github.com/Morningstar-08/second-brain/internal/services/ingest"
	"github.com/Morningstar-08/second-brain/internal/services/llm"
	"github.com/Morningstar-08/second-brain/internal/services/reconcile"
	"github.com/Morningstar-08/second-brain/internal/services/search"
	badgerstore "github.com/Morningstar-08/second-brain/internal/storage/badger"
	"github.com/Morningstar-08/second-brain/internal/vectordb"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	Backend     interfaces.VectorBackend
	AuditLogger interfaces.AuditLogger
	Providers   *llm.ProviderFactory

	EmbeddingService   interfaces.EmbeddingService
	ChunkStore         interfaces.ChunkStore
	FullDocumentStore  interfaces.FullDocumentStore
	AggregationService interfaces.AggregationService
	SearchService      interfaces.SearchService
	IngestService      interfaces.IngestService
	ChatService        interfaces.ChatService
	ReconcileService   *reconcile.Service

	db *badgerstore.BadgerDB
}

// New creates and wires all application components
func New(ctx context.Context, config *common.Config, logger arbor.ILogger) (*App, error) {
	db, err := badgerstore.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audit storage: %w", err)
	}
	auditLogger := badgerstore.NewAuditStorage(db, logger)

	providers, err := llm.NewProviderFactory(ctx, config, auditLogger, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize LLM providers: %w", err)
	}

	backend, err := vectordb.NewBackend(config, logger)
	if err != nil {
		providers.Close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize vector backend: %w", err)
	}

	embedder, err := embeddings.NewService(providers.Embedder(), config, logger)
	if err != nil {
		providers.Close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize embedding service: %w", err)
	}

	chunkStore := documents.NewChunkService(backend, embedder, config, logger)
	fullDocStore := documents.NewFullDocService(backend, config, logger)
	aggregation := documents.NewAggregateService(backend, config, logger)

	searchService := search.NewService(embedder, chunkStore, logger)
	ingestService := ingest.NewService(chunkStore, fullDocStore, embedder, config, logger)
	chatService := chat.NewService(searchService, providers, config, logger)
	reconcileService := reconcile.NewService(fullDocStore, aggregation, config, logger)

	app := &App{
		Config:             config,
		Logger:             logger,
		Backend:            backend,
		AuditLogger:        auditLogger,
		Providers:          providers,
		EmbeddingService:   embedder,
		ChunkStore:         chunkStore,
		FullDocumentStore:  fullDocStore,
		AggregationService: aggregation,
		SearchService:      searchService,
		IngestService:      ingestService,
		ChatService:        chatService,
		ReconcileService:   reconcileService,
		db:                 db,
	}

	if config.Reconcile.Enabled {
		if err := reconcileService.Start(); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to start reconciler: %w", err)
		}
	}

	logger.Info().
		Str("backend", config.Qdrant.Backend).
		Str("chunk_collection", config.Storage.ChunkCollection).
		Str("document_collection", config.Storage.DocumentCollection).
		Str("default_provider", config.LLM.DefaultProvider).
		Msg("Application initialized")

	return app, nil
}

// Close releases all application resources in reverse dependency order
func (a *App) Close() {
	if a.Config.Reconcile.Enabled && a.ReconcileService != nil {
		a.ReconcileService.Stop()
	}
	if a.Providers != nil {
		if err := a.Providers.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM providers")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close audit storage")
		}
	}
	a.Logger.Info().Msg("Application shut down")
}
