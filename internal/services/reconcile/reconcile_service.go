package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/Morningstar-08/second-brain/internal/common"
	"github.com/Morningstar-08/second-brain/internal/interfaces"
)

// Service periodically compares the full-document records against the
// chunk-derived document listing and reports divergence. Divergence appears
// when chunk indexing failed after the record was written, or when a delete
// removed only one side.
type Service struct {
	fullDocs  interfaces.FullDocumentStore
	aggregate interfaces.AggregationService
	schedule  string
	cron      *cron.Cron
	logger    arbor.ILogger
}

// Report summarizes one reconciliation pass
type Report struct {
	Records        int      `json:"records"`
	ChunkDocuments int      `json:"chunk_documents"`
	MissingChunks  []string `json:"missing_chunks,omitempty"`
	OrphanedChunks []string `json:"orphaned_chunks,omitempty"`
	DurationMillis int64    `json:"duration_ms"`
}

// NewService creates a new reconciliation service
func NewService(fullDocs interfaces.FullDocumentStore, aggregate interfaces.AggregationService, config *common.Config, logger arbor.ILogger) *Service {
	return &Service{
		fullDocs:  fullDocs,
		aggregate: aggregate,
		schedule:  config.Reconcile.Schedule,
		cron:      cron.New(),
		logger:    logger,
	}
}

// Start registers the scheduled pass and starts the scheduler
func (s *Service) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if _, err := s.Run(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Scheduled reconciliation failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", s.schedule).Msg("Reconciliation scheduler started")
	return nil
}

// Stop halts the scheduler, waiting for a running pass to finish
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Debug().Msg("Reconciliation scheduler stopped")
}

// Run executes one reconciliation pass
func (s *Service) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	records, err := s.fullDocs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list document records: %w", err)
	}

	chunkDocs, err := s.aggregate.ListDocumentsFromChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunk documents: %w", err)
	}

	recordIDs := make(map[string]bool, len(records))
	for _, record := range records {
		recordIDs[record.DocumentID] = true
	}
	chunkIDs := make(map[string]bool, len(chunkDocs))
	for _, doc := range chunkDocs {
		chunkIDs[doc.DocumentID] = true
	}

	report := &Report{
		Records:        len(records),
		ChunkDocuments: len(chunkDocs),
	}
	for id := range recordIDs {
		if !chunkIDs[id] {
			report.MissingChunks = append(report.MissingChunks, id)
		}
	}
	for id := range chunkIDs {
		if !recordIDs[id] {
			report.OrphanedChunks = append(report.OrphanedChunks, id)
		}
	}
	report.DurationMillis = time.Since(start).Milliseconds()

	if len(report.MissingChunks) > 0 || len(report.OrphanedChunks) > 0 {
		s.logger.Warn().
			Int("records", report.Records).
			Int("chunk_documents", report.ChunkDocuments).
			Int("missing_chunks", len(report.MissingChunks)).
			Int("orphaned_chunks", len(report.OrphanedChunks)).
			Msg("Reconciliation found divergent documents")
	} else {
		s.logger.Info().
			Int("records", report.Records).
			Int("chunk_documents", report.ChunkDocuments).
			Msg("Reconciliation pass clean")
	}

	return report, nil
}
