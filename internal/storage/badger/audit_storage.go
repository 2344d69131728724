package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/Morningstar-08/second-brain/internal/interfaces"
	"github.com/Morningstar-08/second-brain/internal/models"
)

// AuditStorage implements the AuditLogger interface for Badger
type AuditStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAuditStorage creates a new AuditStorage instance
func NewAuditStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AuditLogger {
	return &AuditStorage{
		db:     db,
		logger: logger,
	}
}

func (s *AuditStorage) LogEmbed(mode interfaces.LLMMode, success bool, duration time.Duration, err error) error {
	return s.insert(mode, "embed", success, duration, err)
}

func (s *AuditStorage) LogChat(mode interfaces.LLMMode, success bool, duration time.Duration, err error) error {
	return s.insert(mode, "chat", success, duration, err)
}

func (s *AuditStorage) insert(mode interfaces.LLMMode, operation string, success bool, duration time.Duration, callErr error) error {
	entry := models.AuditLog{
		Timestamp: time.Now().UTC(),
		Mode:      string(mode),
		Operation: operation,
		Success:   success,
		Duration:  duration.Milliseconds(),
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}

	if err := s.db.Store().Insert(badgerhold.NextSequence(), &entry); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

// GetLogs returns the most recent audit entries, newest first.
func (s *AuditStorage) GetLogs(limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	query := badgerhold.Where(badgerhold.Key).Ge(uint64(0)).SortBy("Timestamp").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := s.db.Store().Find(&logs, query); err != nil {
		return nil, fmt.Errorf("failed to get audit logs: %w", err)
	}
	return logs, nil
}

func (s *AuditStorage) Close() error {
	return nil
}
