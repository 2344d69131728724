package interfaces

import (
	"time"

	"github.com/Morningstar-08/second-brain/internal/models"
)

// AuditLogger records every provider call (mode, outcome, latency) so cost
// and failure patterns stay observable without scraping application logs.
type AuditLogger interface {
	LogEmbed(mode LLMMode, success bool, duration time.Duration, err error) error
	LogChat(mode LLMMode, success bool, duration time.Duration, err error) error
	GetLogs(limit int) ([]models.AuditLog, error)
	Close() error
}
