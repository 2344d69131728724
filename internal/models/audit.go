package models

import "time"

// AuditLog is one recorded LLM or embedding provider call.
type AuditLog struct {
	ID        uint64    `json:"id" badgerhold:"key"`
	Timestamp time.Time `json:"timestamp"`
	Mode      string    `json:"mode"`      // provider: "gemini", "claude"
	Operation string    `json:"operation"` // "embed" or "chat"
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Duration  int64     `json:"duration_ms"`
}
