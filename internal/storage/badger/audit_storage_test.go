package badger

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"

	"github.com/Morningstar-08/second-brain/internal/common"
	"github.com/Morningstar-08/second-brain/internal/interfaces"
)

func newTestAuditStorage(t *testing.T) interfaces.AuditLogger {
	t.Helper()
	logger := arbor.NewLogger()
	db, err := NewBadgerDB(logger, &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "audit"),
	})
	if err != nil {
		t.Fatalf("NewBadgerDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewAuditStorage(db, logger)
}

func TestAuditStorage_LogAndGet(t *testing.T) {
	storage := newTestAuditStorage(t)

	if err := storage.LogEmbed(interfaces.LLMModeGemini, true, 120*time.Millisecond, nil); err != nil {
		t.Fatalf("LogEmbed failed: %v", err)
	}
	if err := storage.LogChat(interfaces.LLMModeClaude, false, 2*time.Second, fmt.Errorf("rate limited")); err != nil {
		t.Fatalf("LogChat failed: %v", err)
	}

	logs, err := storage.GetLogs(10)
	if err != nil {
		t.Fatalf("GetLogs failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}

	// Newest first
	assert.Equal(t, "chat", logs[0].Operation)
	assert.Equal(t, "claude", logs[0].Mode)
	assert.False(t, logs[0].Success)
	assert.Equal(t, "rate limited", logs[0].Error)
	assert.Equal(t, int64(2000), logs[0].Duration)

	assert.Equal(t, "embed", logs[1].Operation)
	assert.Equal(t, "gemini", logs[1].Mode)
	assert.True(t, logs[1].Success)
	assert.Empty(t, logs[1].Error)
}

func TestAuditStorage_GetLogsLimit(t *testing.T) {
	storage := newTestAuditStorage(t)

	for i := 0; i < 5; i++ {
		if err := storage.LogEmbed(interfaces.LLMModeGemini, true, time.Millisecond, nil); err != nil {
			t.Fatal(err)
		}
	}

	logs, err := storage.GetLogs(3)
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, logs, 3)

	all, err := storage.GetLogs(0)
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, all, 5)
}
