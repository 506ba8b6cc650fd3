package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/debunkbot/debunkbot/internal/model/chat"
)

// MemoryLedger keeps per-user history in process memory. Suitable for tests
// and single-instance runs without a database path configured.
type MemoryLedger struct {
	mu       sync.RWMutex
	messages map[string][]chat.Message
}

// NewMemoryLedger bootstraps an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		messages: make(map[string][]chat.Message),
	}
}

// Append adds messages to the user's history in the given order.
func (l *MemoryLedger) Append(_ context.Context, userID string, msgs ...chat.Message) error {
	if userID == "" {
		return ErrUserRequired
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, msg := range msgs {
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now().UTC()
		}
		l.messages[userID] = append(l.messages[userID], msg)
	}
	return nil
}

// ReadRecent returns at most limit most recent messages, oldest-first.
func (l *MemoryLedger) ReadRecent(_ context.Context, userID string, limit int) ([]chat.Message, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if limit <= 0 {
		return []chat.Message{}, nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	stored := l.messages[userID]
	start := 0
	if len(stored) > limit {
		start = len(stored) - limit
	}

	copied := make([]chat.Message, len(stored)-start)
	copy(copied, stored[start:])
	return copied, nil
}

// ReadAll returns the user's full history, oldest-first.
func (l *MemoryLedger) ReadAll(_ context.Context, userID string) ([]chat.Message, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	stored := l.messages[userID]
	copied := make([]chat.Message, len(stored))
	copy(copied, stored)
	return copied, nil
}

// Clear drops the user's whole history.
func (l *MemoryLedger) Clear(_ context.Context, userID string) error {
	if userID == "" {
		return ErrUserRequired
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.messages, userID)
	return nil
}
