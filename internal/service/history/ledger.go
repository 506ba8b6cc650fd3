// Package history stores the per-user conversation ledger: an append-only
// sequence of messages, read back in bounded recent slices for context and
// cleared only as a whole.
package history

import (
	"context"
	"errors"

	"github.com/debunkbot/debunkbot/internal/model/chat"
)

var ErrUserRequired = errors.New("user id is required")

// Ledger is the contract the rest of the service relies on. For a single
// user, ReadRecent and ReadAll return messages in append order.
type Ledger interface {
	// Append adds messages to the end of the user's history, assigning IDs
	// and timestamps where missing. All-or-nothing for multi-message calls.
	Append(ctx context.Context, userID string, msgs ...chat.Message) error

	// ReadRecent returns at most limit of the user's most recent messages,
	// oldest-first. An unknown user yields an empty slice, not an error.
	ReadRecent(ctx context.Context, userID string, limit int) ([]chat.Message, error)

	// ReadAll returns the user's full history, oldest-first.
	ReadAll(ctx context.Context, userID string) ([]chat.Message, error)

	// Clear atomically removes every message for the user.
	Clear(ctx context.Context, userID string) error
}
