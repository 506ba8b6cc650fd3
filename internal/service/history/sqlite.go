package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/debunkbot/debunkbot/internal/model/chat"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    user_id TEXT NOT NULL,
    text TEXT NOT NULL,
    is_from_user INTEGER NOT NULL,
    audio_segment_ref TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_user_seq ON messages(user_id, seq);`

// SQLiteLedger persists per-user history in SQLite. The autoincrement seq
// column is the ordering authority; created_at timestamps of a user/bot pair
// appended together can collide.
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger opens (creating if needed) the database at dbPath.
func NewSQLiteLedger(dbPath string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteLedger{db: db}, nil
}

// Close releases the underlying database handle.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

// Append inserts messages in order inside one transaction, so a user/bot
// pair lands atomically or not at all.
func (l *SQLiteLedger) Append(ctx context.Context, userID string, msgs ...chat.Message) error {
	if userID == "" {
		return ErrUserRequired
	}
	if len(msgs) == 0 {
		return nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const insert = `
        INSERT INTO messages (id, user_id, text, is_from_user, audio_segment_ref, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`

	for _, msg := range msgs {
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now().UTC()
		}

		var ref sql.NullString
		if msg.AudioSegmentRef != nil {
			ref = sql.NullString{String: *msg.AudioSegmentRef, Valid: true}
		}

		if _, err := tx.ExecContext(ctx, insert, msg.ID, userID, msg.Text, msg.IsFromUser, ref, msg.CreatedAt); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}

	return tx.Commit()
}

// ReadRecent returns at most limit most recent messages, oldest-first.
func (l *SQLiteLedger) ReadRecent(ctx context.Context, userID string, limit int) ([]chat.Message, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if limit <= 0 {
		return []chat.Message{}, nil
	}

	const query = `
        SELECT id, text, is_from_user, audio_segment_ref, created_at
        FROM messages
        WHERE user_id = ?
        ORDER BY seq DESC
        LIMIT ?`

	rows, err := l.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	// Rows came back newest-first; the ledger contract is oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ReadAll returns the user's full history, oldest-first.
func (l *SQLiteLedger) ReadAll(ctx context.Context, userID string) ([]chat.Message, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	const query = `
        SELECT id, text, is_from_user, audio_segment_ref, created_at
        FROM messages
        WHERE user_id = ?
        ORDER BY seq ASC`

	rows, err := l.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// Clear removes every message for the user in one statement.
func (l *SQLiteLedger) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUserRequired
	}

	_, err := l.db.ExecContext(ctx, "DELETE FROM messages WHERE user_id = ?", userID)
	return err
}

func scanMessages(rows *sql.Rows) ([]chat.Message, error) {
	messages := make([]chat.Message, 0)
	for rows.Next() {
		var (
			msg chat.Message
			ref sql.NullString
		)
		if err := rows.Scan(&msg.ID, &msg.Text, &msg.IsFromUser, &ref, &msg.CreatedAt); err != nil {
			return nil, err
		}
		if ref.Valid {
			msg.AudioSegmentRef = &ref.String
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
