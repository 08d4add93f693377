// Package chat implements anonymous realtime chat rooms: messages persisted
// in SQLite and fanned out to live subscribers of the same room.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/joelkehle/justplanit/internal/storage"
)

type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Content   string    `json:"content"`
	Username  string    `json:"chat_username"`
	UserID    *string   `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type messageRow struct {
	ID        string  `db:"id"`
	ChatID    string  `db:"chat_id"`
	Content   string  `db:"content"`
	Username  string  `db:"chat_username"`
	UserID    *string `db:"user_id"`
	CreatedAt string  `db:"created_at"`
}

func (r messageRow) message() Message {
	return Message{
		ID:        r.ID,
		ChatID:    r.ChatID,
		Content:   r.Content,
		Username:  r.Username,
		UserID:    r.UserID,
		CreatedAt: storage.ParseTime(r.CreatedAt),
	}
}

const Schema = `
CREATE TABLE IF NOT EXISTS chat_messages (
	id            TEXT PRIMARY KEY,
	chat_id       TEXT NOT NULL,
	content       TEXT NOT NULL,
	chat_username TEXT NOT NULL,
	user_id       TEXT,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS chat_messages_chat_created ON chat_messages (chat_id, created_at);
`

type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore applies the chat schema to db. The caller owns db.
func NewSQLiteStore(db *sqlx.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("create chat schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, m Message) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO chat_messages (id, chat_id, content, chat_username, user_id, created_at)
		VALUES (:id, :chat_id, :content, :chat_username, :user_id, :created_at)`,
		messageRow{
			ID:        m.ID,
			ChatID:    m.ChatID,
			Content:   m.Content,
			Username:  m.Username,
			UserID:    m.UserID,
			CreatedAt: storage.FormatTime(m.CreatedAt),
		})
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

// List returns the room's latest limit messages, oldest first. Ties on
// created_at keep insertion order. A non-positive limit returns everything.
func (s *SQLiteStore) List(ctx context.Context, chatID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []messageRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, chat_id, content, chat_username, user_id, created_at
		FROM chat_messages
		WHERE chat_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	out := make([]Message, len(rows))
	for i, r := range rows {
		out[len(rows)-1-i] = r.message()
	}
	return out, nil
}
