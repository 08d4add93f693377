package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS chat_messages").WillReturnResult(sqlmock.NewResult(0, 0))
	store, err := NewSQLiteStore(sqlx.NewDb(raw, "sqlite3"))
	require.NoError(t, err)
	return store, mock
}

func TestNewSQLiteStoreSchemaError(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("read-only database"))
	_, err = NewSQLiteStore(sqlx.NewDb(raw, "sqlite3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create chat schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreInsertError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO chat_messages").WillReturnError(errors.New("disk I/O error"))

	err := store.Insert(context.Background(), Message{
		ID:        "m1",
		ChatID:    "general",
		Content:   "hello",
		Username:  "anon_abc123",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	require.Error(t, err)
	assert.EqualError(t, err, "insert chat message: disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreListDecodesRows(t *testing.T) {
	store, mock := newMockStore(t)
	cols := []string{"id", "chat_id", "content", "chat_username", "user_id", "created_at"}
	mock.ExpectQuery("SELECT id, chat_id, content, chat_username, user_id, created_at").
		WithArgs("general", 50).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("m2", "general", "second", "ada", "u-1", "2026-01-02T03:04:06.000000000Z").
			AddRow("m1", "general", "first", "anon_abc123", nil, "2026-01-02T03:04:05.000000000Z"))

	msgs, err := store.List(context.Background(), "general", 50)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Nil(t, msgs[0].UserID)
	require.NotNil(t, msgs[1].UserID)
	assert.Equal(t, "u-1", *msgs[1].UserID)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC), msgs[1].CreatedAt.UTC())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreListError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT id").WillReturnError(errors.New("database is locked"))

	_, err := store.List(context.Background(), "general", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list chat messages")
	assert.NoError(t, mock.ExpectationsWereMet())
}
