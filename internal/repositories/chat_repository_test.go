package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/models"
)

func TestCanonicalPair(t *testing.T) {
	a, b := CanonicalPair(7, 3)
	assert.Equal(t, 3, a)
	assert.Equal(t, 7, b)

	a, b = CanonicalPair(3, 7)
	assert.Equal(t, 3, a)
	assert.Equal(t, 7, b)
}

func newMockChatRepo(t *testing.T) (*ChatRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewChatRepo(sqlx.NewDb(db, "sqlmock")), mock
}

func chatRow(id, user1, user2 int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "user1_id", "user2_id", "created_at", "last_activity"}).
		AddRow(id, user1, user2, now, now)
}

func TestCreateOrGetChatSelfChat(t *testing.T) {
	repo, _ := newMockChatRepo(t)

	_, _, err := repo.CreateOrGetChat(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrSelfChat)
}

func TestCreateOrGetChatReturnsExisting(t *testing.T) {
	repo, mock := newMockChatRepo(t)

	// Pair arrives reversed; the lookup must use the canonical order.
	mock.ExpectQuery("SELECT id, user1_id, user2_id, created_at, last_activity FROM chats WHERE user1_id=").
		WithArgs(3, 7).
		WillReturnRows(chatRow(9, 3, 7))

	chat, existed, err := repo.CreateOrGetChat(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, 9, chat.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrGetChatCreates(t *testing.T) {
	repo, mock := newMockChatRepo(t)

	mock.ExpectQuery("SELECT id, user1_id, user2_id, created_at, last_activity FROM chats WHERE user1_id=").
		WithArgs(1, 2).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO chats").
		WithArgs(1, 2).
		WillReturnRows(chatRow(9, 1, 2))
	mock.ExpectExec("INSERT INTO chat_settings").
		WithArgs(9, 1, models.DefaultBackground, models.DefaultBubbleColor).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO chat_settings").
		WithArgs(9, 2, models.DefaultBackground, models.DefaultBubbleColor).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	chat, existed, err := repo.CreateOrGetChat(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, 9, chat.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrGetChatLostRaceConvergesOnWinner(t *testing.T) {
	repo, mock := newMockChatRepo(t)

	// The pre-insert lookup misses, then a concurrent caller commits the row
	// first: ON CONFLICT DO NOTHING returns nothing and the fallback lookup
	// must surface the winner's chat as existing.
	mock.ExpectQuery("SELECT id, user1_id, user2_id, created_at, last_activity FROM chats WHERE user1_id=").
		WithArgs(1, 2).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO chats").
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user1_id", "user2_id", "created_at", "last_activity"}))
	mock.ExpectQuery("SELECT id, user1_id, user2_id, created_at, last_activity FROM chats WHERE user1_id=").
		WithArgs(1, 2).
		WillReturnRows(chatRow(9, 1, 2))
	mock.ExpectRollback()

	chat, existed, err := repo.CreateOrGetChat(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, 9, chat.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteChatMissing(t *testing.T) {
	repo, mock := newMockChatRepo(t)

	mock.ExpectExec("DELETE FROM chats WHERE id=").
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteChat(context.Background(), 9)
	assert.ErrorIs(t, err, ErrChatNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLastMessagePreview(t *testing.T) {
	null := sql.NullString{}
	val := func(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }

	// No messages at all: placeholder.
	assert.Equal(t, models.LastMessagePlaceholder, lastMessagePreview(null, null))
	// Normal text message.
	assert.Equal(t, "hey", lastMessagePreview(val("hey"), val(models.KindText)))
	// Captioned media previews the caption.
	assert.Equal(t, "look", lastMessagePreview(val("look"), val(models.KindImage)))
	// Caption-less media must not fall back to the placeholder.
	assert.Equal(t, "Sent an image", lastMessagePreview(val(""), val(models.KindImage)))
	assert.Equal(t, "Sent a video", lastMessagePreview(val(""), val(models.KindVideo)))
}
