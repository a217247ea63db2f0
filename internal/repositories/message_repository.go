package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions with the append-only message log.
type MessageRepository interface {
	CreateMessage(ctx context.Context, chatID int, senderID int, body string, kind string, attachmentURL string) (models.Message, error)
	ListMessages(ctx context.Context, chatID int) ([]models.Message, error)
	MarkChatRead(ctx context.Context, chatID int, readerID int) error
	GetMessage(ctx context.Context, messageID int) (models.Message, error)
	DeleteForEveryone(ctx context.Context, messageID int, senderID int) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, chat_id, sender_id, body, kind, attachment_url, is_read, sent_at`

// CreateMessage appends a message and bumps the chat's last activity in one
// transaction, so a reader never observes one without the other. GREATEST
// keeps last_activity monotonically non-decreasing under concurrent sends.
func (r *MessageRepo) CreateMessage(ctx context.Context, chatID int, senderID int, body string, kind string, attachmentURL string) (models.Message, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer tx.Rollback()

	var msg models.Message
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO messages (chat_id, sender_id, body, kind, attachment_url) VALUES ($1, $2, $3, $4, $5)
         RETURNING `+messageColumns, chatID, senderID, body, kind, attachmentURL).StructScan(&msg)
	if err != nil {
		return models.Message{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE chats SET last_activity = GREATEST(last_activity, $2) WHERE id=$1`, chatID, msg.SentAt); err != nil {
		return models.Message{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// ListMessages returns the full log of a chat, oldest first. Ties on sent_at
// break on id so ordering stays deterministic.
func (r *MessageRepo) ListMessages(ctx context.Context, chatID int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+` FROM messages WHERE chat_id=$1 ORDER BY sent_at ASC, id ASC`, chatID)
	return msgs, err
}

// MarkChatRead flips the read flag on every unread message in the chat that
// the reader did not author. The flag never reverts.
func (r *MessageRepo) MarkChatRead(ctx context.Context, chatID int, readerID int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE messages SET is_read = TRUE WHERE chat_id=$1 AND sender_id <> $2 AND is_read = FALSE`, chatID, readerID)
	return err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// DeleteForEveryone permanently removes a message for both participants. The
// sender guard lives in the statement so the delete stays a single atomic
// step; per-viewer deletion records cascade with the row.
func (r *MessageRepo) DeleteForEveryone(ctx context.Context, messageID int, senderID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id=$1 AND sender_id=$2`, messageID, senderID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}
