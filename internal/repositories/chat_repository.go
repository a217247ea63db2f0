package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var (
	ErrChatNotFound = errors.New("chat not found")
	ErrSelfChat     = errors.New("cannot start a chat with yourself")
)

// ChatRepository abstracts chat persistence.
type ChatRepository interface {
	CreateOrGetChat(ctx context.Context, userID int, otherID int) (models.Chat, bool, error)
	GetChat(ctx context.Context, chatID int) (models.Chat, error)
	IsParticipant(ctx context.Context, chatID int, userID int) (bool, error)
	ListChats(ctx context.Context, userID int) ([]models.ChatSummary, error)
	DeleteChat(ctx context.Context, chatID int) error
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// CanonicalPair orders two user ids lower-id-first, matching how chat rows
// are stored.
func CanonicalPair(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

const chatColumns = `id, user1_id, user2_id, created_at, last_activity`

// CreateOrGetChat returns the chat between the two users, creating it if
// needed. The second return value reports whether the chat already existed.
// Concurrent calls for the same pair converge on one row: the insert uses ON
// CONFLICT DO NOTHING and falls back to a lookup when another request won the
// race.
func (r *ChatRepo) CreateOrGetChat(ctx context.Context, userID int, otherID int) (models.Chat, bool, error) {
	if userID == otherID {
		return models.Chat{}, false, ErrSelfChat
	}
	user1, user2 := CanonicalPair(userID, otherID)

	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT `+chatColumns+` FROM chats WHERE user1_id=$1 AND user2_id=$2`, user1, user2)
	if err == nil {
		return chat, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, false, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Chat{}, false, err
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx,
		`INSERT INTO chats (user1_id, user2_id) VALUES ($1, $2)
         ON CONFLICT (user1_id, user2_id) DO NOTHING
         RETURNING `+chatColumns, user1, user2).StructScan(&chat)
	if errors.Is(err, sql.ErrNoRows) {
		// Lost the race; the other side's insert committed first.
		if err := r.db.GetContext(ctx, &chat, `SELECT `+chatColumns+` FROM chats WHERE user1_id=$1 AND user2_id=$2`, user1, user2); err != nil {
			return models.Chat{}, false, err
		}
		return chat, true, nil
	}
	if err != nil {
		return models.Chat{}, false, err
	}

	for _, participant := range []int{user1, user2} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chat_settings (chat_id, user_id, background, bubble_color) VALUES ($1, $2, $3, $4)`,
			chat.ID, participant, models.DefaultBackground, models.DefaultBubbleColor); err != nil {
			return models.Chat{}, false, fmt.Errorf("seed chat settings: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Chat{}, false, err
	}
	return chat, false, nil
}

// GetChat fetches a chat by id.
func (r *ChatRepo) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT `+chatColumns+` FROM chats WHERE id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// IsParticipant checks whether a user belongs to the chat.
func (r *ChatRepo) IsParticipant(ctx context.Context, chatID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM chats WHERE id=$1 AND (user1_id=$2 OR user2_id=$2))`, chatID, userID)
	return exists, err
}

// ListChats returns every chat the user participates in, annotated with the
// last message preview, the caller's bubble color and the count of messages
// from the other side the caller has not read yet. Ordered by last activity,
// most recent first.
func (r *ChatRepo) ListChats(ctx context.Context, userID int) ([]models.ChatSummary, error) {
	query := `SELECT c.id, c.user1_id, c.user2_id, c.last_activity,
            COALESCE(s.bubble_color, $2) AS bubble_color,
            lm.body AS last_body, lm.kind AS last_kind,
            (SELECT COUNT(*) FROM messages m WHERE m.chat_id = c.id
                AND m.sender_id <> $1 AND m.is_read = FALSE) AS unread_count
        FROM chats c
        LEFT JOIN chat_settings s ON s.chat_id = c.id AND s.user_id = $1
        LEFT JOIN LATERAL (SELECT m.body, m.kind FROM messages m WHERE m.chat_id = c.id
            ORDER BY m.sent_at DESC, m.id DESC LIMIT 1) lm ON TRUE
        WHERE c.user1_id = $1 OR c.user2_id = $1
        ORDER BY c.last_activity DESC`

	rows, err := r.db.QueryxContext(ctx, query, userID, models.DefaultBubbleColor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.ChatSummary
	for rows.Next() {
		var row struct {
			ChatID       int            `db:"id"`
			User1ID      int            `db:"user1_id"`
			User2ID      int            `db:"user2_id"`
			LastActivity time.Time      `db:"last_activity"`
			BubbleColor  string         `db:"bubble_color"`
			LastBody     sql.NullString `db:"last_body"`
			LastKind     sql.NullString `db:"last_kind"`
			UnreadCount  int            `db:"unread_count"`
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		summary := models.ChatSummary{
			ChatID:       row.ChatID,
			OtherUserID:  row.User1ID,
			LastMessage:  lastMessagePreview(row.LastBody, row.LastKind),
			BubbleColor:  row.BubbleColor,
			LastActivity: row.LastActivity,
			UnreadCount:  row.UnreadCount,
		}
		if summary.OtherUserID == userID {
			summary.OtherUserID = row.User2ID
		}
		result = append(result, summary)
	}
	return result, rows.Err()
}

// lastMessagePreview renders the chat-list preview line. The placeholder is
// reserved for chats with no messages at all; a NULL body means the lateral
// join found no row. An existing media message without a caption previews by
// its kind instead of falling through to the placeholder.
func lastMessagePreview(body, kind sql.NullString) string {
	if !body.Valid {
		return models.LastMessagePlaceholder
	}
	if body.String != "" {
		return body.String
	}
	switch kind.String {
	case models.KindImage:
		return "Sent an image"
	case models.KindVideo:
		return "Sent a video"
	}
	return ""
}

// DeleteChat removes a chat and, through cascades, all of its messages,
// per-viewer deletion records and both settings rows.
func (r *ChatRepo) DeleteChat(ctx context.Context, chatID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chats WHERE id=$1`, chatID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrChatNotFound
	}
	return nil
}
