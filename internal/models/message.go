package models

import "time"

// Message kinds. Image and video messages carry an attachment reference and
// may only be sent between confirmed friends.
const (
	KindText  = "text"
	KindImage = "image"
	KindVideo = "video"
)

// ValidKind reports whether kind is one of the supported message kinds.
func ValidKind(kind string) bool {
	return kind == KindText || kind == KindImage || kind == KindVideo
}

// Message is one immutable unit of content in a chat. IsRead flips false→true
// once the other participant loads the chat and never reverts. Removal is
// either per-viewer (message_deletions rows) or permanent (row delete).
type Message struct {
	ID            int       `db:"id" json:"id"`
	ChatID        int       `db:"chat_id" json:"chat_id"`
	SenderID      int       `db:"sender_id" json:"sender_id"`
	Body          string    `db:"body" json:"body"`
	Kind          string    `db:"kind" json:"kind"`
	AttachmentURL string    `db:"attachment_url" json:"attachment_url,omitempty"`
	IsRead        bool      `db:"is_read" json:"is_read"`
	SentAt        time.Time `db:"sent_at" json:"sent_at"`
}

// MessageDeletion records that one viewer no longer sees one message. Creating
// the same pair twice is a no-op, not an error.
type MessageDeletion struct {
	MessageID int `db:"message_id" json:"message_id"`
	UserID    int `db:"user_id" json:"user_id"`
}
