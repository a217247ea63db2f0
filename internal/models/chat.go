package models

import "time"

// DefaultBackground and DefaultBubbleColor seed both settings slots when a
// chat is created.
const (
	DefaultBackground  = "default"
	DefaultBubbleColor = "#3b82f6"
)

// LastMessagePlaceholder is shown in chat lists before any message exists.
const LastMessagePlaceholder = "Start the conversation"

// Chat represents a private conversation between exactly two users. The pair
// is stored canonicalized (user1_id < user2_id) so the unique constraint
// covers the unordered pair.
type Chat struct {
	ID           int       `db:"id" json:"id"`
	User1ID      int       `db:"user1_id" json:"user1_id"`
	User2ID      int       `db:"user2_id" json:"user2_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	LastActivity time.Time `db:"last_activity" json:"last_activity"`
}

// OtherParticipant returns the participant that is not userID.
func (c Chat) OtherParticipant(userID int) int {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// HasParticipant reports whether userID belongs to the chat.
func (c Chat) HasParticipant(userID int) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// ChatSummary is one entry of a user's chat list.
type ChatSummary struct {
	ChatID       int       `db:"id" json:"chat_id"`
	OtherUserID  int       `json:"other_user_id"`
	LastMessage  string    `db:"last_message" json:"last_message"`
	BubbleColor  string    `db:"bubble_color" json:"bubble_color"`
	LastActivity time.Time `db:"last_activity" json:"last_activity"`
	UnreadCount  int       `db:"unread_count" json:"unread_count"`
}

// ChatSettings is one participant's display configuration for a chat. The two
// slots are independent rows; a participant can never read or overwrite the
// other side's settings.
type ChatSettings struct {
	ChatID              int    `db:"chat_id" json:"chat_id"`
	UserID              int    `db:"user_id" json:"user_id"`
	Background          string `db:"background" json:"background"`
	BubbleColor         string `db:"bubble_color" json:"bubble_color"`
	CustomBackgroundURL string `db:"custom_background_url" json:"custom_background_url,omitempty"`
}

// UserProfile is the public identity served by the user gate.
type UserProfile struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}
