package handlers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

// UserGate is the slice of the user service this subsystem consumes: the
// friendship check that gates attachments and public identity lookups.
type UserGate interface {
	AreFriends(ctx context.Context, userID, otherID int) (bool, error)
	GetUser(ctx context.Context, userID int) (models.UserProfile, error)
	BulkUsers(ctx context.Context, ids []int) ([]models.UserProfile, error)
}

var bubbleColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ChatHandler manages conversation endpoints: listing, creation, display
// configuration and whole-chat deletion.
type ChatHandler struct {
	chatRepo     repositories.ChatRepository
	settingsRepo repositories.SettingsRepository
	users        UserGate
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(chatRepo repositories.ChatRepository, settingsRepo repositories.SettingsRepository, users UserGate) *ChatHandler {
	return &ChatHandler{
		chatRepo:     chatRepo,
		settingsRepo: settingsRepo,
		users:        users,
	}
}

// chatForParticipant loads the chat and verifies membership. A missing chat
// and a chat the caller does not belong to answer identically with 404, so
// the existence of other people's conversations never leaks.
func chatForParticipant(c *gin.Context, repo repositories.ChatRepository, chatID, userID int) (models.Chat, bool) {
	chat, err := repo.GetChat(c.Request.Context(), chatID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrChatNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "chat not found"})
		return models.Chat{}, false
	}
	if !chat.HasParticipant(userID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return models.Chat{}, false
	}
	return chat, true
}

// ensureParticipant is the membership check for routes that never touch the
// chat row itself. Same conflation as chatForParticipant: a missing chat and
// someone else's chat are indistinguishable.
func ensureParticipant(c *gin.Context, repo repositories.ChatRepository, chatID, userID int) bool {
	member, err := repo.IsParticipant(c.Request.Context(), chatID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat"})
		return false
	}
	if !member {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return false
	}
	return true
}

// ListChats returns the caller's conversations, most recently active first.
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := c.GetInt("userID")

	chats, err := h.chatRepo.ListChats(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chats"})
		return
	}

	otherIDs := make([]int, 0, len(chats))
	for _, chat := range chats {
		otherIDs = append(otherIDs, chat.OtherUserID)
	}

	profiles, err := h.users.BulkUsers(c.Request.Context(), otherIDs)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load user info"})
		return
	}
	profileByID := make(map[int]models.UserProfile, len(profiles))
	for _, p := range profiles {
		profileByID[p.ID] = p
	}

	type chatResponse struct {
		ChatID       int       `json:"chat_id"`
		OtherUserID  int       `json:"other_user_id"`
		Username     string    `json:"username,omitempty"`
		DisplayName  string    `json:"display_name,omitempty"`
		AvatarURL    string    `json:"avatar_url,omitempty"`
		LastMessage  string    `json:"last_message"`
		BubbleColor  string    `json:"bubble_color"`
		LastActivity time.Time `json:"last_activity"`
		UnreadCount  int       `json:"unread_count"`
	}

	responses := make([]chatResponse, 0, len(chats))
	for _, chat := range chats {
		profile := profileByID[chat.OtherUserID]
		responses = append(responses, chatResponse{
			ChatID:       chat.ChatID,
			OtherUserID:  chat.OtherUserID,
			Username:     profile.Username,
			DisplayName:  profile.DisplayName,
			AvatarURL:    profile.AvatarURL,
			LastMessage:  chat.LastMessage,
			BubbleColor:  chat.BubbleColor,
			LastActivity: chat.LastActivity,
			UnreadCount:  chat.UnreadCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{"chats": responses})
}

// StartChat creates or returns the existing conversation with another user.
// Repeating the call is harmless: the same chat comes back with existed=true.
func (h *ChatHandler) StartChat(c *gin.Context) {
	var req struct {
		OtherUserID int `json:"other_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	chat, existed, err := h.chatRepo.CreateOrGetChat(c.Request.Context(), userID, req.OtherUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrSelfChat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create chat"})
		return
	}

	status := http.StatusCreated
	if existed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"chat_id": chat.ID, "existed": existed})
}

// UpdateConfiguration writes the caller's own display settings slot. The
// other participant's slot is untouchable from here.
func (h *ChatHandler) UpdateConfiguration(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	var req struct {
		Background          string `json:"background" binding:"required"`
		BubbleColor         string `json:"bubble_color" binding:"required"`
		CustomBackgroundURL string `json:"custom_background_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !bubbleColorPattern.MatchString(req.BubbleColor) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bubble_color must be a #RRGGBB value"})
		return
	}

	userID := c.GetInt("userID")
	if !ensureParticipant(c, h.chatRepo, chatID, userID) {
		return
	}

	settings := models.ChatSettings{
		ChatID:              chatID,
		UserID:              userID,
		Background:          req.Background,
		BubbleColor:         req.BubbleColor,
		CustomBackgroundURL: req.CustomBackgroundURL,
	}
	if err := h.settingsRepo.UpsertSettings(c.Request.Context(), settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update configuration"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// GetConfiguration returns the caller's display settings for the chat.
func (h *ChatHandler) GetConfiguration(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	if !ensureParticipant(c, h.chatRepo, chatID, userID) {
		return
	}

	settings, err := h.settingsRepo.GetSettings(c.Request.Context(), chatID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load configuration"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// DeleteChat removes the conversation, its messages, deletion records and
// both configuration rows. Either participant may do this; unlike
// delete-for-everyone on a single message it is not sender-restricted.
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	if !ensureParticipant(c, h.chatRepo, chatID, userID) {
		return
	}

	if err := h.chatRepo.DeleteChat(c.Request.Context(), chatID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrChatNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not delete chat"})
		return
	}

	c.Status(http.StatusNoContent)
}
