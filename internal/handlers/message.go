package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"messaging-service/internal/attachments"
	"messaging-service/internal/models"
	"messaging-service/internal/notify"
	"messaging-service/internal/observability"
	"messaging-service/internal/repositories"
	"messaging-service/internal/visibility"
)

// MessageHandler manages the message log of a chat: sending, listing with the
// mark-read side effect, per-viewer hiding and permanent deletion.
type MessageHandler struct {
	chatRepo     repositories.ChatRepository
	messageRepo  repositories.MessageRepository
	deletionRepo repositories.DeletionRepository
	users        UserGate
	emitter      *notify.Emitter
	store        attachments.Store
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(
	chatRepo repositories.ChatRepository,
	messageRepo repositories.MessageRepository,
	deletionRepo repositories.DeletionRepository,
	users UserGate,
	emitter *notify.Emitter,
	store attachments.Store,
) *MessageHandler {
	return &MessageHandler{
		chatRepo:     chatRepo,
		messageRepo:  messageRepo,
		deletionRepo: deletionRepo,
		users:        users,
		emitter:      emitter,
		store:        store,
	}
}

// GetChatMessages returns the messages the caller sees, oldest first.
//
// Side effect: every unread message authored by the other participant is
// marked read before the list is built. This is deliberately a write on a GET
// — loading the chat is what "reading" means here.
func (h *MessageHandler) GetChatMessages(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	if !ensureParticipant(c, h.chatRepo, chatID, userID) {
		return
	}

	ctx := c.Request.Context()
	if err := h.messageRepo.MarkChatRead(ctx, chatID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update read state"})
		return
	}

	msgs, err := h.messageRepo.ListMessages(ctx, chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	hidden, err := h.deletionRepo.HiddenMessageIDs(ctx, chatID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	visible := visibility.Filter(msgs, hidden)

	senderIDs := make([]int, 0, 2)
	seen := map[int]struct{}{}
	for _, m := range visible {
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			senderIDs = append(senderIDs, m.SenderID)
		}
	}

	profiles, err := h.users.BulkUsers(ctx, senderIDs)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load senders"})
		return
	}
	usernameByID := make(map[int]string, len(profiles))
	for _, p := range profiles {
		usernameByID[p.ID] = p.Username
	}

	type messageResponse struct {
		models.Message
		Mine           bool   `json:"mine"`
		SenderUsername string `json:"sender_username,omitempty"`
	}

	resp := make([]messageResponse, 0, len(visible))
	for _, m := range visible {
		resp = append(resp, messageResponse{
			Message:        m,
			Mine:           m.SenderID == userID,
			SenderUsername: usernameByID[m.SenderID],
		})
	}

	c.JSON(http.StatusOK, gin.H{"messages": resp})
}

// PostChatMessage appends a text message and notifies the other participant.
func (h *MessageHandler) PostChatMessage(c *gin.Context) {
	ctx, span := otel.Tracer("messaging-service/handlers").Start(c.Request.Context(), "chat.send")
	defer span.End()

	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("chat.id", chatID))

	userID := c.GetInt("userID")
	chat, ok := chatForParticipant(c, h.chatRepo, chatID, userID)
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messageRepo.CreateMessage(ctx, chatID, userID, req.Body, models.KindText, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}
	observability.IncMessageSent(models.KindText)

	h.notifyRecipient(c, chat, msg)
	c.JSON(http.StatusCreated, msg)
}

// PostChatAttachment appends an image or video message. Media sends are only
// allowed between mutually-confirmed friends.
func (h *MessageHandler) PostChatAttachment(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	chat, ok := chatForParticipant(c, h.chatRepo, chatID, userID)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	friends, err := h.users.AreFriends(ctx, userID, chat.OtherParticipant(userID))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to validate friendship"})
		return
	}
	if !friends {
		c.JSON(http.StatusForbidden, gin.H{"error": "only friends can send attachments"})
		return
	}

	kind := c.PostForm("kind")
	if kind != models.KindImage && kind != models.KindVideo {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be image or video"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing attachment file"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read attachment"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, attachments.MaxVideoBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read attachment"})
		return
	}

	contentType, err := attachments.Validate(data, kind)
	if err != nil {
		status := http.StatusUnsupportedMediaType
		if errors.Is(err, attachments.ErrPayloadTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	ref, err := h.store.Upload(ctx, attachments.ObjectKey(kind, fileHeader.Filename), contentType, data)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to store attachment"})
		return
	}

	msg, err := h.messageRepo.CreateMessage(ctx, chatID, userID, c.PostForm("body"), kind, ref)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}
	observability.IncMessageSent(kind)

	h.notifyRecipient(c, chat, msg)
	c.JSON(http.StatusCreated, msg)
}

// notifyRecipient emits the new-message notification. The message is the
// durable fact; a publish failure is logged and counted but never undoes an
// accepted send.
func (h *MessageHandler) notifyRecipient(c *gin.Context, chat models.Chat, msg models.Message) {
	ctx := c.Request.Context()

	senderName := fmt.Sprintf("user %d", msg.SenderID)
	if profile, err := h.users.GetUser(ctx, msg.SenderID); err == nil {
		senderName = profile.Username
	} else {
		log.Printf("sender lookup failed for notification on message %d: %v", msg.ID, err)
	}

	if err := h.emitter.MessageSent(ctx, chat, msg, senderName, requestIDFromContext(c)); err != nil {
		observability.IncNotificationPublishError()
		log.Printf("notification publish failed for message %d: %v", msg.ID, err)
		return
	}
	observability.IncNotificationPublished()
}

// DeleteMessageForMe hides a message from the caller's view only. Repeating
// the call is a no-op, not an error.
func (h *MessageHandler) DeleteMessageForMe(c *gin.Context) {
	chatID, messageID, ok := parseIDs(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	if !ensureParticipant(c, h.chatRepo, chatID, userID) {
		return
	}

	msg, ok := h.messageInChat(c, messageID, chatID)
	if !ok {
		return
	}

	if err := h.deletionRepo.HideForViewer(c.Request.Context(), msg.ID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hide message"})
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteMessageForAll permanently removes a message for both participants.
// Sender only.
func (h *MessageHandler) DeleteMessageForAll(c *gin.Context) {
	chatID, messageID, ok := parseIDs(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	if !ensureParticipant(c, h.chatRepo, chatID, userID) {
		return
	}

	msg, ok := h.messageInChat(c, messageID, chatID)
	if !ok {
		return
	}
	if msg.SenderID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the sender can delete for everyone"})
		return
	}

	if err := h.messageRepo.DeleteForEveryone(c.Request.Context(), messageID, userID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not delete message"})
		return
	}

	c.Status(http.StatusNoContent)
}

// messageInChat loads a message and checks it belongs to the chat from the
// URL. A message from another chat answers 404, same as a missing one.
func (h *MessageHandler) messageInChat(c *gin.Context, messageID, chatID int) (models.Message, bool) {
	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return models.Message{}, false
	}
	if msg.ChatID != chatID {
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		return models.Message{}, false
	}
	return msg, true
}
