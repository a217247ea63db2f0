package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

func setupChatRouter(handler *ChatHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/chats", handler.ListChats)
	r.POST("/chats/start", handler.StartChat)
	r.GET("/chats/:chat_id/configuration", handler.GetConfiguration)
	r.PUT("/chats/:chat_id/configuration", handler.UpdateConfiguration)
	r.DELETE("/chats/:chat_id", handler.DeleteChat)
	return r
}

func TestListChatsSuccess(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	users := new(mocks.UserGateMock)
	handler := NewChatHandler(chatRepo, new(mocks.SettingsRepositoryMock), users)
	router := setupChatRouter(handler)

	chatRepo.On("ListChats", mock.Anything, 1).Return([]models.ChatSummary{
		{ChatID: 3, OtherUserID: 2, LastMessage: "hey", BubbleColor: "#3b82f6", UnreadCount: 2},
	}, nil).Once()
	users.On("BulkUsers", mock.Anything, []int{2}).Return([]models.UserProfile{
		{ID: 2, Username: "bob", DisplayName: "Bob"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Chats []struct {
			ChatID      int    `json:"chat_id"`
			Username    string `json:"username"`
			LastMessage string `json:"last_message"`
			UnreadCount int    `json:"unread_count"`
		} `json:"chats"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Chats, 1)
	assert.Equal(t, 3, resp.Chats[0].ChatID)
	assert.Equal(t, "bob", resp.Chats[0].Username)
	assert.Equal(t, "hey", resp.Chats[0].LastMessage)
	assert.Equal(t, 2, resp.Chats[0].UnreadCount)

	chatRepo.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestListChatsUserServiceDown(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	users := new(mocks.UserGateMock)
	handler := NewChatHandler(chatRepo, new(mocks.SettingsRepositoryMock), users)
	router := setupChatRouter(handler)

	chatRepo.On("ListChats", mock.Anything, 1).Return([]models.ChatSummary{{ChatID: 3, OtherUserID: 2}}, nil).Once()
	users.On("BulkUsers", mock.Anything, []int{2}).Return(([]models.UserProfile)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	chatRepo.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestStartChatCreatesNew(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(chatRepo, new(mocks.SettingsRepositoryMock), new(mocks.UserGateMock))
	router := setupChatRouter(handler)

	chatRepo.On("CreateOrGetChat", mock.Anything, 1, 2).
		Return(models.Chat{ID: 9, User1ID: 1, User2ID: 2}, false, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/start", bytes.NewBufferString(`{"other_user_id":2}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, float64(9), resp["chat_id"])
	assert.Equal(t, false, resp["existed"])
	chatRepo.AssertExpectations(t)
}

func TestStartChatReturnsExisting(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(chatRepo, new(mocks.SettingsRepositoryMock), new(mocks.UserGateMock))
	router := setupChatRouter(handler)

	chatRepo.On("CreateOrGetChat", mock.Anything, 1, 2).
		Return(models.Chat{ID: 9, User1ID: 1, User2ID: 2}, true, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/start", bytes.NewBufferString(`{"other_user_id":2}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, true, resp["existed"])
	chatRepo.AssertExpectations(t)
}

func TestStartChatWithSelf(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(chatRepo, new(mocks.SettingsRepositoryMock), new(mocks.UserGateMock))
	router := setupChatRouter(handler)

	chatRepo.On("CreateOrGetChat", mock.Anything, 1, 1).
		Return(models.Chat{}, false, repositories.ErrSelfChat).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/start", bytes.NewBufferString(`{"other_user_id":1}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	chatRepo.AssertExpectations(t)
}

func TestUpdateConfigurationWritesOwnSlot(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	settingsRepo := new(mocks.SettingsRepositoryMock)
	handler := NewChatHandler(chatRepo, settingsRepo, new(mocks.UserGateMock))
	router := setupChatRouter(handler)

	chatRepo.On("IsParticipant", mock.Anything, 5, 1).Return(true, nil).Once()
	settingsRepo.On("UpsertSettings", mock.Anything, models.ChatSettings{
		ChatID:      5,
		UserID:      1,
		Background:  "stars",
		BubbleColor: "#FF0000",
	}).Return(nil).Once()

	body := bytes.NewBufferString(`{"background":"stars","bubble_color":"#FF0000"}`)
	req := httptest.NewRequest(http.MethodPut, "/chats/5/configuration", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	chatRepo.AssertExpectations(t)
	settingsRepo.AssertExpectations(t)
}

func TestUpdateConfigurationRejectsBadColor(t *testing.T) {
	handler := NewChatHandler(new(mocks.ChatRepositoryMock), new(mocks.SettingsRepositoryMock), new(mocks.UserGateMock))
	router := setupChatRouter(handler)

	body := bytes.NewBufferString(`{"background":"stars","bubble_color":"red"}`)
	req := httptest.NewRequest(http.MethodPut, "/chats/5/configuration", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateConfigurationNonParticipant(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(chatRepo, new(mocks.SettingsRepositoryMock), new(mocks.UserGateMock))
	router := setupChatRouter(handler)

	chatRepo.On("IsParticipant", mock.Anything, 5, 1).Return(false, nil).Once()

	body := bytes.NewBufferString(`{"background":"stars","bubble_color":"#FF0000"}`)
	req := httptest.NewRequest(http.MethodPut, "/chats/5/configuration", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	chatRepo.AssertExpectations(t)
}

func TestGetConfigurationDefaults(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	settingsRepo := new(mocks.SettingsRepositoryMock)
	handler := NewChatHandler(chatRepo, settingsRepo, new(mocks.UserGateMock))
	router := setupChatRouter(handler)

	chatRepo.On("IsParticipant", mock.Anything, 5, 1).Return(true, nil).Once()
	settingsRepo.On("GetSettings", mock.Anything, 5, 1).Return(models.ChatSettings{
		ChatID:      5,
		UserID:      1,
		Background:  models.DefaultBackground,
		BubbleColor: models.DefaultBubbleColor,
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/5/configuration", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.ChatSettings
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, models.DefaultBubbleColor, resp.BubbleColor)
	chatRepo.AssertExpectations(t)
	settingsRepo.AssertExpectations(t)
}

func TestDeleteChatByEitherParticipant(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(chatRepo, new(mocks.SettingsRepositoryMock), new(mocks.UserGateMock))
	router := setupChatRouter(handler)

	// Caller (user 1) did not start the chat; deletion is still allowed.
	chatRepo.On("IsParticipant", mock.Anything, 5, 1).Return(true, nil).Once()
	chatRepo.On("DeleteChat", mock.Anything, 5).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/chats/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	chatRepo.AssertExpectations(t)
}

func TestDeleteChatNotFound(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(chatRepo, new(mocks.SettingsRepositoryMock), new(mocks.UserGateMock))
	router := setupChatRouter(handler)

	chatRepo.On("IsParticipant", mock.Anything, 5, 1).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/chats/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	chatRepo.AssertNotCalled(t, "DeleteChat", mock.Anything, mock.Anything)
	chatRepo.AssertExpectations(t)
}
