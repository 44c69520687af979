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

	"trueque-chat-service/internal/mocks"
	"trueque-chat-service/internal/models"
	"trueque-chat-service/internal/service"
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
	r.GET("/chats/with/:user_id", handler.ChatWith)
	r.POST("/chats/:chat_id/send", handler.SendMessage)
	r.GET("/chats/:chat_id/messages", handler.GetMessages)
	r.POST("/chats/:chat_id/read", handler.MarkRead)
	r.DELETE("/chats/:chat_id", handler.DeleteChat)
	r.DELETE("/messages/:message_id", handler.DeleteMessage)
	return r
}

func strPtr(s string) *string { return &s }

func TestStartChatSuccess(t *testing.T) {
	svc := new(mocks.ChatServiceMock)
	handler := NewChatHandler(svc, nil)
	router := setupChatRouter(handler)

	svc.On("StartOrGetChat", mock.Anything, 1, 2).Return(service.ChatInfo{
		ChatID: 10,
		Users:  []models.User{{ID: 1, Name: "ana"}, {ID: 2, Name: "bob"}},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/start", bytes.NewBufferString(`{"user_id":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp service.ChatInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 10, resp.ChatID)
	assert.Len(t, resp.Users, 2)
	svc.AssertExpectations(t)
}

func TestStartChatMissingBody(t *testing.T) {
	svc := new(mocks.ChatServiceMock)
	handler := NewChatHandler(svc, nil)
	router := setupChatRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/chats/start", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	svc.AssertNotCalled(t, "StartOrGetChat")
}

func TestStartChatSelfRejected(t *testing.T) {
	svc := new(mocks.ChatServiceMock)
	handler := NewChatHandler(svc, nil)
	router := setupChatRouter(handler)

	svc.On("StartOrGetChat", mock.Anything, 1, 1).
		Return(service.ChatInfo{}, &service.Error{Kind: service.KindValidation, Message: "cannot start a chat with yourself"}).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/start", bytes.NewBufferString(`{"user_id":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	svc.AssertExpectations(t)
}

func TestChatWithSuccess(t *testing.T) {
	svc := new(mocks.ChatServiceMock)
	handler := NewChatHandler(svc, nil)
	router := setupChatRouter(handler)

	svc.On("StartOrGetChat", mock.Anything, 1, 7).Return(service.ChatInfo{ChatID: 3}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/with/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestChatWithUnknownUser(t *testing.T) {
	svc := new(mocks.ChatServiceMock)
	handler := NewChatHandler(svc, nil)
	router := setupChatRouter(handler)

	svc.On("StartOrGetChat", mock.Anything, 1, 99).
		Return(service.ChatInfo{}, &service.Error{Kind: service.KindNotFound, Message: "user not found"}).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/with/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}

func TestChatWithInvalidID(t *testing.T) {
	handler := NewChatHandler(new(mocks.ChatServiceMock), nil)
	router := setupChatRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/chats/with/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListChatsSuccess(t *testing.T) {
	svc := new(mocks.ChatServiceMock)
	handler := NewChatHandler(svc, nil)
	router := setupChatRouter(handler)

	svc.On("FetchChats", mock.Anything, 1).Return([]models.ChatSummary{
		{ChatID: 3, OtherUserID: 2, OtherName: "bob"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []models.ChatSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "bob", resp[0].OtherName)
	svc.AssertExpectations(t)
}

func TestListChatsEmpty(t *testing.T) {
	svc := new(mocks.ChatServiceMock)
	handler := NewChatHandler(svc, nil)
	router := setupChatRouter(handler)

	svc.On("FetchChats", mock.Anything, 1).Return(([]models.ChatSummary)(nil), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestListChatsServiceError(t *testing.T) {
	svc := new(mocks.ChatServiceMock)
	handler := NewChatHandler(svc, nil)
	router := setupChatRouter(handler)

	svc.On("FetchChats", mock.Anything, 1).
		Return(([]models.ChatSummary)(nil), &service.Error{Kind: service.KindInternal, Message: "load chats", Err: assert.AnError}).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "internal error", resp["error"])
	svc.AssertExpectations(t)
}

func TestSendMessageSuccess(t *testing.T) {
	svc := new(mocks.ChatServiceMock)
	handler := NewChatHandler(svc, nil)
	router := setupChatRouter(handler)

	svc.On("SendMessage", mock.Anything, 1, 5, strPtr("hi"), (*string)(nil)).
		Return(models.Message{ID: 7, ChatID: 5, SenderID: 1, Content: strPtr("hi")}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/send", bytes.NewBufferString(`{"content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 7, resp.ID)
	assert.Nil(t, resp.ReadAt)
	svc.AssertExpectations(t)
}

func TestSendMessageEmptyPayload(t *testing.T) {
	svc := new(mocks.ChatServiceMock)
	handler := NewChatHandler(svc, nil)
	router := setupChatRouter(handler)

	svc.On("SendMessage", mock.Anything, 1, 5, (*string)(nil), (*string)(nil)).
		Return(models.Message{}, &service.Error{Kind: service.KindValidation, Message: "message needs content or an image"}).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/send", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	svc.AssertExpectations(t)
}

func TestSendMessageForbidden(t *testing.T) {
	svc := new(mocks.ChatServiceMock)
	handler := NewChatHandler(svc, nil)
	router := setupChatRouter(handler)

	svc.On("SendMessage", mock.Anything, 1, 5, strPtr("hi"), (*string)(nil)).
		Return(models.Message{}, &service.Error{Kind: service.KindForbidden, Message: "not a chat member"}).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/send", bytes.NewBufferString(`{"content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	svc.AssertExpectations(t)
}

func TestSendMessageInvalidChatID(t *testing.T) {
	handler := NewChatHandler(new(mocks.ChatServiceMock), nil)
	router := setupChatRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/chats/bad/send", bytes.NewBufferString(`{"content":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMessagesSuccess(t *testing.T) {
	svc := new(mocks.ChatServiceMock)
	handler := NewChatHandler(svc, nil)
	router := setupChatRouter(handler)

	svc.On("FetchMessages", mock.Anything, 1, 5).Return([]models.Message{
		{ID: 1, ChatID: 5, SenderID: 2, Content: strPtr("hola")},
		{ID: 2, ChatID: 5, SenderID: 1, Content: strPtr("hey")},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/5/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]models.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp["data"], 2)
	svc.AssertExpectations(t)
}

func TestGetMessagesChatNotFound(t *testing.T) {
	svc := new(mocks.ChatServiceMock)
	handler := NewChatHandler(svc, nil)
	router := setupChatRouter(handler)

	svc.On("FetchMessages", mock.Anything, 1, 404).
		Return(([]models.Message)(nil), &service.Error{Kind: service.KindNotFound, Message: "chat not found"}).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/404/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}

func TestMarkReadReturnsIDs(t *testing.T) {
	svc := new(mocks.ChatServiceMock)
	handler := NewChatHandler(svc, nil)
	router := setupChatRouter(handler)

	svc.On("MarkRead", mock.Anything, 1, 5).Return([]int{11, 12}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []int{11, 12}, resp["read_ids"])
	svc.AssertExpectations(t)
}

func TestMarkReadEmptyBatch(t *testing.T) {
	svc := new(mocks.ChatServiceMock)
	handler := NewChatHandler(svc, nil)
	router := setupChatRouter(handler)

	svc.On("MarkRead", mock.Anything, 1, 5).Return(([]int)(nil), nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"read_ids":[]}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestDeleteMessageSuccess(t *testing.T) {
	svc := new(mocks.ChatServiceMock)
	handler := NewChatHandler(svc, nil)
	router := setupChatRouter(handler)

	svc.On("DeleteMessage", mock.Anything, 1, 7).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/messages/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestDeleteMessageNotAuthor(t *testing.T) {
	svc := new(mocks.ChatServiceMock)
	handler := NewChatHandler(svc, nil)
	router := setupChatRouter(handler)

	svc.On("DeleteMessage", mock.Anything, 1, 7).
		Return(&service.Error{Kind: service.KindForbidden, Message: "only the author can delete a message"}).Once()

	req := httptest.NewRequest(http.MethodDelete, "/messages/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	svc.AssertExpectations(t)
}

func TestDeleteChatSuccess(t *testing.T) {
	svc := new(mocks.ChatServiceMock)
	handler := NewChatHandler(svc, nil)
	router := setupChatRouter(handler)

	svc.On("DeleteChat", mock.Anything, 1, 5).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/chats/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestDeleteChatNotFound(t *testing.T) {
	svc := new(mocks.ChatServiceMock)
	handler := NewChatHandler(svc, nil)
	router := setupChatRouter(handler)

	svc.On("DeleteChat", mock.Anything, 1, 5).
		Return(&service.Error{Kind: service.KindNotFound, Message: "chat not found"}).Once()

	req := httptest.NewRequest(http.MethodDelete, "/chats/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}
