package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"trueque-chat-service/internal/models"
	"trueque-chat-service/internal/service"
	"trueque-chat-service/internal/telemetry"
)

// ChatHandler adapts the chat service to the HTTP surface.
type ChatHandler struct {
	chats service.ChatService
	audit *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler. audit may be nil.
func NewChatHandler(chats service.ChatService, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{chats: chats, audit: audit}
}

// StartChat creates or returns the chat with the user named in the body.
func (h *ChatHandler) StartChat(c *gin.Context) {
	var req struct {
		UserID int `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	h.startOrGetChat(c, req.UserID)
}

// ChatWith creates or returns the chat with the user named in the path.
func (h *ChatHandler) ChatWith(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	h.startOrGetChat(c, targetID)
}

func (h *ChatHandler) startOrGetChat(c *gin.Context, targetID int) {
	userID := c.GetInt("userID")

	info, err := h.chats.StartOrGetChat(c.Request.Context(), userID, targetID)
	if err != nil {
		writeError(c, err)
		return
	}

	h.audit.Emit(c.Request.Context(), "chat.start", info.ChatID, "", requestIDFromContext(c), userIDFromContext(c))
	c.JSON(http.StatusOK, info)
}

// ListChats returns the requester's chats ordered by last activity.
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := c.GetInt("userID")

	chats, err := h.chats.FetchChats(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if chats == nil {
		chats = []models.ChatSummary{}
	}

	c.JSON(http.StatusOK, chats)
}

// SendMessage stores a message and notifies the other member's live sessions.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	var req struct {
		Content   *string `json:"content"`
		ImagePath *string `json:"image_path"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	msg, err := h.chats.SendMessage(c.Request.Context(), userID, chatID, req.Content, req.ImagePath)
	if err != nil {
		writeError(c, err)
		return
	}

	h.audit.Emit(c.Request.Context(), "message.send", chatID, "", requestIDFromContext(c), userIDFromContext(c))
	c.JSON(http.StatusOK, msg)
}

// GetMessages returns the chat's full message log, oldest first.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	userID := c.GetInt("userID")
	msgs, err := h.chats.FetchMessages(c.Request.Context(), userID, chatID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": msgs})
}

// MarkRead stamps every unread message from the other member and reports
// which ids changed. An empty list is a normal outcome.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	userID := c.GetInt("userID")
	ids, err := h.chats.MarkRead(c.Request.Context(), userID, chatID)
	if err != nil {
		writeError(c, err)
		return
	}
	if ids == nil {
		ids = []int{}
	}

	if len(ids) > 0 {
		h.audit.Emit(c.Request.Context(), "message.read", chatID, "", requestIDFromContext(c), userIDFromContext(c))
	}
	c.JSON(http.StatusOK, gin.H{"read_ids": ids})
}

// DeleteMessage removes one of the requester's own messages.
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	userID := c.GetInt("userID")
	if err := h.chats.DeleteMessage(c.Request.Context(), userID, messageID); err != nil {
		writeError(c, err)
		return
	}

	h.audit.Emit(c.Request.Context(), "message.delete", 0, "message "+c.Param("message_id"), requestIDFromContext(c), userIDFromContext(c))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DeleteChat removes the chat and everything in it.
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	userID := c.GetInt("userID")
	if err := h.chats.DeleteChat(c.Request.Context(), userID, chatID); err != nil {
		writeError(c, err)
		return
	}

	h.audit.Emit(c.Request.Context(), "chat.delete", chatID, "", requestIDFromContext(c), userIDFromContext(c))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
