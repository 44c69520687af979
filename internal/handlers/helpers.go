package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"trueque-chat-service/internal/service"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func userIDFromContext(c *gin.Context) *int64 {
	if val, ok := c.Get("userID"); ok {
		if userID, ok := val.(int); ok && userID != 0 {
			value := int64(userID)
			return &value
		}
	}
	return nil
}

// writeError maps the service error taxonomy onto HTTP statuses. Nothing is
// swallowed; unknown errors surface as 500 with a generic message.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch service.KindOf(err) {
	case service.KindValidation:
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case service.KindForbidden:
		status = http.StatusForbidden
		message = err.Error()
	case service.KindNotFound:
		status = http.StatusNotFound
		message = err.Error()
	case service.KindConflict:
		status = http.StatusConflict
		message = err.Error()
	}

	c.JSON(status, gin.H{"error": message})
}
