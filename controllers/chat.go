package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"NutriGuide/middleware"
	"NutriGuide/pkg/chat"
	"NutriGuide/pkg/services"
	"NutriGuide/store"
)

// SendChat runs one chat turn. The reply is returned only after the
// model finished and the exchange is stored.
func SendChat(o *chat.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			ConversationID uint   `json:"conversation_id"`
			Message        string `json:"message"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request"})
			return
		}

		userID := middleware.CurrentUserID(c)
		message := strings.TrimSpace(body.Message)
		if message == "" {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "Message cannot be empty"})
			return
		}
		if !middleware.DuplicateGuard(userID, message) {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "Duplicate message, please wait a moment"})
			return
		}

		release := middleware.AcquireUserSlot(userID)
		defer release()

		reply, err := o.SendMessage(c.Request.Context(), userID, middleware.CurrentUsername(c), body.ConversationID, message, middleware.IsAdmin(c))
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrForbidden):
				c.JSON(http.StatusOK, gin.H{"success": false, "error": "Conversation not found"})
			case errors.Is(err, services.ErrGenerationFailed):
				c.JSON(http.StatusOK, gin.H{"success": false, "error": "The assistant could not generate a response, please try again"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":         true,
			"conversation_id": reply.ConversationID,
			"response":        reply.Response,
			"snippets":        reply.Snippets,
		})
	}
}
