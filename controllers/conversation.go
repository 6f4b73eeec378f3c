package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"NutriGuide/middleware"
	"NutriGuide/models"
	"NutriGuide/store"
)

// CreateConversation starts an empty conversation, optionally with a
// caller-chosen title.
func CreateConversation(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Title string `json:"title"`
		}
		_ = c.ShouldBindJSON(&body)

		conv, err := st.CreateConversation(c.Request.Context(), middleware.CurrentUserID(c), strings.TrimSpace(body.Title))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create conversation"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "conversation_id": conv.ID, "title": conv.Title})
	}
}

// AppendMessagePair stores a complete user/bot exchange as-is, without
// calling the model. Used by clients that sync locally generated turns.
func AppendMessagePair(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			ConversationID uint   `json:"conversation_id"`
			UserMessage    string `json:"user_message"`
			BotMessage     string `json:"bot_message"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request"})
			return
		}

		conv, _, err := st.AppendMessage(c.Request.Context(), body.ConversationID, middleware.CurrentUserID(c),
			body.UserMessage, body.BotMessage, "", middleware.IsAdmin(c))
		if err != nil {
			switch {
			case errors.Is(err, store.ErrEmptyMessage):
				c.JSON(http.StatusOK, gin.H{"success": false, "error": "Message cannot be empty"})
			case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrForbidden):
				c.JSON(http.StatusOK, gin.H{"success": false, "error": "Conversation not found"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to save message"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "conversation_id": conv.ID})
	}
}

// ListConversations returns the user's conversations ordered by latest
// activity, with an optional title filter.
func ListConversations(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := st.ListConversations(c.Request.Context(), middleware.CurrentUserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "db error"})
			return
		}

		if q := strings.ToLower(strings.TrimSpace(c.Query("q"))); q != "" {
			filtered := items[:0]
			for _, it := range items {
				if strings.Contains(strings.ToLower(it.Title), q) {
					filtered = append(filtered, it)
				}
			}
			items = filtered
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "conversations": items})
	}
}

// GetConversation returns one conversation with its full message
// history.
func GetConversation(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		convID, ok := paramID(c, "conversation_id")
		if !ok {
			return
		}

		ctx := c.Request.Context()
		userID := middleware.CurrentUserID(c)
		admin := middleware.IsAdmin(c)

		conv, err := st.GetConversation(ctx, convID, userID, admin)
		if err != nil {
			conversationError(c, err)
			return
		}
		msgs, err := st.Messages(ctx, convID, userID, admin)
		if err != nil {
			conversationError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":         true,
			"conversation_id": conv.ID,
			"title":           conv.Title,
			"summary":         conv.Summary,
			"messages":        messagePayload(msgs),
		})
	}
}

// MostRecentConversation returns the newest conversation with messages
// grouped by calendar day, oldest group first.
func MostRecentConversation(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		conv, msgs, err := st.MostRecent(c.Request.Context(), middleware.CurrentUserID(c))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusOK, gin.H{"success": true, "conversation_id": nil, "groups": []gin.H{}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "db error"})
			return
		}

		groups := make([]gin.H, 0)
		var day string
		var current []gin.H
		flush := func() {
			if day != "" {
				groups = append(groups, gin.H{"date": day, "messages": current})
			}
		}
		for _, m := range msgs {
			d := m.Timestamp.Format("2006-01-02")
			if d != day {
				flush()
				day = d
				current = nil
			}
			current = append(current, messageItem(m))
		}
		flush()

		c.JSON(http.StatusOK, gin.H{
			"success":         true,
			"conversation_id": conv.ID,
			"title":           conv.Title,
			"groups":          groups,
		})
	}
}

// RenameConversation sets a user-chosen title.
func RenameConversation(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		convID, ok := paramID(c, "conversation_id")
		if !ok {
			return
		}
		var body struct {
			Title string `json:"title"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Title) == "" {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "Title is required"})
			return
		}

		err := st.RenameConversation(c.Request.Context(), convID, middleware.CurrentUserID(c), strings.TrimSpace(body.Title), middleware.IsAdmin(c))
		if err != nil {
			conversationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// DeleteConversation removes a conversation and every message in it.
func DeleteConversation(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		convID, ok := paramID(c, "conversation_id")
		if !ok {
			return
		}

		err := st.DeleteConversation(c.Request.Context(), convID, middleware.CurrentUserID(c), middleware.IsAdmin(c))
		if err != nil {
			conversationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "conversation deleted"})
	}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid " + name})
		return 0, false
	}
	return uint(n), true
}

func conversationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrForbidden):
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Conversation not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "db error"})
	}
}

func messagePayload(msgs []models.Message) []gin.H {
	out := make([]gin.H, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageItem(m))
	}
	return out
}

func messageItem(m models.Message) gin.H {
	return gin.H{
		"id":        m.ID,
		"user":      m.UserMessage,
		"bot":       m.BotMessage,
		"timestamp": m.Timestamp,
	}
}
