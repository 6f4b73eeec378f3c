package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"NutriGuide/middleware"
	"NutriGuide/store"
)

const defaultPerPage = 20

// AdminListUsers returns a paginated user listing with an optional
// is_admin filter.
func AdminListUsers(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage := pagination(c)

		var adminFilter *bool
		if raw := c.Query("is_admin"); raw != "" {
			v := raw == "true" || raw == "1"
			adminFilter = &v
		}

		users, total, err := st.ListUsers(c.Request.Context(), page, perPage, adminFilter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "db error"})
			return
		}

		items := make([]gin.H, 0, len(users))
		for _, u := range users {
			items = append(items, gin.H{
				"id":         u.ID,
				"username":   u.Username,
				"is_admin":   u.IsAdmin,
				"created_at": u.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"users":   items,
			"total":   total,
			"page":    page,
		})
	}
}

// AdminCreateUser creates an account directly, optionally with admin
// rights. Unlike /signup no session is issued.
func AdminCreateUser(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
			IsAdmin  bool   `json:"is_admin"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request"})
			return
		}
		if body.Username == "" || body.Password == "" {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "Username and password are required"})
			return
		}

		user, err := st.CreateUser(c.Request.Context(), body.Username, body.Password, body.IsAdmin)
		if err != nil {
			if errors.Is(err, store.ErrDuplicateUsername) {
				c.JSON(http.StatusOK, gin.H{"success": false, "error": "Username already exists!"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create user"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"user_id":  user.ID,
			"username": user.Username,
			"is_admin": user.IsAdmin,
		})
	}
}

// AdminDeleteUser removes a user and all their data. Admins cannot
// delete themselves.
func AdminDeleteUser(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := paramID(c, "user_id")
		if !ok {
			return
		}

		err := st.DeleteUser(c.Request.Context(), userID, middleware.CurrentUserID(c))
		if err != nil {
			switch {
			case errors.Is(err, store.ErrCannotDeleteSelf):
				c.JSON(http.StatusOK, gin.H{"success": false, "error": "You cannot delete your own account!"})
			case errors.Is(err, store.ErrNotFound):
				c.JSON(http.StatusOK, gin.H{"success": false, "error": "User not found"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "db error"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "user deleted"})
	}
}

// AdminListConversations lists conversations across all users, with an
// optional user_id filter.
func AdminListConversations(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage := pagination(c)

		var userFilter *uint
		if raw := c.Query("user_id"); raw != "" {
			if n, err := strconv.ParseUint(raw, 10, 64); err == nil && n > 0 {
				v := uint(n)
				userFilter = &v
			}
		}

		items, total, err := st.ListAllConversations(c.Request.Context(), page, perPage, userFilter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "db error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"conversations": items,
			"total":         total,
			"page":          page,
		})
	}
}

// AdminDumpConversation returns a conversation in full, including the
// raw model output kept for each exchange.
func AdminDumpConversation(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		convID, ok := paramID(c, "conversation_id")
		if !ok {
			return
		}

		conv, msgs, err := st.ConversationDump(c.Request.Context(), convID)
		if err != nil {
			conversationError(c, err)
			return
		}

		out := make([]gin.H, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, gin.H{
				"id":         m.ID,
				"user":       m.UserMessage,
				"bot":        m.BotMessage,
				"raw_output": m.RawModelOutput,
				"timestamp":  m.Timestamp,
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"success":         true,
			"conversation_id": conv.ID,
			"user_id":         conv.UserID,
			"title":           conv.Title,
			"summary":         conv.Summary,
			"messages":        out,
		})
	}
}

// AdminDeleteConversation deletes any user's conversation.
func AdminDeleteConversation(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		convID, ok := paramID(c, "conversation_id")
		if !ok {
			return
		}

		err := st.DeleteConversation(c.Request.Context(), convID, middleware.CurrentUserID(c), true)
		if err != nil {
			conversationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "conversation deleted"})
	}
}

// AdminStats returns global row counts.
func AdminStats(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := st.CountStats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "db error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"users":         stats.Users,
			"conversations": stats.Conversations,
			"messages":      stats.Messages,
		})
	}
}

func pagination(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if perPage < 1 || perPage > 100 {
		perPage = defaultPerPage
	}
	return page, perPage
}
