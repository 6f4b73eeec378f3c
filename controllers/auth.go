package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"NutriGuide/middleware"
	"NutriGuide/models"
	"NutriGuide/pkg/config"
	tokenstore "NutriGuide/pkg/token"
	utils "NutriGuide/pkg/utills"
	"NutriGuide/store"
)

// Signup handler. A successful signup logs the user straight in.
func Signup(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request"})
			return
		}

		username := strings.TrimSpace(body.Username)
		password := body.Password

		if username == "" || password == "" {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "Username and password are required"})
			return
		}
		// at least one letter and one number
		if len(password) < 6 || !utils.HasLetter(password) || !utils.HasNumber(password) {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "Password must be at least 6 characters and contain a letter and a number"})
			return
		}

		user, err := st.CreateUser(c.Request.Context(), username, password, false)
		if err != nil {
			if errors.Is(err, store.ErrDuplicateUsername) {
				c.JSON(http.StatusOK, gin.H{"success": false, "error": "Username already exists!"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create user"})
			return
		}

		issueSession(c, user)
	}
}

// Login handler
func Login(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request"})
			return
		}

		user, err := st.Authenticate(c.Request.Context(), strings.TrimSpace(body.Username), body.Password)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "Invalid username or password!"})
			return
		}

		issueSession(c, user)
	}
}

// Logout handler
func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		jti, _ := c.Get(middleware.ContextJTIKey)
		if s, ok := jti.(string); ok && s != "" {
			tokenstore.RevokeToken(s)
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out"})
	}
}

// issueSession creates a JWT with 1 day expiry and writes the login
// response.
func issueSession(c *gin.Context, user *models.User) {
	jti := uuid.NewString()
	claims := jwt.MapClaims{
		"sub":      strconv.Itoa(int(user.ID)),
		"name":     user.Username,
		"is_admin": user.IsAdmin,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
		"jti":      jti,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(config.JWTSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"access_token": tokenStr,
		"user_id":      user.ID,
		"username":     user.Username,
		"is_admin":     user.IsAdmin,
	})
}
