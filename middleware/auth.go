package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"NutriGuide/pkg/config"
	tokenstore "NutriGuide/pkg/token"
)

const (
	ContextUserIDKey   = "current_user_id"
	ContextUsernameKey = "current_username"
	ContextIsAdminKey  = "current_is_admin"
	ContextJTIKey      = "current_jti"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing authorization header"})
			return
		}
		parts := strings.Fields(auth)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid authorization header"})
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			// only accept HMAC signing
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenUnverifiable
			}
			return []byte(config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token claims"})
			return
		}

		jtiVal, _ := claims["jti"].(string)
		if tokenstore.IsRevoked(jtiVal) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Token has been revoked (logout)"})
			return
		}

		userID := subjectID(claims)
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid subject in token"})
			return
		}

		username, _ := claims["name"].(string)
		isAdmin, _ := claims["is_admin"].(bool)

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextUsernameKey, username)
		c.Set(ContextIsAdminKey, isAdmin)
		c.Set(ContextJTIKey, jtiVal)
		c.Next()
	}
}

// AdminOnly must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's id, zero when unset.
func CurrentUserID(c *gin.Context) uint {
	v, _ := c.Get(ContextUserIDKey)
	id, _ := v.(uint)
	return id
}

func CurrentUsername(c *gin.Context) string {
	v, _ := c.Get(ContextUsernameKey)
	name, _ := v.(string)
	return name
}

func IsAdmin(c *gin.Context) bool {
	v, _ := c.Get(ContextIsAdminKey)
	admin, _ := v.(bool)
	return admin
}

func subjectID(claims jwt.MapClaims) uint {
	if sub, ok := claims["sub"].(string); ok {
		if n, err := strconv.ParseUint(sub, 10, 64); err == nil {
			return uint(n)
		}
	}
	// jwt lib may parse numeric as float64
	if subf, ok := claims["sub"].(float64); ok && subf > 0 {
		return uint(subf)
	}
	return 0
}
