package admin

import (
	"github.com/gin-gonic/gin"

	"NutriGuide/controllers"
	"NutriGuide/middleware"
	"NutriGuide/store"
)

// Register registers the admin panel routes. Every route requires an
// admin token.
func Register(g *gin.RouterGroup, st *store.Store) {
	adm := g.Group("/admin")
	adm.Use(middleware.AdminOnly())

	adm.GET("/users", controllers.AdminListUsers(st))
	adm.POST("/users", controllers.AdminCreateUser(st))
	adm.DELETE("/users/:user_id", controllers.AdminDeleteUser(st))
	adm.GET("/conversations", controllers.AdminListConversations(st))
	adm.GET("/conversations/:conversation_id", controllers.AdminDumpConversation(st))
	adm.DELETE("/conversations/:conversation_id", controllers.AdminDeleteConversation(st))
	adm.GET("/stats", controllers.AdminStats(st))
}
