package conversation

import (
	"github.com/gin-gonic/gin"

	"NutriGuide/controllers"
	"NutriGuide/store"
)

// Register registers conversation routes (protected)
func Register(g *gin.RouterGroup, st *store.Store) {
	g.POST("/conversations", controllers.CreateConversation(st))
	g.GET("/conversations", controllers.ListConversations(st))
	g.GET("/conversations/recent", controllers.MostRecentConversation(st))
	g.GET("/conversations/:conversation_id", controllers.GetConversation(st))
	g.PUT("/conversations/:conversation_id", controllers.RenameConversation(st))
	g.DELETE("/conversations/:conversation_id", controllers.DeleteConversation(st))
	g.POST("/messages", controllers.AppendMessagePair(st))
}
