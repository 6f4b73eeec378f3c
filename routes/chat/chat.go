package chat

import (
	"github.com/gin-gonic/gin"

	"NutriGuide/controllers"
	"NutriGuide/middleware"
	"NutriGuide/pkg/chat"
)

// Register registers the chat endpoint (protected). The model-backed
// route carries rate limiting on top of auth.
func Register(g *gin.RouterGroup, o *chat.Orchestrator) {
	g.POST("/chat", middleware.RateLimit(), controllers.SendChat(o))
}
