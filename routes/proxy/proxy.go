package proxy

import (
	"github.com/gin-gonic/gin"

	"NutriGuide/controllers"
	"NutriGuide/middleware"
	"NutriGuide/pkg/services"
)

// Register registers the raw model proxy and knowledge search routes
// (protected).
func Register(g *gin.RouterGroup, gemini *services.GeminiService, knowledge *services.KnowledgeService) {
	g.POST("/gemini", middleware.RateLimit(), controllers.GeminiProxy(gemini))
	g.GET("/knowledge", controllers.SearchKnowledge(knowledge))
}
