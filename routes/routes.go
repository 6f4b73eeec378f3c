package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"NutriGuide/middleware"
	chatpkg "NutriGuide/pkg/chat"
	"NutriGuide/pkg/services"
	"NutriGuide/store"

	adminRoutes "NutriGuide/routes/admin"
	authRoutes "NutriGuide/routes/auth"
	chatRoutes "NutriGuide/routes/chat"
	convRoutes "NutriGuide/routes/conversation"
	proxyRoutes "NutriGuide/routes/proxy"
)

func RegisterRoutes(r *gin.Engine, st *store.Store, o *chatpkg.Orchestrator, gemini *services.GeminiService, knowledge *services.KnowledgeService) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "NutriGuide backend running"})
	})

	authRoutes.RegisterPublic(r, st)

	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware())
	authRoutes.RegisterProtected(protected, st)
	chatRoutes.Register(protected, o)
	convRoutes.Register(protected, st)
	proxyRoutes.Register(protected, gemini, knowledge)

	// Admin panel - admin tokens only
	adminRoutes.Register(protected, st)
}
