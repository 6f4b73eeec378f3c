package auth

import (
	"github.com/gin-gonic/gin"

	"NutriGuide/controllers"
	"NutriGuide/store"
)

// RegisterPublic registers public auth routes: /signup, /login
func RegisterPublic(r *gin.Engine, st *store.Store) {
	r.POST("/signup", controllers.Signup(st))
	r.POST("/login", controllers.Login(st))
}

// RegisterProtected registers protected auth routes (e.g. logout)
func RegisterProtected(g *gin.RouterGroup, _ *store.Store) {
	g.POST("/logout", controllers.Logout())
}
