package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	// === Public Routes ===
	authGroup := g.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	// === Authenticated Routes ===
	users := g.Group("/users")
	users.Use(authMiddleware)
	{
		users.GET("/me", h.GetMe)
		users.PATCH("/me", h.UpdateMe)
	}

	// === Administration Routes ===
	adminUsers := users.Group("")
	adminUsers.Use(adminMiddleware)
	{
		adminUsers.GET("", h.List)
		adminUsers.PATCH("/:id", h.Update)
	}
}
