package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/notifications")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("", h.ListMine)
		group.GET("/unread-count", h.UnreadCount)
		group.PATCH("/read-all", h.MarkAllAsRead)
		group.PATCH("/:id/read", h.MarkAsRead)
		group.DELETE("/:id", h.Delete)
	}

	// === Administration Routes ===
	adminGroup := group.Group("")
	adminGroup.Use(adminMiddleware)
	{
		adminGroup.POST("/broadcast", h.Broadcast)
	}
}
