package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, reviewerMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.POST("", h.Create)
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.PATCH("/:id/cancel", h.Cancel)
	}

	// === Review Routes ===
	reviewGroup := group.Group("")
	reviewGroup.Use(reviewerMiddleware)
	{
		reviewGroup.PATCH("/:id/review", h.Review)
		reviewGroup.PATCH("/:id/complete", h.Complete)
	}
}
