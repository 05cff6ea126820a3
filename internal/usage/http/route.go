package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, reviewerMiddleware gin.HandlerFunc) {
	// Applying attaches to the instrument resource; everything else lives
	// under the request collection.
	applyGroup := g.Group("/instruments")
	applyGroup.Use(authMiddleware)
	{
		applyGroup.POST("/:id/apply", h.Apply)
	}

	group := g.Group("/usage-requests")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.PATCH("/:id/cancel", h.Cancel)
	}

	// === Review Routes ===
	reviewGroup := group.Group("")
	reviewGroup.Use(reviewerMiddleware)
	{
		reviewGroup.PATCH("/:id/review", h.Review)
	}
}
