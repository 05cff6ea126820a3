package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, reviewerMiddleware gin.HandlerFunc) {
	// Reporting attaches to the instrument resource.
	reportGroup := g.Group("/instruments")
	reportGroup.Use(authMiddleware)
	{
		reportGroup.POST("/:id/repair", h.Report)
	}

	group := g.Group("/repairs")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
	}

	// === Review Routes ===
	reviewGroup := group.Group("")
	reviewGroup.Use(reviewerMiddleware)
	{
		reviewGroup.PATCH("/:id/status", h.UpdateStatus)
	}
}
