package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sugar258596/experiment-server/internal/auth"
	"github.com/sugar258596/experiment-server/internal/favorite"
	"github.com/sugar258596/experiment-server/internal/pkg/response"
)

type Handler struct {
	service favorite.Service
}

func NewHandler(service favorite.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Toggle(c *gin.Context) {
	var uri ByResourceIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	result, err := h.service.Toggle(c.Request.Context(), auth.GetUserID(c), uri.ResourceID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ToggleResponse{IsFavorited: result.IsFavorited})
}

func (h *Handler) List(c *gin.Context) {
	var req ListFavoritesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	req.Normalize()

	items, total, err := h.service.ListMine(c.Request.Context(), auth.GetUserID(c), req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]FavoriteResponse, len(items))
	for i, item := range items {
		resp[i] = NewFavoriteResponse(item)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(resp, req.Page, req.PageSize, total))
}
