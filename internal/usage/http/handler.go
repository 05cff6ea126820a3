package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sugar258596/experiment-server/internal/auth"
	"github.com/sugar258596/experiment-server/internal/pkg/request"
	"github.com/sugar258596/experiment-server/internal/pkg/response"
	"github.com/sugar258596/experiment-server/internal/usage"
	"github.com/sugar258596/experiment-server/internal/user"
)

type Handler struct {
	service usage.Service
}

func NewHandler(service usage.Service) *Handler {
	return &Handler{service: service}
}

func actorRole(c *gin.Context) user.Role {
	return user.Role(auth.GetUserRole(c))
}

func (h *Handler) Apply(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body ApplyUsageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	u, err := h.service.Apply(c.Request.Context(), usage.ApplyRequest{
		RequesterID:  auth.GetUserID(c),
		InstrumentID: uri.ID,
		StartTime:    body.StartTime,
		EndTime:      body.EndTime,
		Purpose:      body.Purpose,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewUsageResponse(u))
}

func (h *Handler) List(c *gin.Context) {
	var req ListUsageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	req.Normalize()

	filter := usage.Filter{
		InstrumentID: req.InstrumentID,
		Status:       req.Status,
		Page:         req.Page,
		PageSize:     req.PageSize,
	}
	if actorRole(c).CanReview() {
		filter.RequesterID = req.UserID
	} else {
		filter.RequesterID = auth.GetUserID(c)
	}

	requests, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]UsageResponse, len(requests))
	for i, u := range requests {
		items[i] = NewUsageResponse(u)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	u, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if u.RequesterID != auth.GetUserID(c) && !actorRole(c).CanReview() {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	c.JSON(http.StatusOK, NewUsageResponse(u))
}

func (h *Handler) Review(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body ReviewUsageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	u, err := h.service.Review(c.Request.Context(), uri.ID, usage.ReviewRequest{
		Decision: usage.Decision(body.Decision),
		Reason:   body.Reason,
	}, auth.GetUserID(c), actorRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewUsageResponse(u))
}

func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	u, err := h.service.Cancel(c.Request.Context(), uri.ID, auth.GetUserID(c), actorRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewUsageResponse(u))
}
