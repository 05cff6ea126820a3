package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sugar258596/experiment-server/internal/auth"
	"github.com/sugar258596/experiment-server/internal/pkg/request"
	"github.com/sugar258596/experiment-server/internal/pkg/response"
	"github.com/sugar258596/experiment-server/internal/repair"
	"github.com/sugar258596/experiment-server/internal/user"
	"github.com/sugar258596/experiment-server/internal/workflow"
)

type Handler struct {
	service repair.Service
}

func NewHandler(service repair.Service) *Handler {
	return &Handler{service: service}
}

func actorRole(c *gin.Context) user.Role {
	return user.Role(auth.GetUserRole(c))
}

func (h *Handler) Report(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body ReportRepairBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	t, err := h.service.Report(c.Request.Context(), repair.ReportRequest{
		ReporterID:   auth.GetUserID(c),
		InstrumentID: uri.ID,
		FaultType:    body.FaultType,
		Urgency:      repair.Urgency(body.Urgency),
		Description:  body.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewRepairResponse(t))
}

func (h *Handler) List(c *gin.Context) {
	var req ListRepairsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	req.Normalize()

	filter := repair.Filter{
		InstrumentID: req.InstrumentID,
		Status:       req.Status,
		Urgency:      req.Urgency,
		Page:         req.Page,
		PageSize:     req.PageSize,
	}
	if actorRole(c).CanReview() {
		filter.ReporterID = req.UserID
	} else {
		filter.ReporterID = auth.GetUserID(c)
	}

	tickets, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]RepairResponse, len(tickets))
	for i, t := range tickets {
		items[i] = NewRepairResponse(t)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if t.ReporterID != auth.GetUserID(c) && !actorRole(c).CanReview() {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	c.JSON(http.StatusOK, NewRepairResponse(t))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body UpdateRepairStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	t, err := h.service.UpdateStatus(c.Request.Context(), uri.ID, repair.UpdateStatusRequest{
		Status:  workflow.Status(body.Status),
		Summary: body.Summary,
	}, auth.GetUserID(c), actorRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewRepairResponse(t))
}
