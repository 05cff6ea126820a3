package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sugar258596/experiment-server/internal/file"
	filehttp "github.com/sugar258596/experiment-server/internal/file/http"
	"github.com/sugar258596/experiment-server/internal/lab"
	"github.com/sugar258596/experiment-server/internal/pkg/request"
	"github.com/sugar258596/experiment-server/internal/pkg/response"
)

type Handler struct {
	service     lab.Service
	fileHandler *filehttp.Handler
}

func NewHandler(service lab.Service, fileHandler *filehttp.Handler) *Handler {
	return &Handler{service: service, fileHandler: fileHandler}
}

func (h *Handler) List(c *gin.Context) {
	var req ListLabsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	req.Normalize()

	labs, total, err := h.service.List(c.Request.Context(), lab.Filter{
		Keyword:  req.Keyword,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list labs"})
		return
	}

	items := make([]LabResponse, len(labs))
	for i, l := range labs {
		items[i] = NewLabResponse(l)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	l, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		if errors.Is(err, lab.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lab not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get lab"})
		return
	}

	c.JSON(http.StatusOK, NewLabResponse(l))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateLabBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	l, err := h.service.Create(c.Request.Context(), lab.CreateRequest{
		Name:        body.Name,
		Location:    body.Location,
		Capacity:    body.Capacity,
		Description: body.Description,
		ImageURL:    body.ImageURL,
	})
	if err != nil {
		if errors.Is(err, lab.ErrEmptyName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create lab"})
		return
	}

	c.JSON(http.StatusCreated, NewLabResponse(l))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body UpdateLabBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	l, err := h.service.Update(c.Request.Context(), uri.ID, lab.UpdateRequest{
		Name:        body.Name,
		Location:    body.Location,
		Capacity:    body.Capacity,
		Status:      body.Status,
		Description: body.Description,
		ImageURL:    body.ImageURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, lab.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "lab not found"})
		case errors.Is(err, lab.ErrEmptyName), errors.Is(err, lab.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update lab"})
		}
		return
	}

	c.JSON(http.StatusOK, NewLabResponse(l))
}

func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.ID); err != nil {
		if errors.Is(err, lab.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lab not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete lab"})
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadImage replaces the lab's display image.
func (h *Handler) UploadImage(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if _, err := h.service.GetByID(c.Request.Context(), uri.ID); err != nil {
		if errors.Is(err, lab.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lab not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get lab"})
		return
	}

	h.fileHandler.HandleFileUpload(c, filehttp.FileUploadConfig{
		MaxSizeBytes: 5 * 1024 * 1024,
		AllowedTypes: []string{"image/jpeg", "image/png"},
		ResizeImage:  true,
		AfterUpload: func(ctx context.Context, fileID string) error {
			url := file.URL(fileID)
			_, err := h.service.Update(ctx, uri.ID, lab.UpdateRequest{ImageURL: &url})
			return err
		},
	})
}
