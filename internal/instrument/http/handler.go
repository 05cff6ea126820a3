package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sugar258596/experiment-server/internal/file"
	filehttp "github.com/sugar258596/experiment-server/internal/file/http"
	"github.com/sugar258596/experiment-server/internal/instrument"
	"github.com/sugar258596/experiment-server/internal/pkg/request"
	"github.com/sugar258596/experiment-server/internal/pkg/response"
)

type Handler struct {
	service     instrument.Service
	fileHandler *filehttp.Handler
}

func NewHandler(service instrument.Service, fileHandler *filehttp.Handler) *Handler {
	return &Handler{service: service, fileHandler: fileHandler}
}

func (h *Handler) List(c *gin.Context) {
	var req ListInstrumentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	req.Normalize()

	instruments, total, err := h.service.List(c.Request.Context(), instrument.Filter{
		Keyword:  req.Keyword,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list instruments"})
		return
	}

	items := make([]InstrumentResponse, len(instruments))
	for i, ins := range instruments {
		items[i] = NewInstrumentResponse(ins)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	ins, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		if errors.Is(err, instrument.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "instrument not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get instrument"})
		return
	}

	c.JSON(http.StatusOK, NewInstrumentResponse(ins))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateInstrumentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	ins, err := h.service.Create(c.Request.Context(), instrument.CreateRequest{
		Name:        body.Name,
		Model:       body.Model,
		Location:    body.Location,
		Description: body.Description,
		ImageURL:    body.ImageURL,
	})
	if err != nil {
		if errors.Is(err, instrument.ErrEmptyName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create instrument"})
		return
	}

	c.JSON(http.StatusCreated, NewInstrumentResponse(ins))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body UpdateInstrumentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	ins, err := h.service.Update(c.Request.Context(), uri.ID, instrument.UpdateRequest{
		Name:        body.Name,
		Model:       body.Model,
		Location:    body.Location,
		Status:      body.Status,
		Description: body.Description,
		ImageURL:    body.ImageURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, instrument.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "instrument not found"})
		case errors.Is(err, instrument.ErrEmptyName), errors.Is(err, instrument.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update instrument"})
		}
		return
	}

	c.JSON(http.StatusOK, NewInstrumentResponse(ins))
}

func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.ID); err != nil {
		if errors.Is(err, instrument.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "instrument not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete instrument"})
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadImage replaces the instrument's display image.
func (h *Handler) UploadImage(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if _, err := h.service.GetByID(c.Request.Context(), uri.ID); err != nil {
		if errors.Is(err, instrument.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "instrument not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get instrument"})
		return
	}

	h.fileHandler.HandleFileUpload(c, filehttp.FileUploadConfig{
		MaxSizeBytes: 5 * 1024 * 1024,
		AllowedTypes: []string{"image/jpeg", "image/png"},
		ResizeImage:  true,
		AfterUpload: func(ctx context.Context, fileID string) error {
			url := file.URL(fileID)
			_, err := h.service.Update(ctx, uri.ID, instrument.UpdateRequest{ImageURL: &url})
			return err
		},
	})
}
