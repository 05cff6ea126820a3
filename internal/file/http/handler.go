package http

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sugar258596/experiment-server/internal/auth"
	"github.com/sugar258596/experiment-server/internal/file"
	"github.com/sugar258596/experiment-server/internal/pkg/response"
)

type Handler struct {
	fileService file.Service

	// publicBaseURL prefixes the serving paths in upload responses so
	// clients get a URL usable as-is.
	publicBaseURL string
}

func NewHandler(fileService file.Service, publicBaseURL string) *Handler {
	return &Handler{fileService: fileService, publicBaseURL: publicBaseURL}
}

// FileUploadConfig parameterizes an upload endpoint.
type FileUploadConfig struct {
	FormFieldName string
	MaxSizeBytes  int64
	AllowedTypes  []string
	ResizeImage   bool

	// AfterUpload runs once the file is stored, typically to attach it to
	// an entity. A hook failure rolls the upload back.
	AfterUpload func(ctx context.Context, fileID string) error
}

// HandleFileUpload is the shared implementation behind every upload
// endpoint.
func (h *Handler) HandleFileUpload(c *gin.Context, config FileUploadConfig) {
	fieldName := config.FormFieldName
	if fieldName == "" {
		fieldName = "file"
	}

	fileHeader, err := c.FormFile(fieldName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fieldName + " is required"})
		return
	}

	f, err := h.fileService.Upload(c.Request.Context(), file.UploadInput{
		FileHeader:   fileHeader,
		UserID:       auth.GetUserID(c),
		MaxSizeBytes: config.MaxSizeBytes,
		AllowedTypes: config.AllowedTypes,
		ResizeImage:  config.ResizeImage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if config.AfterUpload != nil {
		if err := config.AfterUpload(c.Request.Context(), f.ID); err != nil {
			_ = h.fileService.Delete(c.Request.Context(), f.ID)
			response.Error(c, err)
			return
		}
	}

	var thumbURL *string
	if f.ThumbnailPath != nil {
		t := h.publicBaseURL + file.ThumbnailURL(f.ID)
		thumbURL = &t
	}

	c.JSON(http.StatusOK, FileUploadResponse{
		FileID:       f.ID,
		URL:          h.publicBaseURL + file.URL(f.ID),
		ThumbnailURL: thumbURL,
	})
}

// Upload is the generic image upload endpoint, not tied to any entity.
func (h *Handler) Upload(c *gin.Context) {
	h.HandleFileUpload(c, FileUploadConfig{
		MaxSizeBytes: 10 * 1024 * 1024,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/gif"},
		ResizeImage:  true,
	})
}

// ServeFile streams the file content by ID.
func (h *Handler) ServeFile(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file ID is required"})
		return
	}

	stream, fileInfo, err := h.fileService.Download(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Type", fileInfo.ContentType)
	c.Header("Content-Disposition", "inline; filename=\""+fileInfo.Filename+"\"")

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		// The response has already started; nothing to report.
		return
	}
}

// ServeThumbnail streams the thumbnail image by file ID.
func (h *Handler) ServeThumbnail(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file ID is required"})
		return
	}

	stream, fileInfo, err := h.fileService.DownloadThumbnail(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Type", "image/jpeg")
	c.Header("Content-Disposition", "inline; filename=\""+fileInfo.Filename+"_thumb.jpg\"")

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		return
	}
}
