package file

import (
	"net/http"
	"time"

	"github.com/sugar258596/experiment-server/internal/pkg/apperror"
)

var (
	ErrNotFound             = apperror.New(http.StatusNotFound, "file not found")
	ErrTooLarge             = apperror.New(http.StatusBadRequest, "file exceeds the size limit")
	ErrUnsupportedType      = apperror.New(http.StatusBadRequest, "unsupported file type")
	ErrInvalidImage         = apperror.New(http.StatusBadRequest, "file is not a valid image")
	ErrThumbnailUnavailable = apperror.New(http.StatusNotFound, "thumbnail not available")
)

// File is an uploaded file's metadata. Storage paths are internal and
// never leave the server; clients address files by ID.
type File struct {
	ID            string
	UserID        string
	Filename      string
	StoragePath   string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// URL returns the serving path for a file ID, relative to the API root.
func URL(id string) string {
	return "/v1/files/" + id
}

// ThumbnailURL returns the serving path for a file's thumbnail.
func ThumbnailURL(id string) string {
	return "/v1/files/" + id + "/thumbnail"
}
