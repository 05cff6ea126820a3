package favorite

import (
	"net/http"
	"time"

	"github.com/sugar258596/experiment-server/internal/pkg/apperror"
)

var (
	ErrResourceNotFound = apperror.New(http.StatusNotFound, "resource not found")

	// errAlreadyFavorited only surfaces inside the toggle race handling;
	// it never reaches a client.
	errAlreadyFavorited = apperror.New(http.StatusConflict, "already favorited")
)

// ResourceKind tags which catalog a favorited resource belongs to.
type ResourceKind string

const (
	KindLab        ResourceKind = "lab"
	KindInstrument ResourceKind = "instrument"
)

// Favorite is a user's bookmark on one resource. Rows are hard-deleted;
// a favorite is pure membership with no history to keep.
type Favorite struct {
	ID         string
	UserID     string
	ResourceID string
	Kind       ResourceKind
	CreatedAt  time.Time
}

// Item is a favorite enriched with the resource's current display fields.
// Name is empty when the resource has since been removed.
type Item struct {
	*Favorite
	ResourceName   string
	ResourceStatus string
}

// ToggleResult reports the membership state after a toggle.
type ToggleResult struct {
	IsFavorited bool
}
