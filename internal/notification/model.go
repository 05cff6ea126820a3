package notification

import (
	"net/http"
	"time"

	"github.com/sugar258596/experiment-server/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "notification not found")
	ErrRecipientNotFound = apperror.New(http.StatusNotFound, "recipient not found")
	ErrTitleRequired     = apperror.New(http.StatusBadRequest, "title is required")
)

// RefKind tags which entity kind a notification's RelatedID points at.
// A notification with RefNone carries no related entity (generic broadcast).
type RefKind string

const (
	RefNone        RefKind = "none"
	RefRoomBooking RefKind = "room_booking"
	RefUsage       RefKind = "usage_request"
	RefRepair      RefKind = "repair_ticket"
)

// RelatedRef is the typed reference a notification may carry.
type RelatedRef struct {
	Kind RefKind
	ID   string
}

// Notification is a one-way, at-least-once notice delivered by polling.
// Read state is per row; a broadcast creates one independent row per
// recipient.
type Notification struct {
	ID          string
	RecipientID string
	Kind        RefKind
	RelatedID   *string
	Title       string
	Content     string
	IsRead      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Related returns the typed reference, or a RefNone value when the
// notification carries no related entity.
func (n *Notification) Related() RelatedRef {
	if n.RelatedID == nil || n.Kind == RefNone {
		return RelatedRef{Kind: RefNone}
	}
	return RelatedRef{Kind: n.Kind, ID: *n.RelatedID}
}

// Filter defines parameters for listing a recipient's notifications.
type Filter struct {
	UnreadOnly bool

	// OnlyRelated limits the result to notifications carrying a related
	// entity reference; the personalized detail view sets this.
	OnlyRelated bool

	Page     int
	PageSize int
}
