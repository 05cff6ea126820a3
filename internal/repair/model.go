package repair

import (
	"net/http"
	"time"

	"github.com/sugar258596/experiment-server/internal/pkg/apperror"
	"github.com/sugar258596/experiment-server/internal/workflow"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "repair ticket not found")
	ErrInstrumentNotFound = apperror.New(http.StatusNotFound, "instrument not found")
	ErrInvalidUrgency     = apperror.New(http.StatusBadRequest, "invalid urgency")
	ErrInvalidStatus      = apperror.New(http.StatusBadRequest, "invalid ticket status")
	ErrAlreadyCompleted   = apperror.New(http.StatusBadRequest, "this ticket has already been completed")
	ErrInvalidTransition  = apperror.New(http.StatusBadRequest, "illegal status transition")
	ErrPermissionDenied   = apperror.New(http.StatusForbidden, "permission denied")
)

// Urgency is the reporter's assessment of how quickly the fault needs
// attention. It is informational and does not gate any transition.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Valid reports whether u is a defined urgency level.
func (u Urgency) Valid() bool {
	return u == UrgencyLow || u == UrgencyMedium || u == UrgencyHigh
}

// RepairTicket is a fault report against one instrument. Tickets move
// freely between pending and in_progress; completing one is final and
// records a resolution summary.
type RepairTicket struct {
	ID             string
	InstrumentID   string
	InstrumentName string
	ReporterID     string
	ReporterName   *string
	FaultType      string
	Urgency        Urgency
	Description    string
	Summary        *string
	Status         workflow.Status
	HandledBy      *string
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Filter defines parameters for listing repair tickets.
type Filter struct {
	ReporterID   string
	InstrumentID string
	Status       string
	Urgency      string
	Page         int
	PageSize     int
}
