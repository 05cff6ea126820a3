package usage

import (
	"net/http"
	"time"

	"github.com/sugar258596/experiment-server/internal/pkg/apperror"
	"github.com/sugar258596/experiment-server/internal/workflow"
)

var (
	ErrNotFound              = apperror.New(http.StatusNotFound, "usage request not found")
	ErrInstrumentNotFound    = apperror.New(http.StatusNotFound, "instrument not found")
	ErrInstrumentUnavailable = apperror.New(http.StatusConflict, "instrument is not available")
	ErrDuplicateApplication  = apperror.New(http.StatusConflict, "you have already applied for this instrument in an overlapping window")
	ErrInvalidTimeRange      = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrTimeInPast            = apperror.New(http.StatusBadRequest, "cannot request a past time window")
	ErrReasonRequired        = apperror.New(http.StatusBadRequest, "rejection reason is required")
	ErrAlreadyConcluded      = apperror.New(http.StatusBadRequest, "this request has already concluded")
	ErrInvalidTransition     = apperror.New(http.StatusBadRequest, "illegal status transition")
	ErrPermissionDenied      = apperror.New(http.StatusForbidden, "permission denied")
)

// BlockingStatuses are the statuses counted by the duplicate-application
// check. Two overlapping windows by the same requester for the same
// instrument may not both be pending or approved.
var BlockingStatuses = []workflow.Status{workflow.StatusPending, workflow.StatusApproved}

// UsageRequest is a request to use one instrument over a continuous time
// window. Unlike room bookings, windows are free-form timestamps rather
// than fixed slots.
type UsageRequest struct {
	ID              string
	InstrumentID    string
	InstrumentName  string
	RequesterID     string
	RequesterName   *string
	StartTime       time.Time
	EndTime         time.Time
	Purpose         string
	Status          workflow.Status
	RejectionReason *string
	ReviewedBy      *string
	ReviewedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Filter defines parameters for listing usage requests.
type Filter struct {
	RequesterID  string
	InstrumentID string
	Status       string
	Page         int
	PageSize     int
}
