package booking

import (
	"net/http"
	"time"

	"github.com/sugar258596/experiment-server/internal/pkg/apperror"
	"github.com/sugar258596/experiment-server/internal/workflow"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "booking not found")
	ErrLabNotFound       = apperror.New(http.StatusNotFound, "lab not found")
	ErrSlotConflict      = apperror.New(http.StatusConflict, "time slot already booked")
	ErrInvalidTimeslot   = apperror.New(http.StatusBadRequest, "invalid timeslot")
	ErrDateInPast        = apperror.New(http.StatusBadRequest, "cannot book a past date")
	ErrOverCapacity      = apperror.New(http.StatusBadRequest, "participant count exceeds lab capacity")
	ErrReasonRequired    = apperror.New(http.StatusBadRequest, "rejection reason is required")
	ErrAlreadyConcluded  = apperror.New(http.StatusBadRequest, "this request has already concluded")
	ErrInvalidTransition = apperror.New(http.StatusBadRequest, "illegal status transition")
	ErrPermissionDenied  = apperror.New(http.StatusForbidden, "permission denied")
)

// Timeslot is one of the three fixed, non-overlapping periods per day.
// Slots never overlap partially; equality is the only collision test.
type Timeslot string

const (
	SlotMorning   Timeslot = "morning"
	SlotAfternoon Timeslot = "afternoon"
	SlotEvening   Timeslot = "evening"
)

// Valid reports whether t is a defined timeslot.
func (t Timeslot) Valid() bool {
	return t == SlotMorning || t == SlotAfternoon || t == SlotEvening
}

// BlockingStatuses are the statuses that occupy a slot for conflict checks.
var BlockingStatuses = []workflow.Status{workflow.StatusPending, workflow.StatusApproved}

// Booking is a room booking request for one lab, date and timeslot.
type Booking struct {
	ID               string
	LabID            string
	LabName          string
	RequesterID      string
	RequesterName    *string
	Date             time.Time // day granularity
	Timeslot         Timeslot
	Purpose          string
	ParticipantCount int
	Status           workflow.Status
	RejectionReason  *string
	ReviewedBy       *string
	ReviewedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Filter defines parameters for listing bookings.
type Filter struct {
	RequesterID string
	LabID       string
	Status      string
	DateFrom    *time.Time
	DateTo      *time.Time
	Page        int
	PageSize    int
}
