package instrument

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("instrument not found")
	ErrEmptyName     = errors.New("name cannot be empty")
	ErrInvalidStatus = errors.New("invalid instrument status")
)

// Status is the instrument's operational status. "borrowed" is set by the
// usage-approval side effect; returning the instrument is out of scope for
// the workflow, so the flag is cleared administratively.
type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusBorrowed    Status = "borrowed"
)

// Instrument represents a shared lab instrument.
type Instrument struct {
	ID          string
	Name        string
	Model       string
	Location    string
	Status      Status
	Description string
	ImageURL    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter defines parameters for listing instruments.
type Filter struct {
	Keyword  string
	Status   string
	Page     int
	PageSize int
}
