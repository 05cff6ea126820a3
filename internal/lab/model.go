package lab

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("lab not found")
	ErrEmptyName     = errors.New("name cannot be empty")
	ErrInvalidStatus = errors.New("invalid lab status")
)

// Status is the lab's operational status. The reservation workflow never
// reads it to gate bookings; conflicts are decided purely by existing
// blocking requests.
type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusClosed      Status = "closed"
)

// Lab represents a bookable lab room.
type Lab struct {
	ID          string
	Name        string
	Location    string
	Capacity    int
	Status      Status
	Description string
	ImageURL    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter defines parameters for listing labs.
type Filter struct {
	Keyword  string
	Status   string
	Page     int
	PageSize int
}
