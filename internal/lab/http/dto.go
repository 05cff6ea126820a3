package http

import (
	"time"

	"github.com/sugar258596/experiment-server/internal/lab"
	"github.com/sugar258596/experiment-server/internal/pkg/request"
)

type LabResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewLabResponse(l *lab.Lab) LabResponse {
	return LabResponse{
		ID:          l.ID,
		Name:        l.Name,
		Location:    l.Location,
		Capacity:    l.Capacity,
		Status:      string(l.Status),
		Description: l.Description,
		ImageURL:    l.ImageURL,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// LabTag is the compact lab reference embedded in other responses.
type LabTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CreateLabBody struct {
	Name        string  `json:"name" binding:"required"`
	Location    string  `json:"location"`
	Capacity    int     `json:"capacity" binding:"omitempty,min=0"`
	Description string  `json:"description"`
	ImageURL    *string `json:"image_url"`
}

type UpdateLabBody struct {
	Name        *string `json:"name"`
	Location    *string `json:"location"`
	Capacity    *int    `json:"capacity" binding:"omitempty,min=0"`
	Status      *string `json:"status" binding:"omitempty,oneof=active maintenance closed"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

type ListLabsRequest struct {
	request.ListParams
	Keyword string `form:"keyword"`
	Status  string `form:"status" binding:"omitempty,oneof=active maintenance closed"`
}
