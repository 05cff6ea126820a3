package http

import (
	"time"

	"github.com/sugar258596/experiment-server/internal/instrument"
	"github.com/sugar258596/experiment-server/internal/pkg/request"
)

type InstrumentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Model       string    `json:"model"`
	Location    string    `json:"location"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewInstrumentResponse(ins *instrument.Instrument) InstrumentResponse {
	return InstrumentResponse{
		ID:          ins.ID,
		Name:        ins.Name,
		Model:       ins.Model,
		Location:    ins.Location,
		Status:      string(ins.Status),
		Description: ins.Description,
		ImageURL:    ins.ImageURL,
		CreatedAt:   ins.CreatedAt,
		UpdatedAt:   ins.UpdatedAt,
	}
}

// InstrumentTag is the compact instrument reference embedded in other responses.
type InstrumentTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CreateInstrumentBody struct {
	Name        string  `json:"name" binding:"required"`
	Model       string  `json:"model"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	ImageURL    *string `json:"image_url"`
}

type UpdateInstrumentBody struct {
	Name        *string `json:"name"`
	Model       *string `json:"model"`
	Location    *string `json:"location"`
	Status      *string `json:"status" binding:"omitempty,oneof=active maintenance borrowed"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

type ListInstrumentsRequest struct {
	request.ListParams
	Keyword string `form:"keyword"`
	Status  string `form:"status" binding:"omitempty,oneof=active maintenance borrowed"`
}
