package http

import (
	"time"

	instrumentHttp "github.com/sugar258596/experiment-server/internal/instrument/http"
	"github.com/sugar258596/experiment-server/internal/pkg/request"
	"github.com/sugar258596/experiment-server/internal/usage"
	userHttp "github.com/sugar258596/experiment-server/internal/user/http"
)

type UsageResponse struct {
	ID              string                       `json:"id"`
	Instrument      instrumentHttp.InstrumentTag `json:"instrument"`
	Requester       userHttp.UserTag             `json:"requester"`
	StartTime       time.Time                    `json:"start_time"`
	EndTime         time.Time                    `json:"end_time"`
	Purpose         string                       `json:"purpose"`
	Status          string                       `json:"status"`
	RejectionReason *string                      `json:"rejection_reason,omitempty"`
	ReviewedBy      *string                      `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time                   `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time                    `json:"created_at"`
	UpdatedAt       time.Time                    `json:"updated_at"`
}

func NewUsageResponse(u *usage.UsageRequest) UsageResponse {
	return UsageResponse{
		ID:              u.ID,
		Instrument:      instrumentHttp.InstrumentTag{ID: u.InstrumentID, Name: u.InstrumentName},
		Requester:       userHttp.UserTag{ID: u.RequesterID, Name: u.RequesterName},
		StartTime:       u.StartTime,
		EndTime:         u.EndTime,
		Purpose:         u.Purpose,
		Status:          string(u.Status),
		RejectionReason: u.RejectionReason,
		ReviewedBy:      u.ReviewedBy,
		ReviewedAt:      u.ReviewedAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

type ApplyUsageBody struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required,gtfield=StartTime"`
	Purpose   string    `json:"purpose" binding:"required"`
}

type ReviewUsageBody struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
	Reason   string `json:"reason"`
}

type ListUsageRequest struct {
	request.ListParams
	InstrumentID string `form:"instrument_id" binding:"omitempty,uuid"`
	Status       string `form:"status" binding:"omitempty,oneof=pending approved rejected cancelled"`
	UserID       string `form:"user_id" binding:"omitempty,uuid"`
}
