package http

import (
	"time"

	instrumentHttp "github.com/sugar258596/experiment-server/internal/instrument/http"
	"github.com/sugar258596/experiment-server/internal/pkg/request"
	"github.com/sugar258596/experiment-server/internal/repair"
	userHttp "github.com/sugar258596/experiment-server/internal/user/http"
)

type RepairResponse struct {
	ID          string                       `json:"id"`
	Instrument  instrumentHttp.InstrumentTag `json:"instrument"`
	Reporter    userHttp.UserTag             `json:"reporter"`
	FaultType   string                       `json:"fault_type"`
	Urgency     string                       `json:"urgency"`
	Description string                       `json:"description"`
	Summary     *string                      `json:"summary,omitempty"`
	Status      string                       `json:"status"`
	HandledBy   *string                      `json:"handled_by,omitempty"`
	CompletedAt *time.Time                   `json:"completed_at,omitempty"`
	CreatedAt   time.Time                    `json:"created_at"`
	UpdatedAt   time.Time                    `json:"updated_at"`
}

func NewRepairResponse(t *repair.RepairTicket) RepairResponse {
	return RepairResponse{
		ID:          t.ID,
		Instrument:  instrumentHttp.InstrumentTag{ID: t.InstrumentID, Name: t.InstrumentName},
		Reporter:    userHttp.UserTag{ID: t.ReporterID, Name: t.ReporterName},
		FaultType:   t.FaultType,
		Urgency:     string(t.Urgency),
		Description: t.Description,
		Summary:     t.Summary,
		Status:      string(t.Status),
		HandledBy:   t.HandledBy,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type ReportRepairBody struct {
	FaultType   string `json:"fault_type" binding:"required"`
	Urgency     string `json:"urgency" binding:"required,oneof=low medium high"`
	Description string `json:"description" binding:"required"`
}

type UpdateRepairStatusBody struct {
	Status  string `json:"status" binding:"required,oneof=pending in_progress completed"`
	Summary string `json:"summary"`
}

type ListRepairsRequest struct {
	request.ListParams
	InstrumentID string `form:"instrument_id" binding:"omitempty,uuid"`
	Status       string `form:"status" binding:"omitempty,oneof=pending in_progress completed"`
	Urgency      string `form:"urgency" binding:"omitempty,oneof=low medium high"`
	UserID       string `form:"user_id" binding:"omitempty,uuid"`
}
