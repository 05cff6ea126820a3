package http

import (
	"time"

	"github.com/sugar258596/experiment-server/internal/booking"
	labHttp "github.com/sugar258596/experiment-server/internal/lab/http"
	"github.com/sugar258596/experiment-server/internal/pkg/request"
	userHttp "github.com/sugar258596/experiment-server/internal/user/http"
)

type BookingResponse struct {
	ID               string           `json:"id"`
	Lab              labHttp.LabTag   `json:"lab"`
	Requester        userHttp.UserTag `json:"requester"`
	Date             string           `json:"date"`
	Timeslot         string           `json:"timeslot"`
	Purpose          string           `json:"purpose"`
	ParticipantCount int              `json:"participant_count"`
	Status           string           `json:"status"`
	RejectionReason  *string          `json:"rejection_reason"`
	ReviewedBy       *string          `json:"reviewed_by"`
	ReviewedAt       *time.Time       `json:"reviewed_at"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		Lab:              labHttp.LabTag{ID: b.LabID, Name: b.LabName},
		Requester:        userHttp.UserTag{ID: b.RequesterID, Name: b.RequesterName},
		Date:             b.Date.Format("2006-01-02"),
		Timeslot:         string(b.Timeslot),
		Purpose:          b.Purpose,
		ParticipantCount: b.ParticipantCount,
		Status:           string(b.Status),
		RejectionReason:  b.RejectionReason,
		ReviewedBy:       b.ReviewedBy,
		ReviewedAt:       b.ReviewedAt,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

type CreateBookingBody struct {
	LabID            string `json:"lab_id" binding:"required,uuid"`
	Date             string `json:"date" binding:"required,datetime=2006-01-02"`
	Timeslot         string `json:"timeslot" binding:"required,oneof=morning afternoon evening"`
	Purpose          string `json:"purpose" binding:"required"`
	ParticipantCount int    `json:"participant_count" binding:"required,min=1"`
}

type ReviewBookingBody struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
	Reason   string `json:"reason"`
}

type ListBookingsRequest struct {
	request.ListParams
	LabID    string `form:"lab_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=pending approved rejected cancelled completed"`
	UserID   string `form:"user_id" binding:"omitempty,uuid"`
	DateFrom string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
}
