package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sugar258596/experiment-server/internal/lab"
	"github.com/sugar258596/experiment-server/internal/notification"
	"github.com/sugar258596/experiment-server/internal/user"
	"github.com/sugar258596/experiment-server/internal/workflow"
	"go.uber.org/zap"
)

type CreateRequest struct {
	RequesterID      string
	LabID            string
	Date             time.Time
	Timeslot         Timeslot
	Purpose          string
	ParticipantCount int
}

// Decision is a reviewer's verdict on a pending booking.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

type ReviewRequest struct {
	Decision Decision
	Reason   string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Review(ctx context.Context, id string, req ReviewRequest, reviewerID string, reviewerRole user.Role) (*Booking, error)
	Cancel(ctx context.Context, id, actorID string, actorRole user.Role) (*Booking, error)
	Complete(ctx context.Context, id, actorID string, actorRole user.Role) (*Booking, error)
}

type service struct {
	repo       Repository
	labService lab.Service
	logger     *zap.Logger
}

func NewService(repo Repository, labService lab.Service, logger *zap.Logger) Service {
	return &service{
		repo:       repo,
		labService: labService,
		logger:     logger,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	if !req.Timeslot.Valid() {
		return nil, ErrInvalidTimeslot
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date.Before(today) {
		return nil, ErrDateInPast
	}

	l, err := s.labService.GetByID(ctx, req.LabID)
	if err != nil {
		if errors.Is(err, lab.ErrNotFound) {
			return nil, ErrLabNotFound
		}
		return nil, err
	}
	if l.Capacity > 0 && req.ParticipantCount > l.Capacity {
		return nil, ErrOverCapacity
	}

	// First valid request wins; no waitlist. The partial unique index
	// covers the race between this check and the insert.
	conflict, err := s.repo.HasSlotConflict(ctx, req.LabID, req.Date, req.Timeslot)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrSlotConflict
	}

	b := &Booking{
		LabID:            req.LabID,
		RequesterID:      req.RequesterID,
		Date:             req.Date,
		Timeslot:         req.Timeslot,
		Purpose:          req.Purpose,
		ParticipantCount: req.ParticipantCount,
		Status:           workflow.RoomBooking.Initial,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("room booking created",
		zap.String("booking_id", b.ID),
		zap.String("lab_id", b.LabID),
		zap.String("requester_id", b.RequesterID),
		zap.String("timeslot", string(b.Timeslot)),
	)

	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Review(ctx context.Context, id string, req ReviewRequest, reviewerID string, reviewerRole user.Role) (*Booking, error) {
	if !reviewerRole.CanReview() {
		return nil, ErrPermissionDenied
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var target workflow.Status
	switch req.Decision {
	case DecisionApprove:
		target = workflow.StatusApproved
	case DecisionReject:
		if req.Reason == "" {
			return nil, ErrReasonRequired
		}
		target = workflow.StatusRejected
	default:
		return nil, ErrInvalidTransition
	}

	if err := s.checkTransition(b.Status, target); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b.Status = target
	b.ReviewedBy = &reviewerID
	b.ReviewedAt = &now
	if req.Decision == DecisionReject {
		b.RejectionReason = &req.Reason
	}

	n := s.decisionNotice(b)
	if err := s.repo.ReviewTx(ctx, b, n); err != nil {
		return nil, err
	}

	s.logger.Info("room booking reviewed",
		zap.String("booking_id", b.ID),
		zap.String("reviewer_id", reviewerID),
		zap.String("status", string(b.Status)),
	)

	return b, nil
}

func (s *service) Cancel(ctx context.Context, id, actorID string, actorRole user.Role) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The owner may always cancel their own non-terminal request,
	// regardless of role.
	if b.RequesterID != actorID && !actorRole.CanReview() {
		return nil, ErrPermissionDenied
	}

	if err := s.checkTransition(b.Status, workflow.StatusCancelled); err != nil {
		return nil, err
	}

	b.Status = workflow.StatusCancelled
	if err := s.repo.UpdateStatus(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("room booking cancelled",
		zap.String("booking_id", b.ID),
		zap.String("actor_id", actorID),
	)

	return b, nil
}

func (s *service) Complete(ctx context.Context, id, actorID string, actorRole user.Role) (*Booking, error) {
	if !actorRole.CanReview() {
		return nil, ErrPermissionDenied
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkTransition(b.Status, workflow.StatusCompleted); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b.Status = workflow.StatusCompleted
	b.ReviewedBy = &actorID
	b.ReviewedAt = &now
	if err := s.repo.UpdateStatus(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *service) checkTransition(from, to workflow.Status) error {
	if workflow.RoomBooking.IsTerminal(from) {
		return ErrAlreadyConcluded
	}
	if !workflow.RoomBooking.CanTransition(from, to) {
		return ErrInvalidTransition
	}
	return nil
}

// decisionNotice builds the notification sent to the booking owner for a
// review decision.
func (s *service) decisionNotice(b *Booking) *notification.Notification {
	id := b.ID
	n := &notification.Notification{
		RecipientID: b.RequesterID,
		Kind:        notification.RefRoomBooking,
		RelatedID:   &id,
	}

	date := b.Date.Format("2006-01-02")
	switch b.Status {
	case workflow.StatusApproved:
		n.Title = "Booking approved"
		n.Content = fmt.Sprintf("Your booking of %s on %s (%s) has been approved.", b.LabName, date, b.Timeslot)
	case workflow.StatusRejected:
		n.Title = "Booking rejected"
		reason := ""
		if b.RejectionReason != nil {
			reason = *b.RejectionReason
		}
		n.Content = fmt.Sprintf("Your booking of %s on %s (%s) has been rejected: %s", b.LabName, date, b.Timeslot, reason)
	}

	return n
}
